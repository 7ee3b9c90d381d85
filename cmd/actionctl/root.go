package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "actionctl",
		Short:         "Run and inspect registered actions from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newListActionsCmd(app))
	cmd.AddCommand(newRunCmd(app))
	cmd.AddCommand(newPlanCmd(app))

	return cmd
}
