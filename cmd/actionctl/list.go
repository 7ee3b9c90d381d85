package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newListActionsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list-actions",
		Short: "List actions registered with this process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := app.Registry.Names()
			sort.Strings(names)
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no actions registered")
				return nil
			}
			for _, name := range names {
				act, _ := app.Registry.Lookup(name)
				meta := act.Metadata()
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", meta.Name, meta.Description)
			}
			return nil
		},
	}
}
