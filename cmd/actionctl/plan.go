package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gomind-actions/actionkit/action"
	"github.com/gomind-actions/actionkit/plan"
)

type planOptions struct {
	timeoutMs int64
}

func newPlanCmd(app *AppContext) *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan <file.yaml>",
		Short: "Build and run a step plan from a YAML document against the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, app, args[0], opts)
		},
	}

	cmd.Flags().Int64Var(&opts.timeoutMs, "timeout-ms", 0, "per-step timeout applied to every step")

	return cmd
}

func runPlan(cmd *cobra.Command, app *AppContext, file string, opts *planOptions) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("actionctl: reading plan file: %w", err)
	}

	specs, err := plan.ParseSpecs(raw)
	if err != nil {
		return err
	}

	p, err := plan.Build(specs, app.Registry)
	if err != nil {
		return err
	}

	runResult, err := p.Run(context.Background(), app.Engine, action.Params{}, plan.RunOptions{
		StepOptions: action.Options{Timeout: opts.timeoutMs},
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(runResult)
}
