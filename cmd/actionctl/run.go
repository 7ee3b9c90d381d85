package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gomind-actions/actionkit/action"
)

type runOptions struct {
	params      []string
	paramsFile  string
	timeoutMs   int64
	maxRetries  int
	instance    string
	telemetryOn bool
}

func newRunCmd(app *AppContext) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <action>",
		Short: "Run a single registered action and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOne(cmd, app, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.params, "param", nil, "a key=value param, repeatable")
	cmd.Flags().StringVar(&opts.paramsFile, "params-file", "", "path to a YAML file of params")
	cmd.Flags().Int64Var(&opts.timeoutMs, "timeout-ms", 0, "per-attempt timeout; 0 runs without a timer")
	cmd.Flags().IntVar(&opts.maxRetries, "max-retries", 0, "override the engine's default max retries")
	cmd.Flags().StringVar(&opts.instance, "instance", "", "instance handle to spawn monitored attempts under")

	return cmd
}

func runOne(cmd *cobra.Command, app *AppContext, name string, opts *runOptions) error {
	act, ok := app.Registry.Lookup(name)
	if !ok {
		return fmt.Errorf("actionctl: unknown action %q (see list-actions)", name)
	}

	params, err := buildParams(opts.params, opts.paramsFile)
	if err != nil {
		return err
	}

	result := app.Engine.Execute(context.Background(), act, params, action.Options{
		Timeout:        opts.timeoutMs,
		MaxRetries:     opts.maxRetries,
		InstanceHandle: opts.instance,
	})

	return printResult(cmd, result)
}

// buildParams merges a YAML params file (if given) with repeated
// --param key=value flags, flags taking precedence over the file.
func buildParams(kvs []string, file string) (action.Params, error) {
	params := action.Params{}

	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("actionctl: reading params file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("actionctl: parsing params file: %w", err)
		}
	}

	for _, kv := range kvs {
		k, v, found := strings.Cut(kv, "=")
		if !found {
			return nil, fmt.Errorf("actionctl: --param %q must be key=value", kv)
		}
		params[k] = v
	}

	return params, nil
}

func printResult(cmd *cobra.Command, result action.Result) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if result.OK {
		return enc.Encode(map[string]any{"ok": true, "data": result.Data})
	}
	if err := enc.Encode(map[string]any{"ok": false, "kind": result.Err.Kind, "message": result.Err.Message, "details": result.Err.Details}); err != nil {
		return err
	}
	return fmt.Errorf("actionctl: action failed: %s", result.Err.Message)
}
