// Package chain runs a fixed sequence of actions, threading each step's
// result into the next's params (C8). Grounded on
// orchestration/workflow_engine.go's sequential WorkflowStepDefinition
// execution loop and its data-flow convention, simplified to a direct
// Params.Merge since Chain has no YAML step language — that richness is
// reserved for plan.
package chain

import (
	"context"

	"github.com/gomind-actions/actionkit/action"
	"github.com/gomind-actions/actionkit/async"
	"github.com/gomind-actions/actionkit/config"
)

// Step is one link in a chain: an Action plus params that only apply to
// that step.
type Step struct {
	Action action.Action
	Extra  action.Params
}

// Executor is the subset of engine.Executor Chain needs.
type Executor interface {
	Execute(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result
}

// Options configures one Chain run.
type Options struct {
	InterruptCheck func(action.Params) bool
	StepOptions    action.Options
}

// Outcome is Chain's terminal state: exactly one of OK/Err/Interrupted is
// true.
type Outcome struct {
	OK          bool
	Interrupted bool
	Params      action.Params
	Err         *action.Exception
	Directive   any
	HasDirective bool
}

// Run executes steps in order against eng, merging each successful step's
// result into the running params before the next step starts. It halts
// and returns the first error, preserving any directive it carried.
func Run(ctx context.Context, eng Executor, steps []Step, initial action.Params, opts Options) Outcome {
	params := initial.Clone()

	for _, step := range steps {
		if opts.InterruptCheck != nil && opts.InterruptCheck(params) {
			return Outcome{Interrupted: true, Params: params}
		}

		stepParams := params.Merge(step.Extra)
		result := eng.Execute(ctx, step.Action, stepParams, opts.StepOptions)
		if !result.OK {
			return Outcome{Err: result.Err, Directive: result.Directive, HasDirective: result.HasDirective}
		}
		params = stepParams.Merge(result.Data)
	}

	return Outcome{OK: true, Params: params}
}

// StartAsync runs Run inside a supervised task and returns an AsyncRef the
// caller can Await/Cancel, for callers that want chain semantics without
// blocking.
func StartAsync(ctx context.Context, eng Executor, steps []Step, initial action.Params, opts Options, cfg *config.Config) (*async.AsyncRef, error) {
	runner := &chainExecutorAdapter{eng: eng, steps: steps, opts: opts}
	return async.Start(ctx, runner, nil, initial, action.Options{InstanceHandle: opts.StepOptions.InstanceHandle}, cfg)
}

// chainExecutorAdapter lets StartAsync reuse async.Start's
// supervisor-spawn plumbing by presenting Chain's multi-step Run behind
// the single-action Executor interface async.Start expects.
type chainExecutorAdapter struct {
	eng   Executor
	steps []Step
	opts  Options
}

func (a *chainExecutorAdapter) Execute(ctx context.Context, _ action.Action, params action.Params, _ action.Options) action.Result {
	outcome := Run(ctx, a.eng, a.steps, params, a.opts)
	switch {
	case outcome.OK:
		return action.Ok(outcome.Params)
	case outcome.Interrupted:
		return action.Err(action.NewException(action.ExecutionFailure, "chain interrupted", map[string]any{"interrupted": true, "params": outcome.Params}))
	case outcome.HasDirective:
		return action.ErrWithDirective(outcome.Err, outcome.Directive)
	default:
		return action.Err(outcome.Err)
	}
}
