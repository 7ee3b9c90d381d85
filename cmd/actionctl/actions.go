package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gomind-actions/actionkit/action"
	"github.com/gomind-actions/actionkit/registry"
)

// registerDemoActions seeds reg with a couple of illustrative actions so
// list-actions/run/plan have something to exercise out of the box. None of
// this is meant as a real action library, only a worked example of the
// Action contract.
func registerDemoActions(reg *registry.Registry) {
	reg.MustRegister(echoAction())
	reg.MustRegister(flakyAction())
}

// echoAction returns a copy of its input params as its output,
// demonstrating the minimal Run-only action.
func echoAction() action.Action {
	return &action.BaseAction{
		Meta: action.Metadata{
			Name:        "echo",
			Description: "Returns its input params back as output",
			Category:    "demo",
		},
		RunFunc: func(ctx context.Context, params action.Params) action.Result {
			return action.Ok(params.Clone())
		},
	}
}

// flakyAction fails its first two invocations per process lifetime with a
// retryable ExecutionFailure, then succeeds, demonstrating the retry loop
// against a single CLI run.
func flakyAction() action.Action {
	var calls int64
	return &action.BaseAction{
		Meta: action.Metadata{
			Name:        "flaky",
			Description: "Fails twice then succeeds, to exercise the retry loop",
			Category:    "demo",
		},
		RunFunc: func(ctx context.Context, params action.Params) action.Result {
			n := atomic.AddInt64(&calls, 1)
			if n <= 2 {
				return action.Err(action.NewExecutionFailure(fmt.Sprintf("attempt %d: transient failure", n)))
			}
			return action.Ok(action.Params{"attempts": n})
		},
	}
}
