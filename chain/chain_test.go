package chain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomind-actions/actionkit/action"
)

type stepExecutor struct {
	fn func(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result
}

func (s *stepExecutor) Execute(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result {
	return s.fn(ctx, act, params, opts)
}

func countingAction(name string) action.Action {
	return &action.BaseAction{Meta: action.Metadata{Name: name}}
}

func TestRunMergesStepResultsInOrder(t *testing.T) {
	eng := &stepExecutor{fn: func(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result {
		return action.Ok(action.Params{act.Metadata().Name: true})
	}}

	steps := []Step{
		{Action: countingAction("a")},
		{Action: countingAction("b")},
	}

	outcome := Run(context.Background(), eng, steps, action.Params{"seed": 1}, Options{})
	require.True(t, outcome.OK)
	assert.Equal(t, 1, outcome.Params["seed"])
	assert.Equal(t, true, outcome.Params["a"])
	assert.Equal(t, true, outcome.Params["b"])
}

func TestRunHaltsOnFirstError(t *testing.T) {
	var secondRan bool
	eng := &stepExecutor{fn: func(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result {
		if act.Metadata().Name == "fails" {
			return action.Err(action.NewExecutionFailure("nope"))
		}
		secondRan = true
		return action.Ok(action.Params{})
	}}

	steps := []Step{
		{Action: countingAction("fails")},
		{Action: countingAction("never")},
	}

	outcome := Run(context.Background(), eng, steps, action.Params{}, Options{})
	require.False(t, outcome.OK)
	assert.Equal(t, action.ExecutionFailure, outcome.Err.Kind)
	assert.False(t, secondRan)
}

func TestRunPreservesDirectiveOnError(t *testing.T) {
	eng := &stepExecutor{fn: func(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result {
		return action.ErrWithDirective(action.NewExecutionFailure("failed"), "retry-elsewhere")
	}}

	outcome := Run(context.Background(), eng, []Step{{Action: countingAction("x")}}, action.Params{}, Options{})
	require.False(t, outcome.OK)
	require.True(t, outcome.HasDirective)
	assert.Equal(t, "retry-elsewhere", outcome.Directive)
}

func TestRunStopsAtInterruptCheck(t *testing.T) {
	var ran bool
	eng := &stepExecutor{fn: func(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result {
		ran = true
		return action.Ok(action.Params{})
	}}

	opts := Options{InterruptCheck: func(action.Params) bool { return true }}
	outcome := Run(context.Background(), eng, []Step{{Action: countingAction("x")}}, action.Params{}, opts)
	require.True(t, outcome.Interrupted)
	assert.False(t, ran)
}

func TestRunMergesStepExtraParamsBeforeInvocation(t *testing.T) {
	var seenExtra action.Params
	eng := &stepExecutor{fn: func(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result {
		seenExtra = params
		return action.Ok(action.Params{})
	}}

	steps := []Step{{Action: countingAction("x"), Extra: action.Params{"flag": true}}}
	outcome := Run(context.Background(), eng, steps, action.Params{"base": 1}, Options{})
	require.True(t, outcome.OK)
	assert.Equal(t, 1, seenExtra["base"])
	assert.Equal(t, true, seenExtra["flag"])
}

func TestRunPersistsStepExtraParamsIntoFinalResult(t *testing.T) {
	eng := &stepExecutor{fn: func(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result {
		switch act.Metadata().Name {
		case "add":
			return action.Ok(action.Params{"value": params["value"].(int) + 2})
		case "multiply":
			return action.Ok(action.Params{"value": params["value"].(int) * params["amount"].(int)})
		}
		return action.Err(action.NewExecutionFailure("unknown step"))
	}}

	steps := []Step{
		{Action: countingAction("add")},
		{Action: countingAction("multiply"), Extra: action.Params{"amount": 2}},
	}

	outcome := Run(context.Background(), eng, steps, action.Params{"value": 5}, Options{})
	require.True(t, outcome.OK)
	assert.Equal(t, 12, outcome.Params["value"])
	assert.Equal(t, 2, outcome.Params["amount"])
}
