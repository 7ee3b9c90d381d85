package async

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomind-actions/actionkit/action"
	"github.com/gomind-actions/actionkit/config"
)

type stubExecutor struct {
	fn func(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result
}

func (s *stubExecutor) Execute(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result {
	return s.fn(ctx, act, params, opts)
}

func TestStartAwaitHappyPath(t *testing.T) {
	eng := &stubExecutor{fn: func(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result {
		return action.Ok(action.Params{"value": 7})
	}}

	ref, err := Start(context.Background(), eng, nil, action.Params{}, action.Options{}, config.DefaultConfig())
	require.NoError(t, err)

	result := Await(context.Background(), ref, time.Second)
	require.True(t, result.OK)
	assert.Equal(t, 7, result.Data["value"])
	assert.Equal(t, StatusCompleted, ref.Status())
}

func TestAwaitSurfacesFailureResult(t *testing.T) {
	eng := &stubExecutor{fn: func(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result {
		return action.Err(action.NewExecutionFailure("boom"))
	}}

	ref, err := Start(context.Background(), eng, nil, action.Params{}, action.Options{}, config.DefaultConfig())
	require.NoError(t, err)

	result := Await(context.Background(), ref, time.Second)
	require.False(t, result.OK)
	assert.Equal(t, action.ExecutionFailure, result.Err.Kind)
	assert.Equal(t, StatusFailed, ref.Status())
}

func TestAwaitDeadlineTriggersTimeoutCleanup(t *testing.T) {
	eng := &stubExecutor{fn: func(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result {
		<-ctx.Done()
		return action.Err(action.NewExecutionFailure("superseded"))
	}}

	cfg := config.DefaultConfig()
	cfg.AsyncShutdownGraceMs = 10
	cfg.AsyncDownGraceMs = 10

	ref, err := Start(context.Background(), eng, nil, action.Params{}, action.Options{}, cfg)
	require.NoError(t, err)

	result := Await(context.Background(), ref, 20*time.Millisecond)
	require.False(t, result.OK)
	assert.Equal(t, action.Timeout, result.Err.Kind)
}

func TestCancelIsIdempotent(t *testing.T) {
	eng := &stubExecutor{fn: func(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result {
		<-ctx.Done()
		return action.Err(action.NewExecutionFailure("cancelled"))
	}}

	ref, err := Start(context.Background(), eng, nil, action.Params{}, action.Options{}, config.DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, Cancel(ref))
	require.NoError(t, Cancel(ref))
	assert.Equal(t, StatusCancelled, ref.Status())
}

func TestCancelNilRefIsInvalidInput(t *testing.T) {
	err := Cancel(nil)
	require.Error(t, err)
	exc, ok := action.AsException(err)
	require.True(t, ok)
	assert.Equal(t, action.InvalidInput, exc.Kind)
}

func TestStartRejectsUnknownInstanceHandle(t *testing.T) {
	eng := &stubExecutor{fn: func(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result {
		return action.Ok(action.Params{})
	}}

	_, err := Start(context.Background(), eng, nil, action.Params{}, action.Options{InstanceHandle: "missing"}, config.DefaultConfig())
	require.Error(t, err)
	exc, ok := action.AsException(err)
	require.True(t, ok)
	assert.Equal(t, action.Configuration, exc.Kind)
}

func TestProgressCallbackReachesRunningAction(t *testing.T) {
	var received action.Params
	eng := &stubExecutor{fn: func(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result {
		ReportProgress(ctx, action.Params{"pct": 50})
		return action.Ok(action.Params{})
	}}

	opts := action.Options{OnProgress: func(p action.Params) { received = p }}
	ref, err := Start(context.Background(), eng, nil, action.Params{}, opts, config.DefaultConfig())
	require.NoError(t, err)

	result := Await(context.Background(), ref, time.Second)
	require.True(t, result.OK)
	assert.Equal(t, 50, received["pct"])
}
