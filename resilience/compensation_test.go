package resilience

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomind-actions/actionkit/action"
)

func TestCompensateDisabledReturnsOriginal(t *testing.T) {
	original := action.NewExecutionFailure("boom")
	got := Compensate(context.Background(), action.Params{}, original, CompensationConfig{Enabled: false}, 1000)
	assert.Same(t, original, got)
}

func TestCompensateSuccessRecordsResult(t *testing.T) {
	original := action.NewExecutionFailure("boom")
	cfg := CompensationConfig{
		Enabled:    true,
		MaxRetries: 0,
		CompensationFunc: func(ctx context.Context, failed action.Params, orig *action.Exception) (action.Params, error) {
			return action.Params{"refunded": true}, nil
		},
	}

	got := Compensate(context.Background(), action.Params{"order_id": "123"}, original, cfg, 1000)
	require.NotNil(t, got)
	assert.Equal(t, action.ExecutionFailure, got.Kind)
	assert.Equal(t, true, got.Details["compensated"])
	data, ok := got.Details["compensation_result"].(action.Params)
	require.True(t, ok)
	assert.Equal(t, true, data["refunded"])
	assert.Same(t, original, got.Details["original_error"])
	assert.Equal(t, 1, got.Details["compensation_attempts"])
}

func TestCompensateSuccessAfterRetriesReportsActualAttempts(t *testing.T) {
	original := action.NewExecutionFailure("boom")
	var calls atomic.Int32
	cfg := CompensationConfig{
		Enabled:    true,
		MaxRetries: 3,
		DownGrace:  10 * time.Millisecond,
		CompensationFunc: func(ctx context.Context, failed action.Params, orig *action.Exception) (action.Params, error) {
			n := calls.Add(1)
			if n < 2 {
				time.Sleep(5 * time.Second)
			}
			return action.Params{"attempt": n}, nil
		},
	}

	got := Compensate(context.Background(), action.Params{}, original, cfg, 20)
	assert.Equal(t, true, got.Details["compensated"])
	assert.Equal(t, 2, got.Details["compensation_attempts"], "must report the actual attempt count, not max_retries+1")
}

func TestCompensateErrorDoesNotRetry(t *testing.T) {
	original := action.NewExecutionFailure("boom")
	calls := 0
	cfg := CompensationConfig{
		Enabled:    true,
		MaxRetries: 3,
		CompensationFunc: func(ctx context.Context, failed action.Params, orig *action.Exception) (action.Params, error) {
			calls++
			return nil, action.NewExecutionFailure("compensation also failed")
		},
	}

	got := Compensate(context.Background(), action.Params{}, original, cfg, 1000)
	assert.Equal(t, 1, calls, "compensation's own return-error must not retry")
	assert.Equal(t, false, got.Details["compensated"])
	assert.NotNil(t, got.Details["compensation_error"])
}

func TestCompensateTimeoutRetriesUpToMax(t *testing.T) {
	original := action.NewExecutionFailure("boom")
	var calls atomic.Int32
	cfg := CompensationConfig{
		Enabled:    true,
		MaxRetries: 2,
		DownGrace:  10 * time.Millisecond,
		CompensationFunc: func(ctx context.Context, failed action.Params, orig *action.Exception) (action.Params, error) {
			calls.Add(1)
			// Ignores cancellation entirely, standing in for a task that
			// never observes ctx.Done() and must be orphaned.
			time.Sleep(5 * time.Second)
			return nil, action.NewExecutionFailure("should not surface")
		},
	}

	got := Compensate(context.Background(), action.Params{}, original, cfg, 20)
	assert.Equal(t, int32(3), calls.Load(), "should attempt 1 + MaxRetries times on timeout")
	assert.Equal(t, false, got.Details["compensated"])
	assert.Equal(t, 3, got.Details["compensation_attempts"])
	exc, ok := got.Details["compensation_error"].(*action.Exception)
	require.True(t, ok)
	assert.Equal(t, action.Timeout, exc.Kind)
}

func TestResolveCompensationTimeoutPrecedence(t *testing.T) {
	assert.EqualValues(t, 500, ResolveCompensationTimeoutMs(500, 1000, 2000, 3000))
	assert.EqualValues(t, 1000, ResolveCompensationTimeoutMs(0, 1000, 2000, 3000))
	assert.EqualValues(t, 2000, ResolveCompensationTimeoutMs(0, 0, 2000, 3000))
	assert.EqualValues(t, 3000, ResolveCompensationTimeoutMs(0, 0, 0, 3000))
}
