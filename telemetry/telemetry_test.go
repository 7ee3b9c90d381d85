package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomind-actions/actionkit/action"
)

func TestNoOpProviderAbsorbsEveryCall(t *testing.T) {
	var p NoOpProvider
	ctx, span := p.ActionStart(context.Background(), "demo", action.Params{"password": "x"})
	p.ActionRetry(ctx, span, 1, 10*time.Millisecond)
	p.ActionException(ctx, span, action.NewExecutionFailure("boom"))
	p.ActionStop(ctx, span, action.Ok(action.Params{}))
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewRejectsEmptyServiceName(t *testing.T) {
	_, err := New(context.Background(), Config{UseStdout: true})
	require.Error(t, err)
	exc, ok := action.AsException(err)
	require.True(t, ok)
	assert.Equal(t, action.Configuration, exc.Kind)
}

func TestNewBuildsStdoutTracerAndShutsDownCleanly(t *testing.T) {
	tracer, err := New(context.Background(), Config{ServiceName: "actionkit-test", UseStdout: true})
	require.NoError(t, err)
	require.NotNil(t, tracer)

	ctx, span := tracer.ActionStart(context.Background(), "demo", action.Params{"token": "secret"})
	tracer.ActionRetry(ctx, span, 1, 5*time.Millisecond)
	tracer.ActionException(ctx, span, action.NewExecutionFailure("boom"))
	tracer.ActionStop(ctx, span, action.Err(action.NewExecutionFailure("boom")))

	require.NoError(t, tracer.Shutdown(context.Background()))
	require.NoError(t, tracer.Shutdown(context.Background()), "shutdown must be idempotent")
}
