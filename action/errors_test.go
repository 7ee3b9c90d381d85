package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHigherPrecedence(t *testing.T) {
	invalid := NewException(InvalidInput, "bad", nil)
	internal := NewException(Internal, "oops", nil)
	assert.Same(t, invalid, HigherPrecedence(invalid, internal))
	assert.Same(t, invalid, HigherPrecedence(internal, invalid))
	assert.Same(t, invalid, HigherPrecedence(invalid, nil))
	assert.Same(t, internal, HigherPrecedence(nil, internal))
}

func TestExceptionUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	exc := NewInternal("wrapped", cause)
	assert.ErrorIs(t, exc, cause)
}

func TestRetryHint(t *testing.T) {
	exc := NewExecutionFailure("boom")
	_, ok := exc.RetryHint()
	assert.False(t, ok)

	forced := exc.WithDetail("retry", true)
	retry, ok := forced.RetryHint()
	assert.True(t, ok)
	assert.True(t, retry)
}

func TestWithDetailDoesNotMutateOriginal(t *testing.T) {
	exc := NewExecutionFailure("boom")
	_ = exc.WithDetail("retry", false)
	assert.NotContains(t, exc.Details, "retry")
}
