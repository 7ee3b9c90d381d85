// Package action defines the action contract, its error taxonomy, and the
// result shapes produced by running an action.
package action

import (
	"errors"
	"fmt"
)

// Kind classifies an Exception. Precedence for aggregation/conversion is
// InvalidInput > ExecutionFailure > Timeout > Configuration > Internal.
type Kind string

const (
	// InvalidInput means parameter or output validation rejected the data.
	// Never retried.
	InvalidInput Kind = "invalid_input"

	// ExecutionFailure means run (or a hook) returned or raised an error.
	// Retryable unless Details["retry"] is explicitly false.
	ExecutionFailure Kind = "execution_failure"

	// Timeout means the attempt exceeded its deadline and was torn down.
	// Not retried by default; override with Details["retry"] = true.
	Timeout Kind = "timeout"

	// Configuration means the engine itself was misconfigured (bad
	// instance handle, invalid opts). Never retried.
	Configuration Kind = "configuration"

	// Internal means the engine observed something it cannot attribute to
	// user code: bad arity, malformed run results, panics in framework
	// plumbing.
	Internal Kind = "internal"
)

// kindRank implements the precedence order from the taxonomy: lower rank
// wins when two kinds must be collapsed into one (e.g. aggregating phase
// errors in a Plan).
var kindRank = map[Kind]int{
	InvalidInput:     0,
	ExecutionFailure: 1,
	Timeout:          2,
	Configuration:    3,
	Internal:         4,
}

// HigherPrecedence returns the Exception with the higher-precedence Kind.
// Ties keep a.
func HigherPrecedence(a, b *Exception) *Exception {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if kindRank[b.Kind] < kindRank[a.Kind] {
		return b
	}
	return a
}

// Exception is the one error currency used across the engine. Every
// error-shaped value surfaced to a caller is an *Exception.
type Exception struct {
	Kind    Kind
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Exception) Error() string {
	if e == nil {
		return "<nil exception>"
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes Details["cause"] for errors.Is/As when the exception wraps
// a Go error (e.g. a panic recovered at a task boundary).
func (e *Exception) Unwrap() error {
	if e == nil || e.Details == nil {
		return nil
	}
	if cause, ok := e.Details["cause"].(error); ok {
		return cause
	}
	return nil
}

// WithDetail returns a copy of e with key/value merged into Details.
func (e *Exception) WithDetail(key string, value any) *Exception {
	clone := &Exception{Kind: e.Kind, Message: e.Message, Details: make(map[string]any, len(e.Details)+1)}
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	clone.Details[key] = value
	return clone
}

// NewException builds an Exception with the given kind and message.
func NewException(kind Kind, message string, details map[string]any) *Exception {
	if details == nil {
		details = map[string]any{}
	}
	return &Exception{Kind: kind, Message: message, Details: details}
}

// NewExecutionFailure is a convenience constructor used by actions and by
// result normalization.
func NewExecutionFailure(message string) *Exception {
	return NewException(ExecutionFailure, message, nil)
}

// NewTimeout builds a Timeout exception carrying the configured budget.
func NewTimeout(budgetMs int64) *Exception {
	return NewException(Timeout, "operation timed out", map[string]any{"timeout": budgetMs})
}

// NewConfiguration builds a Configuration exception.
func NewConfiguration(message string) *Exception {
	return NewException(Configuration, message, nil)
}

// NewInternal builds an Internal exception, optionally wrapping a cause.
func NewInternal(message string, cause error) *Exception {
	details := map[string]any{}
	if cause != nil {
		details["cause"] = cause
	}
	return NewException(Internal, message, details)
}

// AsException unwraps err into an *Exception if it is (or wraps) one.
func AsException(err error) (*Exception, bool) {
	var exc *Exception
	if errors.As(err, &exc) {
		return exc, true
	}
	return nil, false
}

// RetryHint reads Details["retry"], if present, as an explicit retry
// override. The second return value is false when no hint is set.
func (e *Exception) RetryHint() (retry bool, ok bool) {
	if e == nil || e.Details == nil {
		return false, false
	}
	v, present := e.Details["retry"]
	if !present {
		return false, false
	}
	b, isBool := v.(bool)
	return b, isBool
}
