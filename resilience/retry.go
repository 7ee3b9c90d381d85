// Package resilience implements the retry/backoff (C4) and compensation
// (C5) modules: deciding whether a failed run is worth retrying, how long
// to wait before the next attempt, and how to run an error callback with
// its own independent budget.
package resilience

import (
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/gomind-actions/actionkit/action"
)

// RetryConfig controls attempt count and inter-attempt delay. Field names
// carry over from the prior hand-rolled implementation; BackoffFactor and
// JitterEnabled now configure a backoff.ExponentialBackOff instead of a
// manual math.Sin jitter term.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterEnabled bool
}

// DefaultRetryConfig matches §4.4's defaults (the same values as
// config.DefaultConfig): one retry (two attempts), a 250ms initial delay
// doubling per attempt, capped at 30s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   2,
		InitialDelay:  250 * time.Millisecond,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
}

// IsRetryable implements §4.4's precedence table: InvalidInput and
// Configuration are never retryable regardless of Details; an explicit
// Details["retry"] bool overrides the per-kind default for the remaining
// kinds; absent an override, ExecutionFailure and Internal default to
// retryable and Timeout defaults to not retryable.
func IsRetryable(exc *action.Exception) bool {
	if exc == nil {
		return false
	}
	switch exc.Kind {
	case action.InvalidInput, action.Configuration:
		return false
	}
	if override, ok := exc.RetryHint(); ok {
		return override
	}
	if exc.Kind == action.Timeout {
		return false
	}
	return true
}

// ShouldRetry combines IsRetryable with the attempt budget: attempt is the
// number of attempts already made (1 after the first run). Retrying stops
// once attempt reaches cfg.MaxAttempts even if the error is otherwise
// retryable.
func ShouldRetry(exc *action.Exception, attempt int, cfg RetryConfig) bool {
	if attempt >= cfg.MaxAttempts {
		return false
	}
	return IsRetryable(exc)
}

// newExponentialBackOff builds the cenkalti/backoff/v5 strategy backing
// Backoff, configured per §4.4: "min(max_backoff_cap, initial *
// 2^attempt)" is the shape of ExponentialBackOff with Multiplier=2 and no
// elapsed-time cutoff of its own — the caller's attempt budget is the
// cutoff, not a wall-clock one.
func newExponentialBackOff(cfg RetryConfig) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialDelay
	b.MaxInterval = cfg.MaxDelay
	if cfg.BackoffFactor > 0 {
		b.Multiplier = cfg.BackoffFactor
	}
	if !cfg.JitterEnabled {
		b.RandomizationFactor = 0
	}
	return b
}

// Backoff returns the delay to wait before the given attempt (0-indexed:
// attempt 0 is the delay before the first retry, i.e. after the initial
// run fails once). It drives cenkalti/backoff/v5's ExponentialBackOff
// forward attempt+1 steps rather than hand-rolling the exponent, so the
// jitter and capping behavior matches the library rather than a
// reimplementation of it.
func Backoff(attempt int, cfg RetryConfig) time.Duration {
	b := newExponentialBackOff(cfg)
	var delay time.Duration
	for i := 0; i <= attempt; i++ {
		delay = b.NextBackOff()
	}
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}
