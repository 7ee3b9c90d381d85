package resilience

import (
	"context"
	"time"

	"github.com/gomind-actions/actionkit/action"
	"github.com/gomind-actions/actionkit/supervisor"
)

// CompensationConfig mirrors action.CompensationConfig but lives in this
// package so resilience has no import-cycle dependency on the engine that
// consumes it; engine converts action.CompensationConfig into this shape
// at the call site. CompensationFunc has the same shape as
// action.Action.OnError so engine can wire act.OnError in directly,
// closing over opts.
type CompensationConfig struct {
	Enabled          bool
	TimeoutMs        int64
	MaxRetries       int
	DownGrace        time.Duration
	CompensationFunc func(ctx context.Context, failedParams action.Params, original *action.Exception) (action.Params, error)
}

// resolveTimeout implements §4.5's precedence: "opts.compensation_timeout
// ?? config.compensation_timeout ?? opts.timeout ?? default".
func resolveTimeout(optsCompensationTimeout, configCompensationTimeout, optsTimeout, defaultTimeout int64) int64 {
	if optsCompensationTimeout > 0 {
		return optsCompensationTimeout
	}
	if configCompensationTimeout > 0 {
		return configCompensationTimeout
	}
	if optsTimeout > 0 {
		return optsTimeout
	}
	return defaultTimeout
}

// ResolveCompensationTimeoutMs is the exported form of resolveTimeout, used
// by engine to compute the budget before calling Compensate.
func ResolveCompensationTimeoutMs(optsCompensationTimeout, configCompensationTimeout, optsTimeout, defaultTimeout int64) int64 {
	return resolveTimeout(optsCompensationTimeout, configCompensationTimeout, optsTimeout, defaultTimeout)
}

// Compensate runs cfg.CompensationFunc inside its own supervised task,
// independent of the retry budget that produced original. It implements
// §4.5's outcome table verbatim, attaching compensated/compensation_result/
// compensation_error/exit_reason/original_error/compensation_attempts/
// compensation_max_retries to the details of the *action.Exception it
// returns. The returned exception is always ExecutionFailure; any
// directive carried by the original result lives on Result.Directive, not
// here, so the caller (engine.Executor) is responsible for re-attaching it
// to the final Result.
func Compensate(ctx context.Context, failedParams action.Params, original *action.Exception, cfg CompensationConfig, timeoutMs int64) *action.Exception {
	if !cfg.Enabled || cfg.CompensationFunc == nil {
		return original
	}

	timeout := time.Duration(timeoutMs) * time.Millisecond
	maxAttempts := cfg.MaxRetries + 1
	downGrace := cfg.DownGrace
	if downGrace <= 0 {
		downGrace = 50 * time.Millisecond
	}

	var last compensationOutcome
	attemptsUsed := 0
	for attempt := 0; attempt < maxAttempts; attempt++ {
		attemptsUsed++
		last = runCompensationAttempt(ctx, failedParams, original, cfg, timeout, downGrace)
		if last.kind == outcomeResult || last.kind == outcomeError {
			// Compensation's own return-error does not retry (§4.5).
			break
		}
		// Only timeout/crash outcomes consume an additional retry.
	}

	details := map[string]any{
		"original_error":           original,
		"compensation_attempts":    attemptsUsed,
		"compensation_max_retries": cfg.MaxRetries,
	}

	switch last.kind {
	case outcomeResult:
		details["compensated"] = true
		details["compensation_result"] = last.value
	case outcomeError:
		details["compensated"] = false
		details["compensation_error"] = last.exc
	case outcomeTimeout:
		details["compensated"] = false
		details["compensation_error"] = action.NewTimeout(timeoutMs)
	case outcomeCrash:
		details["compensated"] = false
		details["exit_reason"] = last.exitReason
	case outcomeNonConforming:
		details["compensated"] = false
		details["compensation_error"] = action.NewInternal("invalid compensation result", nil)
	}

	return action.NewException(action.ExecutionFailure, original.Message, details)
}

type outcomeKind int

const (
	outcomeResult outcomeKind = iota
	outcomeError
	outcomeTimeout
	outcomeCrash
	outcomeNonConforming
)

type compensationOutcome struct {
	kind       outcomeKind
	value      action.Params
	exc        *action.Exception
	exitReason string
}

func runCompensationAttempt(ctx context.Context, failedParams action.Params, original *action.Exception, cfg CompensationConfig, timeout time.Duration, downGrace time.Duration) compensationOutcome {
	task, err := supervisor.Default().SpawnMonitored(ctx, supervisor.SpawnOptions{}, func(taskCtx context.Context) (any, error) {
		data, cerr := cfg.CompensationFunc(taskCtx, failedParams, original)
		if cerr != nil {
			return nil, cerr
		}
		return data, nil
	})
	if err != nil {
		return compensationOutcome{kind: outcomeNonConforming}
	}

	var deadlineCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadlineCh = timer.C
	}

	select {
	case <-task.Done():
		return interpretOutcome(task.Result())
	case <-deadlineCh:
		finished := supervisor.TimeoutCleanup(task, supervisor.CleanupOptions{ShutdownGrace: downGrace, DownGrace: downGrace})
		if finished {
			return interpretOutcome(task.Result())
		}
		return compensationOutcome{kind: outcomeTimeout}
	}
}

func interpretOutcome(out *supervisor.Outcome) compensationOutcome {
	if out == nil {
		return compensationOutcome{kind: outcomeNonConforming}
	}
	if out.Panicked {
		return compensationOutcome{kind: outcomeCrash, exitReason: out.String()}
	}
	if out.Err != nil {
		if exc, ok := action.AsException(out.Err); ok {
			return compensationOutcome{kind: outcomeError, exc: exc}
		}
		return compensationOutcome{kind: outcomeError, exc: action.NewExecutionFailure(out.Err.Error())}
	}
	if out.Value == nil {
		return compensationOutcome{kind: outcomeResult, value: action.Params{}}
	}
	data, ok := out.Value.(action.Params)
	if !ok {
		return compensationOutcome{kind: outcomeNonConforming}
	}
	return compensationOutcome{kind: outcomeResult, value: data}
}
