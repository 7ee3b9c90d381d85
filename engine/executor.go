// Package engine implements the Executor (C6): the single state machine
// every action invocation runs through, whatever calls it (direct call,
// async.Start, chain.Run, plan.Plan.Run). Grounded structurally on
// orchestration/workflow_engine.go's WorkflowEngine/WorkflowExecutor pair
// — a small struct holding a logger and a config, exposing one entry
// point that drives a fixed sequence of phases — collapsed here from
// "many steps" to "one action, many hook phases."
package engine

import (
	"context"
	"time"

	"github.com/gomind-actions/actionkit/action"
	"github.com/gomind-actions/actionkit/config"
	"github.com/gomind-actions/actionkit/obslog"
	"github.com/gomind-actions/actionkit/resilience"
	"github.com/gomind-actions/actionkit/supervisor"
	"github.com/gomind-actions/actionkit/telemetry"
)

// Executor runs one Action invocation end to end: validate_input, hooks,
// run, validate_output, retry loop, compensation, result normalization.
// It implements action.Invoker so action.ToTool can drive invocations
// without importing this package.
type Executor struct {
	cfg    *config.Config
	logger obslog.Logger
	tel    telemetry.Provider
}

// New builds an Executor. A nil logger falls back to obslog.NoOpLogger;
// telemetry defaults to telemetry.NoOpProvider until WithTelemetry
// attaches a real one.
func New(cfg *config.Config, logger obslog.Logger) *Executor {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = obslog.NoOpLogger{}
	}
	return &Executor{cfg: cfg, logger: logger, tel: telemetry.NoOpProvider{}}
}

// WithTelemetry attaches a telemetry.Provider, enabling the four
// action.start/stop/exception/retry events for every subsequent Execute
// call. Returns e for chaining.
func (e *Executor) WithTelemetry(tel telemetry.Provider) *Executor {
	if tel == nil {
		tel = telemetry.NoOpProvider{}
	}
	e.tel = tel
	return e
}

// Invoke implements action.Invoker with engine defaults and zero extra
// options, for ToTool-exposed actions.
func (e *Executor) Invoke(ctx context.Context, act action.Action, params action.Params) action.Result {
	return e.Execute(ctx, act, params, action.Options{})
}

// Execute runs the full pipeline described in §4.6. If opts.Timeout > 0
// the whole attempt (every hook, run, and output validation) executes
// inside one supervisor.SpawnMonitored task awaited with that timeout;
// opts.Timeout == 0 runs in-caller with no timer, per step 1 of the
// state machine.
func (e *Executor) Execute(ctx context.Context, act action.Action, params action.Params, opts action.Options) (result action.Result) {
	name := act.Metadata().Name
	e.logger.Debug("executing action", map[string]any{"action": name})

	spanCtx, span := e.tel.ActionStart(ctx, name, params)
	defer func() { e.tel.ActionStop(spanCtx, span, result) }()

	sup, err := e.resolveSupervisor(opts.InstanceHandle)
	if err != nil {
		e.logger.Error("failed to resolve supervisor", map[string]any{"action": name, "error": err.Error()})
		e.tel.ActionException(spanCtx, span, err)
		return action.Err(err)
	}

	maxRetries := e.intOr(opts.MaxRetries, e.cfg.DefaultMaxRetries)
	retryCfg := resilience.RetryConfig{
		MaxAttempts:   maxRetries + 1,
		InitialDelay:  time.Duration(e.int64Or(opts.BackoffMs, e.cfg.DefaultBackoffMs)) * time.Millisecond,
		MaxDelay:      time.Duration(e.int64Or(opts.MaxBackoffMs, e.cfg.MaxBackoffMs)) * time.Millisecond,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}

	attemptsMade := 0
	for {
		result = e.runOneAttempt(spanCtx, sup, act, params, opts)
		attemptsMade++
		if result.OK || result.Err == nil {
			return result
		}
		e.tel.ActionException(spanCtx, span, result.Err)

		if !resilience.ShouldRetry(result.Err, attemptsMade, retryCfg) {
			break
		}
		delay := resilience.Backoff(attemptsMade-1, retryCfg)
		e.logger.Debug("retrying action", map[string]any{"action": name, "attempt": attemptsMade, "delay_ms": delay.Milliseconds(), "kind": result.Err.Kind})
		e.tel.ActionRetry(spanCtx, span, attemptsMade, delay)
		if !e.sleep(spanCtx, delay) {
			result = action.Err(action.NewInternal("context cancelled during retry backoff", ctx.Err()))
			return result
		}
	}

	comp := act.CompensationConfig()
	if !comp.Enabled {
		e.logger.Warn("action failed without compensation", map[string]any{"action": name, "kind": result.Err.Kind})
		return result
	}

	compCfg := resilience.CompensationConfig{
		Enabled:    true,
		MaxRetries: comp.MaxRetries,
		DownGrace:  500 * time.Millisecond,
		CompensationFunc: func(cctx context.Context, failedParams action.Params, original *action.Exception) (action.Params, error) {
			return act.OnError(cctx, failedParams, original, opts)
		},
	}
	timeoutMs := resilience.ResolveCompensationTimeoutMs(opts.CompensationTimeout, comp.TimeoutMs, opts.Timeout, e.cfg.CompensationTimeoutMs)
	originalDirective, hadDirective := result.Directive, result.HasDirective
	finalErr := resilience.Compensate(spanCtx, params, result.Err, compCfg, timeoutMs)
	e.logger.Info("compensation ran", map[string]any{"action": name, "compensated": finalErr.Details["compensated"]})
	if hadDirective {
		result = action.ErrWithDirective(finalErr, originalDirective)
	} else {
		result = action.Err(finalErr)
	}
	return result
}

// runOneAttempt drives hooking_before → validate_input → hooking_after →
// run → after_run → (validate_output) exactly once, optionally wrapped in
// a timed supervised task.
func (e *Executor) runOneAttempt(ctx context.Context, sup *supervisor.Supervisor, act action.Action, params action.Params, opts action.Options) action.Result {
	// opts.Timeout's zero value is load-bearing (§4.6 step 1): it means
	// "run in-caller, no timer," not "fall back to the configured
	// default." Callers that want the configured default must set
	// opts.Timeout themselves (e.g. from cfg.DefaultTimeoutMs).
	timeoutMs := opts.Timeout

	runAttempt := func(attemptCtx context.Context) action.Result {
		return e.pipeline(attemptCtx, act, params)
	}

	if timeoutMs <= 0 {
		return runAttempt(e.prepareContext(ctx, act, 0))
	}

	deadline := time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	attemptCtx := e.prepareContext(ctx, act, timeoutMs)

	task, err := sup.SpawnMonitored(attemptCtx, supervisor.SpawnOptions{}, func(taskCtx context.Context) (any, error) {
		return runAttempt(taskCtx), nil
	})
	if err != nil {
		return action.Err(action.NewConfiguration(err.Error()))
	}

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case <-task.Done():
		return e.interpretTaskOutcome(task.Result(), timeoutMs)
	case <-timer.C:
		// A result that lands during the cleanup grace is discarded: a
		// timed-out attempt always reports Timeout.
		supervisor.TimeoutCleanup(task, supervisor.CleanupOptions{
			ShutdownGrace: 200 * time.Millisecond,
			DownGrace:     200 * time.Millisecond,
		})
		return action.Err(action.NewTimeout(timeoutMs))
	}
}

func (e *Executor) interpretTaskOutcome(out *supervisor.Outcome, timeoutMs int64) action.Result {
	if out == nil {
		return action.Err(action.NewTimeout(timeoutMs))
	}
	if out.Panicked {
		return action.Err(action.NewExecutionFailure("action panicked").WithDetail("original", out.PanicValue).WithDetail("stack", out.Stack))
	}
	if out.Err != nil {
		if exc, ok := action.AsException(out.Err); ok {
			return action.Err(exc)
		}
		return action.Err(action.NewExecutionFailure(out.Err.Error()))
	}
	result, ok := out.Value.(action.Result)
	if !ok {
		return action.Err(action.NewInternal("unexpected run result", nil))
	}
	return result
}

func (e *Executor) prepareContext(ctx context.Context, act action.Action, timeoutMs int64) context.Context {
	ctx = action.WithActionMetadata(ctx, act.Metadata())
	if timeoutMs > 0 {
		ctx = action.WithDeadline(ctx, time.Now().Add(time.Duration(timeoutMs)*time.Millisecond))
	}
	return ctx
}

// pipeline runs the validate/hook/run/validate sequence without any
// timeout or retry concern — those are layered on by the caller.
func (e *Executor) pipeline(ctx context.Context, act action.Action, params action.Params) (out action.Result) {
	defer func() {
		if r := recover(); r != nil {
			out = action.Err(action.NewExecutionFailure("action panicked during pipeline").WithDetail("original", r))
		}
	}()

	params, err := act.BeforeValidateInput(ctx, params)
	if err != nil {
		return action.Err(wrapHookError(err))
	}

	validated, err := act.InputSchema().Validate(params)
	if err != nil {
		return action.Err(wrapHookError(err))
	}

	validated, err = act.AfterValidateInput(ctx, validated)
	if err != nil {
		return action.Err(wrapHookError(err))
	}

	runResult := act.Run(ctx, validated)
	runResult = act.AfterRun(ctx, runResult)
	runResult = action.NormalizeRunResult(runResult)

	if !runResult.OK {
		return runResult
	}

	outSchema := act.OutputSchema()
	outData, err := act.BeforeValidateOutput(ctx, runResult.Data)
	if err != nil {
		return action.Err(wrapHookError(err))
	}
	outData, err = outSchema.Validate(outData)
	if err != nil {
		return action.Err(wrapHookError(err))
	}
	outData, err = act.AfterValidateOutput(ctx, outData)
	if err != nil {
		return action.Err(wrapHookError(err))
	}

	if runResult.HasDirective {
		return action.OkWithDirective(outData, runResult.Directive)
	}
	return action.Ok(outData)
}

func wrapHookError(err error) *action.Exception {
	if exc, ok := action.AsException(err); ok {
		return exc
	}
	return action.NewExecutionFailure(err.Error())
}

func (e *Executor) resolveSupervisor(handle string) (*supervisor.Supervisor, *action.Exception) {
	if handle == "" {
		handle = e.cfg.InstanceHandle
	}
	sup, err := supervisor.Resolve(handle)
	if err != nil {
		if exc, ok := action.AsException(err); ok {
			return nil, exc
		}
		return nil, action.NewConfiguration(err.Error())
	}
	return sup, nil
}

func (e *Executor) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (e *Executor) intOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func (e *Executor) int64Or(v, fallback int64) int64 {
	if v > 0 {
		return v
	}
	return fallback
}
