// Package async implements the start/await/cancel facade (C7) over the
// Executor (engine) and the task supervisor. Grounded on
// core/async_task.go's TaskStatus enum and ProgressReporter pattern,
// generalized from a queue-backed long-running task to a supervised
// goroutine running one action invocation.
package async

import (
	"context"
	"sync"
	"time"

	"github.com/gomind-actions/actionkit/action"
	"github.com/gomind-actions/actionkit/config"
	"github.com/gomind-actions/actionkit/supervisor"
)

// Status mirrors core/async_task.go's TaskStatus enum, trimmed to the
// states an AsyncRef can actually observe.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether s will never change again.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Executor is the subset of engine.Executor that Start needs; defined
// here to avoid an import cycle between engine and async.
type Executor interface {
	Execute(ctx context.Context, act action.Action, params action.Params, opts action.Options) action.Result
}

// AsyncRef is the handle returned by Start: the Go rendering of a
// {ref, pid, monitor_ref} triple collapsed onto one supervisor.Task.
type AsyncRef struct {
	task *supervisor.Task
	sup  *supervisor.Supervisor
	cfg  *config.Config

	mu       sync.Mutex
	status   Status
	cancelled bool
	once     sync.Once
}

// Status returns the ref's current observable state.
func (r *AsyncRef) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *AsyncRef) setStatus(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.IsTerminal() {
		return
	}
	r.status = s
}

// progressKey threads an opts.OnProgress callback into the action's
// context, generalizing core/async_task.go's ProgressReporter to a plain
// func callback rather than an interface, matching action.Options'
// existing func-field idiom.
type progressKey struct{}

// WithProgress returns a context an action's Run can use to report partial
// progress via opts.OnProgress, if the caller supplied one.
func WithProgress(ctx context.Context, fn func(action.Params)) context.Context {
	if fn == nil {
		return ctx
	}
	return context.WithValue(ctx, progressKey{}, fn)
}

// ReportProgress invokes the progress callback stashed in ctx, if any.
func ReportProgress(ctx context.Context, progress action.Params) {
	if fn, ok := ctx.Value(progressKey{}).(func(action.Params)); ok && fn != nil {
		fn(progress)
	}
}

// Start spawns a supervised task running the full Executor pipeline for
// one invocation and returns immediately with an AsyncRef; the caller is
// the task's owner.
func Start(ctx context.Context, eng Executor, act action.Action, params action.Params, opts action.Options, cfg *config.Config) (*AsyncRef, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	sup, err := resolveSupervisor(opts.InstanceHandle, cfg)
	if err != nil {
		return nil, err
	}

	ref := &AsyncRef{sup: sup, cfg: cfg, status: StatusRunning}

	runCtx := ctx
	if opts.OnProgress != nil {
		runCtx = WithProgress(runCtx, opts.OnProgress)
	}

	task, spawnErr := sup.SpawnMonitored(runCtx, supervisor.SpawnOptions{}, func(taskCtx context.Context) (any, error) {
		return eng.Execute(taskCtx, act, params, opts), nil
	})
	if spawnErr != nil {
		if exc, ok := action.AsException(spawnErr); ok {
			return nil, exc
		}
		return nil, action.NewConfiguration(spawnErr.Error())
	}
	ref.task = task
	return ref, nil
}

// Await implements §4.7's arrival-order rules: a clean result is surfaced
// directly, a completion with no recorded outcome gets a short grace wait
// before being treated as an execution failure, a crash/panic surfaces as
// ExecutionFailure, and a deadline reached before completion drives
// timeout_cleanup and surfaces Timeout.
func Await(ctx context.Context, ref *AsyncRef, timeout time.Duration) action.Result {
	if timeout <= 0 {
		timeout = time.Duration(ref.cfg.AwaitTimeoutMs) * time.Millisecond
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ref.task.Done():
		return ref.interpret()
	case <-ctx.Done():
		return action.Err(action.NewExecutionFailure("await cancelled: " + ctx.Err().Error()))
	case <-timer.C:
		// A result that lands during the cleanup grace is discarded: an
		// await that reached its deadline always reports Timeout.
		supervisor.TimeoutCleanup(ref.task, supervisor.CleanupOptions{
			ShutdownGrace: time.Duration(ref.cfg.AsyncShutdownGraceMs) * time.Millisecond,
			DownGrace:     time.Duration(ref.cfg.AsyncDownGraceMs) * time.Millisecond,
		})
		ref.setStatus(StatusFailed)
		return action.Err(action.NewTimeout(timeout.Milliseconds()))
	}
}

func (r *AsyncRef) interpret() action.Result {
	out := r.task.Result()
	if out == nil {
		// DOWN normal without a recorded result: grace wait for the
		// in-flight store to land before declaring it lost.
		time.Sleep(5 * time.Millisecond)
		out = r.task.Result()
		if out == nil {
			r.setStatus(StatusFailed)
			return action.Err(action.NewExecutionFailure("completed but result not received"))
		}
	}

	if out.Panicked {
		r.setStatus(StatusFailed)
		return action.Err(action.NewExecutionFailure("async task exited: panic").
			WithDetail("original", out.PanicValue).WithDetail("stack", out.Stack))
	}
	if out.Err != nil {
		r.setStatus(StatusFailed)
		if exc, ok := action.AsException(out.Err); ok {
			return action.Err(exc)
		}
		return action.Err(action.NewExecutionFailure("async task exited: " + out.Err.Error()))
	}

	result, ok := out.Value.(action.Result)
	if !ok {
		r.setStatus(StatusFailed)
		return action.Err(action.NewInternal("unexpected async result shape", nil))
	}
	if result.OK {
		r.setStatus(StatusCompleted)
	} else {
		r.setStatus(StatusFailed)
	}
	return result
}

// Cancel requests cooperative cancellation and waits out the configured
// grace windows before giving up on the goroutine (§4.3/§4.7). Idempotent:
// a second call on an already-cancelled ref is a no-op success.
func (r *AsyncRef) Cancel() error {
	r.mu.Lock()
	if r.cancelled {
		r.mu.Unlock()
		return nil
	}
	r.cancelled = true
	r.mu.Unlock()

	r.once.Do(func() {
		supervisor.TimeoutCleanup(r.task, supervisor.CleanupOptions{
			ShutdownGrace: time.Duration(r.cfg.AsyncShutdownGraceMs) * time.Millisecond,
			DownGrace:     time.Duration(r.cfg.AsyncDownGraceMs) * time.Millisecond,
		})
		r.setStatus(StatusCancelled)
	})
	return nil
}

// Cancel is the package-level form for callers holding only a ref,
// matching the spec's cancel(AsyncRef|pid) surface.
func Cancel(ref *AsyncRef) error {
	if ref == nil {
		return action.NewException(action.InvalidInput, "cancel requires a non-nil AsyncRef", nil)
	}
	return ref.Cancel()
}

func resolveSupervisor(handle string, cfg *config.Config) (*supervisor.Supervisor, *action.Exception) {
	if handle == "" {
		handle = cfg.InstanceHandle
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
