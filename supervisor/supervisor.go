// Package supervisor spawns and tears down the goroutines that back every
// timed or asynchronous invocation (C3, §4.3). Go has no process monitors
// and no forced kill of a running goroutine; per spec §9 this package
// commits to the documented re-architecture: "monitoring" is a
// single-shot done channel closed after the result is recorded, and
// "forceful kill" degrades to cooperative cancellation — on timeout the
// supervisor stops waiting and cancels the task's context, but the
// goroutine itself is orphaned until it observes ctx.Done() and returns.
package supervisor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gomind-actions/actionkit/action"
)

// Outcome is what a spawned task produced: either a value, an error, or a
// recovered panic. Exactly one terminal outcome is ever recorded per Task
// (I1's "at most once" invariant, ported to the goroutine world).
type Outcome struct {
	Value      any
	Err        error
	Panicked   bool
	PanicValue any
	Stack      string
}

// Task is the Go rendering of an AsyncRef's execution half: {ref, pid,
// monitor_ref} become {ID, cancel, done}. Task is exclusively owned by the
// code that spawned it until Await/Cancel release it.
type Task struct {
	ID     string
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	result atomic.Pointer[Outcome]

	mu      sync.Mutex
	started bool
}

// Done returns a channel closed exactly once, after Result() is safe to
// read — the Go analogue of the spec's ordering guarantee that a ref's
// result is never observed after its DOWN(reason != normal).
func (t *Task) Done() <-chan struct{} { return t.done }

// Result returns the recorded outcome, or nil if the task has not finished.
func (t *Task) Result() *Outcome { return t.result.Load() }

// Cancel requests cooperative cancellation. Idempotent.
func (t *Task) Cancel() { t.cancel() }

// SpawnOptions configures one SpawnMonitored call.
type SpawnOptions struct {
	// OwnerDone, if non-nil, enables the owner watchdog (§4.3): closing
	// this channel before the task finishes cancels the task's context,
	// preventing an orphaned goroutine from outliving a dead owner.
	OwnerDone <-chan struct{}
}

// Supervisor spawns monitored tasks. Two resolution modes exist (§4.3): the
// package-level Default() singleton, and instance-scoped supervisors
// selected via RegisterInstance/Resolve (instance.go).
type Supervisor struct {
	// no shared mutable state beyond bookkeeping; each Task is
	// self-contained. Kept as a struct (not free functions) so
	// instance-scoped supervisors have somewhere to hang future isolation
	// (e.g. a bounded worker pool) without changing the public API.
	name string
}

var defaultSupervisor = &Supervisor{name: "default"}

// Default returns the fixed global supervisor (§4.3 resolution mode a).
func Default() *Supervisor { return defaultSupervisor }

// SpawnMonitored starts fn in a new goroutine under a child context derived
// from ctx, and returns immediately with a Task the caller can wait on. A
// monitor (the done channel) is established before fn can possibly
// complete, so no completion is ever missed (§4.3: "a monitor is
// established before the child can emit its result").
func (s *Supervisor) SpawnMonitored(ctx context.Context, opts SpawnOptions, fn func(context.Context) (any, error)) (*Task, error) {
	if fn == nil {
		return nil, action.NewConfiguration("spawn_monitored requires a non-nil function")
	}

	childCtx, cancel := context.WithCancel(ctx)
	t := &Task{
		ID:     uuid.New().String(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if opts.OwnerDone != nil {
		go func() {
			select {
			case <-opts.OwnerDone:
				t.cancel()
			case <-t.done:
			}
		}()
	}

	t.mu.Lock()
	t.started = true
	t.mu.Unlock()

	go func() {
		defer t.once.Do(func() { close(t.done) })
		defer cancel()
		outcome := runGuarded(childCtx, fn)
		t.result.Store(outcome)
	}()

	return t, nil
}

// runGuarded invokes fn, recovering panics into an Outcome (§0: "run
// panics are recover()-ed at the task boundary").
func runGuarded(ctx context.Context, fn func(context.Context) (any, error)) (outcome *Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = &Outcome{Panicked: true, PanicValue: r, Stack: string(debug.Stack())}
		}
	}()
	v, err := fn(ctx)
	return &Outcome{Value: v, Err: err}
}

// CleanupOptions configures TimeoutCleanup (§4.3 steps 1-5).
type CleanupOptions struct {
	ShutdownGrace time.Duration
	DownGrace     time.Duration
}

// TimeoutCleanup implements §4.3's teardown sequence, minus the
// message-draining steps that have no analogue without a real mailbox:
//  1. request graceful termination (cancel the task's context)
//  2. wait up to ShutdownGrace for the task to observe cancellation and
//     finish on its own
//  3. if still running, there is nothing stronger to escalate to in Go
//     (§0) — wait up to DownGrace once more and then give up, orphaning
//     the goroutine. The caller must still treat the invocation as
//     terminated (Timeout/cancelled) even though the goroutine may still
//     be running in the background; this is documented, not hidden.
//
// Returns true if the task actually finished within the grace windows.
func TimeoutCleanup(t *Task, opts CleanupOptions) bool {
	t.Cancel()

	timer := time.NewTimer(opts.ShutdownGrace)
	defer timer.Stop()
	select {
	case <-t.Done():
		return true
	case <-timer.C:
	}

	timer2 := time.NewTimer(opts.DownGrace)
	defer timer2.Stop()
	select {
	case <-t.Done():
		return true
	case <-timer2.C:
		return false
	}
}

// Wait blocks until the task finishes or ctx is done, whichever comes
// first, returning the recorded outcome and whether it finished in time.
func Wait(ctx context.Context, t *Task) (*Outcome, bool) {
	select {
	case <-t.Done():
		return t.Result(), true
	case <-ctx.Done():
		return nil, false
	}
}

func (o *Outcome) String() string {
	if o == nil {
		return "<no outcome>"
	}
	if o.Panicked {
		return fmt.Sprintf("panic: %v", o.PanicValue)
	}
	if o.Err != nil {
		return fmt.Sprintf("error: %v", o.Err)
	}
	return fmt.Sprintf("value: %v", o.Value)
}
