package action

import (
	"context"
	"time"
)

type ctxKey int

const (
	deadlineKey ctxKey = iota
	metadataKey
)

// WithDeadline injects deadline_monotonic_ms (§3) into ctx. Downstream
// collaborators (HTTP clients, DB calls) compute remaining = max(0,
// deadline - now) for their own per-call timeouts; see DeadlineFromContext.
func WithDeadline(ctx context.Context, deadline time.Time) context.Context {
	return context.WithValue(ctx, deadlineKey, deadline)
}

// DeadlineFromContext returns the engine-injected deadline and whether one
// is active. Callers should enforce Remaining() > 0 before dispatching a
// blocking call downstream.
func DeadlineFromContext(ctx context.Context) (time.Time, bool) {
	v := ctx.Value(deadlineKey)
	if v == nil {
		return time.Time{}, false
	}
	d, ok := v.(time.Time)
	return d, ok
}

// Remaining returns the time left until deadline, floored at zero, given an
// active deadline from the context. ok is false when no deadline is set.
func Remaining(ctx context.Context) (remaining time.Duration, ok bool) {
	d, has := DeadlineFromContext(ctx)
	if !has {
		return 0, false
	}
	r := time.Until(d)
	if r < 0 {
		r = 0
	}
	return r, true
}

// Metadata carries per-invocation action identity, injected by the engine
// as action_metadata (§3) and available to hooks and Run via
// MetadataFromContext.
type Metadata struct {
	Name        string
	Description string
	Version     string
	Category    string
	Tags        []string
}

// WithActionMetadata injects the action's metadata into ctx for the
// duration of one invocation.
func WithActionMetadata(ctx context.Context, md Metadata) context.Context {
	return context.WithValue(ctx, metadataKey, md)
}

// MetadataFromContext returns the action metadata injected for the current
// invocation, if any.
func MetadataFromContext(ctx context.Context) (Metadata, bool) {
	v := ctx.Value(metadataKey)
	if v == nil {
		return Metadata{}, false
	}
	md, ok := v.(Metadata)
	return md, ok
}
