// Package obslog is the ambient logging layer used across every package in
// this module. The interface shape is carried over from
// core/interfaces.go's Logger/ComponentAwareLogger contract (Info/Error/
// Warn/Debug plus *WithContext variants); the concrete implementation is
// backed by github.com/rs/zerolog instead of the teacher's hand-rolled
// JSON/text branch, per the domain-stack wiring decision in SPEC_FULL.md.
package obslog

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the contract every collaborator in this module logs through.
type Logger interface {
	Info(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Debug(msg string, fields map[string]any)

	InfoWithContext(ctx context.Context, msg string, fields map[string]any)
	ErrorWithContext(ctx context.Context, msg string, fields map[string]any)
	WarnWithContext(ctx context.Context, msg string, fields map[string]any)
	DebugWithContext(ctx context.Context, msg string, fields map[string]any)
}

// ComponentAwareLogger additionally scopes a logger to a named component
// (engine, async, chain, plan, ...), the way the teacher's
// ComponentAwareLogger does.
type ComponentAwareLogger interface {
	Logger
	WithComponent(component string) Logger
}

// ZerologLogger adapts zerolog.Logger to the Logger/ComponentAwareLogger
// contract. Format ("json" or "text") and level are resolved the way
// core/config.go's LoggingConfig does: JSON for machine consumption,
// console-writer text for local development.
type ZerologLogger struct {
	z         zerolog.Logger
	component string
}

// New builds a ZerologLogger writing to out in the requested format
// ("json" or "text") at the requested level ("debug", "info", "warn",
// "error"). An unrecognized level falls back to info, matching the
// teacher's permissive GetLogLevel() default.
func New(out io.Writer, format, level string) *ZerologLogger {
	if out == nil {
		out = os.Stdout
	}
	var writer io.Writer = out
	if format == "text" {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	z := zerolog.New(writer).With().Timestamp().Logger().Level(parseLevel(level))
	return &ZerologLogger{z: z}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *ZerologLogger) event(e *zerolog.Event, msg string, fields map[string]any) {
	if l.component != "" {
		e = e.Str("component", l.component)
	}
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}

func (l *ZerologLogger) Info(msg string, fields map[string]any)  { l.event(l.z.Info(), msg, fields) }
func (l *ZerologLogger) Error(msg string, fields map[string]any) { l.event(l.z.Error(), msg, fields) }
func (l *ZerologLogger) Warn(msg string, fields map[string]any)  { l.event(l.z.Warn(), msg, fields) }
func (l *ZerologLogger) Debug(msg string, fields map[string]any) { l.event(l.z.Debug(), msg, fields) }

func (l *ZerologLogger) InfoWithContext(ctx context.Context, msg string, fields map[string]any) {
	l.withTraceFields(ctx, fields, l.Info, msg)
}
func (l *ZerologLogger) ErrorWithContext(ctx context.Context, msg string, fields map[string]any) {
	l.withTraceFields(ctx, fields, l.Error, msg)
}
func (l *ZerologLogger) WarnWithContext(ctx context.Context, msg string, fields map[string]any) {
	l.withTraceFields(ctx, fields, l.Warn, msg)
}
func (l *ZerologLogger) DebugWithContext(ctx context.Context, msg string, fields map[string]any) {
	l.withTraceFields(ctx, fields, l.Debug, msg)
}

func (l *ZerologLogger) withTraceFields(ctx context.Context, fields map[string]any, emit func(string, map[string]any), msg string) {
	merged := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	if span := ctx.Value(traceIDKey{}); span != nil {
		merged["trace_id"] = span
	}
	emit(msg, merged)
}

type traceIDKey struct{}

// WithComponent returns a derived logger tagging every event with
// component, matching ComponentAwareLogger.
func (l *ZerologLogger) WithComponent(component string) Logger {
	return &ZerologLogger{z: l.z, component: component}
}

// NoOpLogger discards everything. Same name and role as the teacher's, used
// as the zero-value default and in tests that don't care about log output.
type NoOpLogger struct{}

func (NoOpLogger) Info(string, map[string]any)  {}
func (NoOpLogger) Error(string, map[string]any) {}
func (NoOpLogger) Warn(string, map[string]any)  {}
func (NoOpLogger) Debug(string, map[string]any) {}

func (NoOpLogger) InfoWithContext(context.Context, string, map[string]any)  {}
func (NoOpLogger) ErrorWithContext(context.Context, string, map[string]any) {}
func (NoOpLogger) WarnWithContext(context.Context, string, map[string]any)  {}
func (NoOpLogger) DebugWithContext(context.Context, string, map[string]any) {}

func (NoOpLogger) WithComponent(string) Logger { return NoOpLogger{} }
