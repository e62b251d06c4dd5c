// Package zapadapters provides a zap implementation of kernel.Logger and kernel.ContextualLogger.
package zapadapters

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

const (
	fieldTraceID = "trace_id"
	fieldSpanID  = "span_id"
)

// Logger implements kernel.Logger and kernel.ContextualLogger on a *zap.Logger.
// Arguments are slog-style alternating key/value pairs.
// The context variants add trace_id and span_id when ctx carries a valid span.
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a Logger writing to logger. A nil logger falls back to zap.NewNop.
func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Logger{sugar: logger.Sugar()}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

// DebugContext logs a debug message with trace correlation.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.sugar.Debugw(msg, withTrace(ctx, args)...)
}

// InfoContext logs an info message with trace correlation.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.sugar.Infow(msg, withTrace(ctx, args)...)
}

// WarnContext logs a warning message with trace correlation.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.sugar.Warnw(msg, withTrace(ctx, args)...)
}

// ErrorContext logs an error message with trace correlation.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.sugar.Errorw(msg, withTrace(ctx, args)...)
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func withTrace(ctx context.Context, args []any) []any {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.IsValid() {
		return args
	}

	correlated := make([]any, 0, len(args)+4)
	correlated = append(correlated, fieldTraceID, spanContext.TraceID().String(), fieldSpanID, spanContext.SpanID().String())

	return append(correlated, args...)
}

var (
	_ kernel.Logger           = (*Logger)(nil)
	_ kernel.ContextualLogger = (*Logger)(nil)
)
