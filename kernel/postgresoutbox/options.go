package postgresoutbox

import (
	"time"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithTableName sets the outbox table name.
func WithTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		s.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: persisted and queried event counts with durations (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: failures that make an operation fail.
func WithLogger(logger kernel.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// It receives the same messages as the logger set with WithLogger, correlated with the operation's context.
func WithContextualLogger(logger kernel.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives persist durations, persisted event counts, and database errors.
func WithMetrics(collector kernel.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// Every Persist call is wrapped in a span.
func WithTracing(collector kernel.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithClock sets the clock stamping the persisted_at column. A nil clock is ignored.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) error {
		if clock != nil {
			s.clock = clock
		}

		return nil
	}
}
