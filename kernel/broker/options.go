package broker

import (
	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

// Option defines a functional option for configuring a Broker.
type Option func(*Broker) error

// WithEventHandler registers handler for kind while the Broker is built.
func WithEventHandler(kind kernel.EventKind, handler HandlerFunc) Option {
	return func(b *Broker) error {
		if handler == nil {
			return ErrNilHandler
		}

		b.handlers[kind] = append(b.handlers[kind], handler)

		return nil
	}
}

// WithLogger sets the logger for the Broker.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: handler registration and every handler invocation (development use)
// Info level: aggregate registration, completed dispatches, registry resets (production-safe)
// Error level: handler failures that abort a dispatch.
func WithLogger(logger kernel.Logger) Option {
	return func(b *Broker) error {
		b.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Broker.
// It receives the same messages as the logger set with WithLogger, correlated with the dispatch context.
func WithContextualLogger(logger kernel.ContextualLogger) Option {
	return func(b *Broker) error {
		b.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Broker.
// It receives dispatch durations, dispatched event counts, handler invocations and failures,
// and the number of registered aggregates.
func WithMetrics(collector kernel.MetricsCollector) Option {
	return func(b *Broker) error {
		b.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Broker.
// Every dispatch of a registered aggregate is wrapped in a span.
func WithTracing(collector kernel.TracingCollector) Option {
	return func(b *Broker) error {
		b.tracingCollector = collector
		return nil
	}
}
