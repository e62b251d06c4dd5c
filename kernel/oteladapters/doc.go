// Package oteladapters implements the kernel observability interfaces on top of OpenTelemetry,
// so the broker and the outbox store report to any OpenTelemetry backend without further glue.
//
//   - TracingCollector wraps a trace.Tracer
//   - MetricsCollector maps durations to histograms, counters to counters, and values to gauges
//   - SlogBridgeLogger logs through the otelslog bridge with trace correlation
//   - OTelLogger emits OpenTelemetry log records directly
package oteladapters
