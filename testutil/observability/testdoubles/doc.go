// Package testdoubles provides spies for the observability interfaces of the kernel packages.
//
//   - MetricsCollectorSpy: captures duration, counter, and value recordings with their labels
//   - TracingCollectorSpy: captures started and finished spans
//   - ContextualLoggerSpy: captures context-aware log calls
//   - LogHandlerSpy: a slog.Handler capturing records, for components taking a *slog.Logger
//
// The spies let tests verify instrumentation without a telemetry backend.
package testdoubles
