package broker

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

const (
	metricDispatchDuration     = "broker_dispatch_duration_seconds"
	metricEventsDispatched     = "broker_events_dispatched"
	metricHandlerInvocations   = "broker_handler_invocations_total"
	metricHandlerErrors        = "broker_handler_errors_total"
	metricRegisteredAggregates = "broker_registered_aggregates"

	spanNameDispatch = "broker.dispatch"

	spanAttrAggregateID     = "aggregate.id"
	spanAttrEventCount      = "dispatch.event_count"
	spanAttrInvocationCount = "dispatch.invocation_count"
	spanAttrFailedEventKind = "dispatch.failed_event_kind"
	spanAttrPanic           = "dispatch.panic"
	spanAttrDurationMS      = "dispatch.duration_ms"

	labelStatus    = "status"
	labelEventKind = "event_kind"

	statusSuccess = "success"
	statusError   = "error"
)

// logDebug logs at debug level to every configured logger.
func (b *Broker) logDebug(ctx context.Context, msg string, args ...any) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}

	if b.contextualLogger != nil {
		b.contextualLogger.DebugContext(ctx, msg, args...)
	}
}

// logInfo logs at info level to every configured logger.
func (b *Broker) logInfo(ctx context.Context, msg string, args ...any) {
	if b.logger != nil {
		b.logger.Info(msg, args...)
	}

	if b.contextualLogger != nil {
		b.contextualLogger.InfoContext(ctx, msg, args...)
	}
}

// logError logs err at error level to every configured logger.
func (b *Broker) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if b.logger != nil {
		b.logger.Error(msg, allArgs...)
	}

	if b.contextualLogger != nil {
		b.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDuration records a duration metric, with context if the collector supports it.
func (b *Broker) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if b.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := b.metricsCollector.(kernel.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	b.metricsCollector.RecordDuration(metric, duration, labels)
}

// incrementCounter increments a counter metric, with context if the collector supports it.
func (b *Broker) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if b.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := b.metricsCollector.(kernel.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	b.metricsCollector.IncrementCounter(metric, labels)
}

// recordValue records a value metric, with context if the collector supports it.
func (b *Broker) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if b.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := b.metricsCollector.(kernel.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	b.metricsCollector.RecordValue(metric, value, labels)
}

func (b *Broker) recordRegisteredAggregates(ctx context.Context, count int) {
	b.recordValue(ctx, metricRegisteredAggregates, float64(count), map[string]string{})
}

// === Tracing Observer Pattern ===

// dispatchTracingObserver encapsulates the span lifecycle of one dispatch.
type dispatchTracingObserver struct {
	b    *Broker
	span kernel.SpanContext
}

func (b *Broker) startDispatchTracing(
	ctx context.Context,
	id kernel.ID,
	eventCount int,
) (*dispatchTracingObserver, context.Context) {

	if b.tracingCollector == nil {
		return &dispatchTracingObserver{b: b}, ctx
	}

	attrs := map[string]string{
		spanAttrAggregateID: id.String(),
		spanAttrEventCount:  strconv.Itoa(eventCount),
	}

	newCtx, span := b.tracingCollector.StartSpan(ctx, spanNameDispatch, attrs)

	return &dispatchTracingObserver{b: b, span: span}, newCtx
}

func (dto *dispatchTracingObserver) finishSuccess(eventCount, invocationCount int, duration time.Duration) {
	if dto.span == nil {
		return
	}

	dto.b.tracingCollector.FinishSpan(dto.span, statusSuccess, map[string]string{
		spanAttrEventCount:      strconv.Itoa(eventCount),
		spanAttrInvocationCount: strconv.Itoa(invocationCount),
		spanAttrDurationMS:      formatDuration(duration),
	})
}

func (dto *dispatchTracingObserver) finishError(failedKind kernel.EventKind, duration time.Duration) {
	if dto.span == nil {
		return
	}

	dto.b.tracingCollector.FinishSpan(dto.span, statusError, map[string]string{
		spanAttrFailedEventKind: failedKind,
		spanAttrDurationMS:      formatDuration(duration),
	})
}

func formatDuration(duration time.Duration) string {
	return fmt.Sprintf("%.2f", toMilliseconds(duration))
}

func (dto *dispatchTracingObserver) finishPanic(recovered any, duration time.Duration) {
	if dto.span == nil {
		return
	}

	dto.b.tracingCollector.FinishSpan(dto.span, statusError, map[string]string{
		spanAttrPanic:      fmt.Sprint(recovered),
		spanAttrDurationMS: formatDuration(duration),
	})
}

// === Metrics Observer Pattern ===

// dispatchMetricsObserver encapsulates the metrics of one dispatch.
type dispatchMetricsObserver struct {
	b   *Broker
	ctx context.Context
}

func (b *Broker) startDispatchMetrics(ctx context.Context) *dispatchMetricsObserver {
	return &dispatchMetricsObserver{b: b, ctx: ctx}
}

func (dmo *dispatchMetricsObserver) recordInvocation(kind kernel.EventKind) {
	dmo.b.incrementCounter(dmo.ctx, metricHandlerInvocations, map[string]string{labelEventKind: kind})
}

func (dmo *dispatchMetricsObserver) recordSuccess(eventCount int, duration time.Duration) {
	dmo.b.recordDuration(dmo.ctx, metricDispatchDuration, duration, map[string]string{labelStatus: statusSuccess})
	dmo.b.recordValue(dmo.ctx, metricEventsDispatched, float64(eventCount), map[string]string{labelStatus: statusSuccess})
}

func (dmo *dispatchMetricsObserver) recordError(kind kernel.EventKind, duration time.Duration) {
	dmo.b.recordDuration(dmo.ctx, metricDispatchDuration, duration, map[string]string{labelStatus: statusError})
	dmo.b.incrementCounter(dmo.ctx, metricHandlerErrors, map[string]string{labelEventKind: kind})
}
