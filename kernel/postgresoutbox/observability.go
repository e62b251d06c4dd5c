package postgresoutbox

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

const (
	metricPersistDuration = "outbox_persist_duration_seconds"
	metricEventsPersisted = "outbox_events_persisted"
	metricDatabaseErrors  = "outbox_database_errors_total"

	spanNamePersist = "outbox.persist"

	spanAttrTable          = "outbox.table"
	spanAttrAggregateCount = "outbox.aggregate_count"
	spanAttrEventCount     = "outbox.event_count"
	spanAttrRowsAffected   = "outbox.rows_affected"
	spanAttrErrorType      = "error_type"
	spanAttrDurationMS     = "duration_ms"

	labelOperation = "operation"
	labelStatus    = "status"
	labelErrorType = "error_type"

	operationPersist = "persist"
	operationQuery   = "query"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeBuildQuery    = "build_query"
	errorTypeDatabaseExec  = "database_exec"
	errorTypeDatabaseQuery = "database_query"
	errorTypeRowsAffected  = "rows_affected"
)

// logSQL logs an executed statement with its duration at debug level.
func (s Store) logSQL(ctx context.Context, sqlQuery string, duration time.Duration) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

func (s Store) logInfo(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, msg, args...)
	}
}

func (s Store) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, msg, args...)
	}
}

func (s Store) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.logger != nil {
		s.logger.Error(msg, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDatabaseError counts a failed database operation, with context if the collector supports it.
func (s Store) recordDatabaseError(ctx context.Context, operation, errorType string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation: operation,
		labelStatus:    statusError,
		labelErrorType: errorType,
	}

	if contextualCollector, ok := s.metricsCollector.(kernel.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
}

func (s Store) recordDuration(ctx context.Context, metric string, duration time.Duration, status string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{labelOperation: operationPersist, labelStatus: status}

	if contextualCollector, ok := s.metricsCollector.(kernel.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metric, duration, labels)
}

func (s Store) recordValue(ctx context.Context, metric string, value float64, status string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{labelOperation: operationPersist, labelStatus: status}

	if contextualCollector, ok := s.metricsCollector.(kernel.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	s.metricsCollector.RecordValue(metric, value, labels)
}

// === Tracing Observer Pattern ===

// persistTracingObserver encapsulates the span lifecycle of one Persist call.
type persistTracingObserver struct {
	s    Store
	span kernel.SpanContext
}

func (s Store) startPersistTracing(
	ctx context.Context,
	aggregateCount int,
	eventCount int,
) (*persistTracingObserver, context.Context) {

	if s.tracingCollector == nil {
		return &persistTracingObserver{s: s}, ctx
	}

	newCtx, span := s.tracingCollector.StartSpan(ctx, spanNamePersist, map[string]string{
		spanAttrTable:          s.tableName,
		spanAttrAggregateCount: strconv.Itoa(aggregateCount),
		spanAttrEventCount:     strconv.Itoa(eventCount),
	})

	return &persistTracingObserver{s: s, span: span}, newCtx
}

func (pto *persistTracingObserver) finishSuccess(rowsAffected int64, duration time.Duration) {
	if pto.span == nil {
		return
	}

	pto.s.tracingCollector.FinishSpan(pto.span, statusSuccess, map[string]string{
		spanAttrRowsAffected: strconv.FormatInt(rowsAffected, 10),
		spanAttrDurationMS:   fmt.Sprintf("%.2f", toMilliseconds(duration)),
	})
}

func (pto *persistTracingObserver) finishError(errorType string, duration time.Duration) {
	if pto.span == nil {
		return
	}

	attrs := map[string]string{spanAttrErrorType: errorType}
	if duration > 0 {
		attrs[spanAttrDurationMS] = fmt.Sprintf("%.2f", toMilliseconds(duration))
	}

	pto.s.tracingCollector.FinishSpan(pto.span, statusError, attrs)
}

// === Metrics Observer Pattern ===

// persistMetricsObserver encapsulates the metrics of one Persist call.
type persistMetricsObserver struct {
	s   Store
	ctx context.Context
}

func (s Store) startPersistMetrics(ctx context.Context) *persistMetricsObserver {
	return &persistMetricsObserver{s: s, ctx: ctx}
}

func (pmo *persistMetricsObserver) recordSuccess(eventCount int, duration time.Duration) {
	pmo.s.recordDuration(pmo.ctx, metricPersistDuration, duration, statusSuccess)
	pmo.s.recordValue(pmo.ctx, metricEventsPersisted, float64(eventCount), statusSuccess)
}

func (pmo *persistMetricsObserver) recordError(errorType string, duration time.Duration) {
	pmo.s.recordDuration(pmo.ctx, metricPersistDuration, duration, statusError)
	pmo.s.recordDatabaseError(pmo.ctx, operationPersist, errorType)
}
