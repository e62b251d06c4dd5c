package testdoubles

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

// MetricKind distinguishes the three recording methods of a MetricsCollector.
type MetricKind string

// Metric kinds captured by the MetricsCollectorSpy.
const (
	MetricKindDuration MetricKind = "duration"
	MetricKindCounter  MetricKind = "counter"
	MetricKindValue    MetricKind = "value"
)

// SpyMetricRecord represents one recorded metric call.
type SpyMetricRecord struct {
	Kind     MetricKind
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
	Context  context.Context
}

// MetricsCollectorSpy is a ContextualMetricsCollector that captures every call for inspection in tests.
type MetricsCollectorSpy struct {
	mu      sync.Mutex
	records []SpyMetricRecord
}

var _ kernel.ContextualMetricsCollector = (*MetricsCollectorSpy)(nil)

// NewMetricsCollectorSpy creates an empty MetricsCollectorSpy.
func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

// RecordDuration implements kernel.MetricsCollector.
func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.RecordDurationContext(context.Background(), metric, duration, labels)
}

// IncrementCounter implements kernel.MetricsCollector.
func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.IncrementCounterContext(context.Background(), metric, labels)
}

// RecordValue implements kernel.MetricsCollector.
func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.RecordValueContext(context.Background(), metric, value, labels)
}

// RecordDurationContext implements kernel.ContextualMetricsCollector.
func (s *MetricsCollectorSpy) RecordDurationContext(
	ctx context.Context,
	metric string,
	duration time.Duration,
	labels map[string]string,
) {
	s.append(SpyMetricRecord{Kind: MetricKindDuration, Metric: metric, Duration: duration, Labels: labels, Context: ctx})
}

// IncrementCounterContext implements kernel.ContextualMetricsCollector.
func (s *MetricsCollectorSpy) IncrementCounterContext(ctx context.Context, metric string, labels map[string]string) {
	s.append(SpyMetricRecord{Kind: MetricKindCounter, Metric: metric, Labels: labels, Context: ctx})
}

// RecordValueContext implements kernel.ContextualMetricsCollector.
func (s *MetricsCollectorSpy) RecordValueContext(
	ctx context.Context,
	metric string,
	value float64,
	labels map[string]string,
) {
	s.append(SpyMetricRecord{Kind: MetricKindValue, Metric: metric, Value: value, Labels: labels, Context: ctx})
}

func (s *MetricsCollectorSpy) append(record SpyMetricRecord) {
	record.Labels = maps.Clone(record.Labels)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
}

// Records returns a copy of all captured records of the given kind and metric name.
func (s *MetricsCollectorSpy) Records(kind MetricKind, metric string) []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []SpyMetricRecord
	for _, record := range s.records {
		if record.Kind == kind && record.Metric == metric {
			found = append(found, record)
		}
	}

	return found
}

// Count returns how many records of the given kind and metric name were captured.
func (s *MetricsCollectorSpy) Count(kind MetricKind, metric string) int {
	return len(s.Records(kind, metric))
}

// HasRecord reports whether a record of the given kind and metric name carries all the given labels.
func (s *MetricsCollectorSpy) HasRecord(kind MetricKind, metric string, labels map[string]string) bool {
	for _, record := range s.Records(kind, metric) {
		if containsLabels(record.Labels, labels) {
			return true
		}
	}

	return false
}

// LastValue returns the most recent value recorded for metric.
func (s *MetricsCollectorSpy) LastValue(metric string) (float64, bool) {
	records := s.Records(MetricKindValue, metric)
	if len(records) == 0 {
		return 0, false
	}

	return records[len(records)-1].Value, true
}

// Reset clears all captured records.
func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
}

func containsLabels(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}

	return true
}
