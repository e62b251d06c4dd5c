package testdoubles

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

// SpySpanContext is the kernel.SpanContext handed out by the TracingCollectorSpy.
type SpySpanContext struct {
	mu         sync.Mutex
	status     string
	attributes map[string]string
}

// SetStatus implements kernel.SpanContext.
func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = status
}

// AddAttribute implements kernel.SpanContext.
func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}

	c.attributes[key] = value
}

// SpySpanRecord represents one started span and, once finished, its outcome.
type SpySpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Finished        bool
	Status          string
	EndAttributes   map[string]string
	span            *SpySpanContext
}

// TracingCollectorSpy is a kernel.TracingCollector that captures spans for inspection in tests.
type TracingCollectorSpy struct {
	mu    sync.Mutex
	spans []SpySpanRecord
}

var _ kernel.TracingCollector = (*TracingCollectorSpy)(nil)

// NewTracingCollectorSpy creates an empty TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

// StartSpan implements kernel.TracingCollector.
func (s *TracingCollectorSpy) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, kernel.SpanContext) {

	span := &SpySpanContext{}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.spans = append(s.spans, SpySpanRecord{
		Name:            name,
		StartAttributes: maps.Clone(attrs),
		span:            span,
	})

	return ctx, span
}

// FinishSpan implements kernel.TracingCollector.
func (s *TracingCollectorSpy) FinishSpan(spanCtx kernel.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.spans {
		if s.spans[i].span == span {
			s.spans[i].Finished = true
			s.spans[i].Status = status
			s.spans[i].EndAttributes = maps.Clone(attrs)

			return
		}
	}
}

// Spans returns a copy of all captured spans with the given name.
func (s *TracingCollectorSpy) Spans(name string) []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []SpySpanRecord
	for _, record := range s.spans {
		if record.Name == name {
			found = append(found, record)
		}
	}

	return found
}

// Reset clears all captured spans.
func (s *TracingCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spans = nil
}
