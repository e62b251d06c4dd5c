package broker

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

// ErrNilHandler is returned when a nil HandlerFunc is supplied as an Option.
var ErrNilHandler = errors.New("nil event handler supplied")

const (
	logMsgHandlerRegistered   = "event handler registered"
	logMsgAggregateRegistered = "aggregate registered"
	logMsgAggregateRemoved    = "aggregate unregistered"
	logMsgDispatchInFlight    = "dispatch skipped, aggregate is being dispatched"
	logMsgDispatchSkipped     = "dispatch skipped, aggregate not registered"
	logMsgHandlerInvoked      = "event handler invoked"
	logMsgHandlerFailed       = "event handler failed, dispatch aborted"
	logMsgEventsDispatched    = "aggregate events dispatched"
	logMsgHandlersCleared     = "event handlers cleared"
	logMsgAggregatesCleared   = "registered aggregates cleared"
	logAttrError              = "error"
	logAttrEventKind          = "event_kind"
	logAttrAggregateID        = "aggregate_id"
	logAttrEventCount         = "event_count"
	logAttrHandlerCount       = "handler_count"
	logAttrInvocationCount    = "invocation_count"
	logAttrAggregateCount     = "aggregate_count"
	logAttrDurationMS         = "duration_ms"
)

// Broker is a registry of event handlers and of aggregates with undispatched events.
//
// All methods are safe for concurrent use. The registries are never locked while a handler runs,
// so handlers may register handlers or aggregates and dispatch other aggregates.
// An aggregate is claimed for the whole of its dispatch, so its events reach the handlers at most once.
type Broker struct {
	mu         sync.RWMutex
	handlers   map[kernel.EventKind][]HandlerFunc
	aggregates map[kernel.ID]kernel.Aggregate
	inFlight   map[kernel.ID]struct{}

	logger           kernel.Logger
	contextualLogger kernel.ContextualLogger
	metricsCollector kernel.MetricsCollector
	tracingCollector kernel.TracingCollector
}

var _ kernel.Registrar = (*Broker)(nil)

// NewBroker creates a Broker with empty registries and optional configuration.
func NewBroker(options ...Option) (*Broker, error) {
	b := &Broker{
		handlers:   make(map[kernel.EventKind][]HandlerFunc),
		aggregates: make(map[kernel.ID]kernel.Aggregate),
		inFlight:   make(map[kernel.ID]struct{}),
	}

	for _, option := range options {
		if err := option(b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// RegisterEventHandler appends handler to the handlers for kind.
// Registering the same handler twice makes it run twice per event. A nil handler is ignored.
func (b *Broker) RegisterEventHandler(kind kernel.EventKind, handler HandlerFunc) {
	if handler == nil {
		return
	}

	b.mu.Lock()
	b.handlers[kind] = append(b.handlers[kind], handler)
	handlerCount := len(b.handlers[kind])
	b.mu.Unlock()

	b.logDebug(context.Background(), logMsgHandlerRegistered, logAttrEventKind, kind, logAttrHandlerCount, handlerCount)
}

// RegisterAggregate remembers aggregate until its events are dispatched.
//
// If an aggregate with the same ID is already registered, the call is a no-op and the
// already registered instance is kept.
func (b *Broker) RegisterAggregate(aggregate kernel.Aggregate) {
	if isNil(aggregate) {
		return
	}

	id := aggregate.ID()

	b.mu.Lock()
	if _, exists := b.aggregates[id]; exists {
		b.mu.Unlock()
		return
	}
	b.aggregates[id] = aggregate
	aggregateCount := len(b.aggregates)
	b.mu.Unlock()

	b.recordRegisteredAggregates(context.Background(), aggregateCount)
	b.logInfo(context.Background(), logMsgAggregateRegistered, logAttrAggregateID, id.String(), logAttrAggregateCount, aggregateCount)
}

// DispatchAggregateEvents invokes the handlers for every pending event of the aggregate registered
// under aggregate's ID, in recording order, then drops the dispatched events and unregisters it.
//
// The registered instance is dispatched, which is not necessarily the one passed in.
// If no aggregate is registered under the ID, or another goroutine is dispatching it, nothing happens.
// Events recorded while the handlers run are kept, and the aggregate stays registered for them.
//
// If a handler returns an error, the error is returned unmodified and dispatch stops right there:
// remaining handlers and events are skipped, and the aggregate stays registered with its events.
// A panicking handler is not recovered; the aggregate is released and stays registered.
func (b *Broker) DispatchAggregateEvents(ctx context.Context, aggregate kernel.Identifiable) error {
	if isNil(aggregate) {
		return nil
	}

	id := aggregate.ID()

	registered, claimed := b.claim(ctx, id)
	if !claimed {
		return nil
	}

	events := registered.PendingEvents()
	tracing, ctx := b.startDispatchTracing(ctx, id, len(events))
	metrics := b.startDispatchMetrics(ctx)
	start := time.Now()
	invocations := 0
	released := false

	defer func() {
		if released {
			return
		}

		// A handler panicked or called runtime.Goexit.
		recovered := recover()
		b.release(id)
		tracing.finishPanic(recovered, time.Since(start))

		if recovered != nil {
			panic(recovered)
		}
	}()

	for _, event := range events {
		for _, handler := range b.handlersFor(event.EventKind()) {
			if err := handler(ctx, event); err != nil {
				released = true
				b.release(id)

				duration := time.Since(start)
				b.logError(
					ctx,
					logMsgHandlerFailed,
					err,
					logAttrAggregateID, id.String(),
					logAttrEventKind, event.EventKind(),
				)
				metrics.recordError(event.EventKind(), duration)
				tracing.finishError(event.EventKind(), duration)

				return err
			}

			invocations++
			metrics.recordInvocation(event.EventKind())
			b.logDebug(ctx, logMsgHandlerInvoked, logAttrAggregateID, id.String(), logAttrEventKind, event.EventKind())
		}
	}

	released = true

	// Events recorded during dispatch either survive the drop or re-register after Unlock.
	b.mu.Lock()
	delete(b.inFlight, id)
	if registered.DropEvents(len(events)) == 0 {
		delete(b.aggregates, id)
	}
	aggregateCount := len(b.aggregates)
	b.mu.Unlock()

	duration := time.Since(start)
	metrics.recordSuccess(len(events), duration)
	b.recordRegisteredAggregates(ctx, aggregateCount)
	tracing.finishSuccess(len(events), invocations, duration)
	b.logInfo(
		ctx,
		logMsgEventsDispatched,
		logAttrAggregateID, id.String(),
		logAttrEventCount, len(events),
		logAttrInvocationCount, invocations,
		logAttrDurationMS, toMilliseconds(duration),
	)

	return nil
}

// UnregisterAggregate forgets the aggregate registered under id without invoking any handler.
// Its pending events are left untouched. It reports whether an aggregate was registered.
func (b *Broker) UnregisterAggregate(id kernel.ID) bool {
	b.mu.Lock()
	_, exists := b.aggregates[id]
	delete(b.aggregates, id)
	aggregateCount := len(b.aggregates)
	b.mu.Unlock()

	if !exists {
		return false
	}

	b.recordRegisteredAggregates(context.Background(), aggregateCount)
	b.logInfo(context.Background(), logMsgAggregateRemoved, logAttrAggregateID, id.String(), logAttrAggregateCount, aggregateCount)

	return true
}

// ClearEventHandlers removes all registered handlers.
func (b *Broker) ClearEventHandlers() {
	b.mu.Lock()
	b.handlers = make(map[kernel.EventKind][]HandlerFunc)
	b.mu.Unlock()

	b.logInfo(context.Background(), logMsgHandlersCleared)
}

// ClearRegisteredAggregates forgets all registered aggregates.
// Their pending events are left untouched.
func (b *Broker) ClearRegisteredAggregates() {
	b.mu.Lock()
	b.aggregates = make(map[kernel.ID]kernel.Aggregate)
	b.mu.Unlock()

	b.recordRegisteredAggregates(context.Background(), 0)
	b.logInfo(context.Background(), logMsgAggregatesCleared)
}

// IsRegistered reports whether an aggregate with the given ID awaits dispatch.
func (b *Broker) IsRegistered(id kernel.ID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, exists := b.aggregates[id]

	return exists
}

// RegisteredAggregateCount returns the number of aggregates awaiting dispatch.
func (b *Broker) RegisteredAggregateCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.aggregates)
}

// HandlerCount returns the number of handlers registered for kind.
func (b *Broker) HandlerCount(kind kernel.EventKind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.handlers[kind])
}

func (b *Broker) claim(ctx context.Context, id kernel.ID) (kernel.Aggregate, bool) {
	b.mu.Lock()
	registered, exists := b.aggregates[id]
	_, busy := b.inFlight[id]
	if exists && !busy {
		b.inFlight[id] = struct{}{}
	}
	b.mu.Unlock()

	switch {
	case !exists:
		b.logDebug(ctx, logMsgDispatchSkipped, logAttrAggregateID, id.String())
		return nil, false
	case busy:
		b.logDebug(ctx, logMsgDispatchInFlight, logAttrAggregateID, id.String())
		return nil, false
	}

	return registered, true
}

func (b *Broker) release(id kernel.ID) {
	b.mu.Lock()
	delete(b.inFlight, id)
	b.mu.Unlock()
}

func (b *Broker) handlersFor(kind kernel.EventKind) []HandlerFunc {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return slices.Clone(b.handlers[kind])
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
