package unitofwork

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"time"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

// Persister stores the pending events of the given aggregates atomically.
type Persister interface {
	Persist(ctx context.Context, aggregates []kernel.Aggregate) error
}

// Dispatcher routes the pending events of registered aggregates to their handlers.
// *broker.Broker satisfies it.
type Dispatcher interface {
	RegisterAggregate(aggregate kernel.Aggregate)
	DispatchAggregateEvents(ctx context.Context, aggregate kernel.Identifiable) error
	UnregisterAggregate(id kernel.ID) bool
}

var (
	// ErrNilPersister is returned by New when no Persister is supplied.
	ErrNilPersister = errors.New("persister is required")

	// ErrNilDispatcher is returned by New when no Dispatcher is supplied.
	ErrNilDispatcher = errors.New("dispatcher is required")

	// ErrPersistingFailed wraps the persister's error; nothing was dispatched.
	ErrPersistingFailed = errors.New("persisting pending events failed")

	// ErrDispatchingFailed wraps every dispatch error after a successful persist.
	ErrDispatchingFailed = errors.New("dispatching persisted events failed")
)

const (
	logMsgCommitted       = "unit of work committed"
	logMsgPersistFailed   = "unit of work persist failed"
	logMsgDispatchFailed  = "unit of work dispatch failed"
	logMsgDiscarded       = "unit of work discarded"
	logMsgPersistRetry    = "unit of work persist retry"
	logAttrAttempt        = "attempt"
	logAttrDelayMS        = "delay_ms"
	logAttrError          = "error"
	logAttrAggregateID    = "aggregate_id"
	logAttrAggregateCount = "aggregate_count"
	logAttrUnregistered   = "unregistered_count"
	logAttrEventCount     = "event_count"
)

// UnitOfWork tracks the aggregates touched by one business transaction.
type UnitOfWork struct {
	persister  Persister
	dispatcher Dispatcher

	mu         sync.Mutex
	tracked    []kernel.Aggregate
	trackedIDs map[kernel.ID]struct{}

	retry *retryConfig

	logger           kernel.Logger
	contextualLogger kernel.ContextualLogger
}

// Option defines a functional option for configuring a UnitOfWork.
type Option func(*UnitOfWork) error

// WithLogger sets the logger for commit and discard outcomes.
func WithLogger(logger kernel.Logger) Option {
	return func(u *UnitOfWork) error {
		u.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for commit and discard outcomes.
func WithContextualLogger(logger kernel.ContextualLogger) Option {
	return func(u *UnitOfWork) error {
		u.contextualLogger = logger
		return nil
	}
}

// New creates a UnitOfWork that persists with persister and dispatches with dispatcher.
func New(persister Persister, dispatcher Dispatcher, options ...Option) (*UnitOfWork, error) {
	if isNil(persister) {
		return nil, ErrNilPersister
	}

	if isNil(dispatcher) {
		return nil, ErrNilDispatcher
	}

	u := &UnitOfWork{
		persister:  persister,
		dispatcher: dispatcher,
		trackedIDs: make(map[kernel.ID]struct{}),
	}

	for _, option := range options {
		if err := option(u); err != nil {
			return nil, err
		}
	}

	return u, nil
}

// Track remembers the aggregates, once per ID and in the given order, and registers them with the dispatcher.
func (u *UnitOfWork) Track(aggregates ...kernel.Aggregate) {
	for _, aggregate := range aggregates {
		if isNil(aggregate) {
			continue
		}

		u.mu.Lock()
		_, known := u.trackedIDs[aggregate.ID()]
		if !known {
			u.trackedIDs[aggregate.ID()] = struct{}{}
			u.tracked = append(u.tracked, aggregate)
		}
		u.mu.Unlock()

		if !known {
			u.dispatcher.RegisterAggregate(aggregate)
		}
	}
}

// TrackedCount returns the number of tracked aggregates.
func (u *UnitOfWork) TrackedCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	return len(u.tracked)
}

// Commit persists the pending events of all tracked aggregates in one call, then dispatches them.
//
// If persisting fails, nothing is dispatched and the aggregates stay tracked with their events.
// After a successful persist the tracking is reset and every aggregate is dispatched in tracking order.
// A failing aggregate does not stop the others; it stays registered at the dispatcher with its events,
// and all dispatch errors are returned joined.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	tracked := append([]kernel.Aggregate(nil), u.tracked...)
	u.mu.Unlock()

	var withEvents []kernel.Aggregate
	eventCount := 0

	for _, aggregate := range tracked {
		if pending := len(aggregate.PendingEvents()); pending > 0 {
			withEvents = append(withEvents, aggregate)
			eventCount += pending
		}
	}

	if len(withEvents) > 0 {
		if err := u.persist(ctx, withEvents); err != nil {
			u.logError(ctx, logMsgPersistFailed, err, logAttrAggregateCount, len(withEvents))
			return errors.Join(ErrPersistingFailed, err)
		}
	}

	u.reset()

	var dispatchErrs []error

	for _, aggregate := range tracked {
		if err := u.dispatcher.DispatchAggregateEvents(ctx, aggregate); err != nil {
			u.logError(ctx, logMsgDispatchFailed, err, logAttrAggregateID, aggregate.ID().String())
			dispatchErrs = append(dispatchErrs, err)
		}
	}

	if len(dispatchErrs) > 0 {
		return errors.Join(append([]error{ErrDispatchingFailed}, dispatchErrs...)...)
	}

	u.logInfo(ctx, logMsgCommitted, logAttrAggregateCount, len(tracked), logAttrEventCount, eventCount)

	return nil
}

// Discard drops the pending events of all tracked aggregates, forgets them,
// and unregisters them at the dispatcher. No handler is invoked.
func (u *UnitOfWork) Discard() {
	u.mu.Lock()
	tracked := u.tracked
	u.mu.Unlock()

	u.reset()

	unregistered := 0
	for _, aggregate := range tracked {
		aggregate.ClearEvents()
		if u.dispatcher.UnregisterAggregate(aggregate.ID()) {
			unregistered++
		}
	}

	u.logInfo(
		context.Background(),
		logMsgDiscarded,
		logAttrAggregateCount, len(tracked),
		logAttrUnregistered, unregistered,
	)
}

func (u *UnitOfWork) persist(ctx context.Context, aggregates []kernel.Aggregate) error {
	persist := func(ctx context.Context) error {
		return u.persister.Persist(ctx, aggregates)
	}

	if u.retry == nil {
		return persist(ctx)
	}

	return retryWithExponentialBackoff(ctx, u.retry, persist, func(attempt int, delay time.Duration, lastErr error) {
		u.logWarn(
			ctx,
			logMsgPersistRetry,
			logAttrError, lastErr.Error(),
			logAttrAttempt, attempt+1,
			logAttrDelayMS, float64(delay.Microseconds())/1000,
		)
	})
}

func (u *UnitOfWork) reset() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.tracked = nil
	u.trackedIDs = make(map[kernel.ID]struct{})
}

func (u *UnitOfWork) logInfo(ctx context.Context, msg string, args ...any) {
	if u.logger != nil {
		u.logger.Info(msg, args...)
	}

	if u.contextualLogger != nil {
		u.contextualLogger.InfoContext(ctx, msg, args...)
	}
}

func (u *UnitOfWork) logWarn(ctx context.Context, msg string, args ...any) {
	if u.logger != nil {
		u.logger.Warn(msg, args...)
	}

	if u.contextualLogger != nil {
		u.contextualLogger.WarnContext(ctx, msg, args...)
	}
}

func (u *UnitOfWork) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if u.logger != nil {
		u.logger.Error(msg, allArgs...)
	}

	if u.contextualLogger != nil {
		u.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
