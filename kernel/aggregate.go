package kernel

import (
	"sync"
)

// Aggregate is the capability a consistency boundary needs to take part in dispatch.
type Aggregate interface {
	Identifiable
	PendingEvents() []Event
	ClearEvents()
	DropEvents(count int) int
}

// Registrar is notified when an aggregate has recorded an event.
// broker.Broker is the usual implementation.
type Registrar interface {
	RegisterAggregate(aggregate Aggregate)
}

// AggregateRoot is an Identity that buffers the events recorded by the embedding aggregate
// until they have been dispatched.
//
// The typical lifecycle is:
//  1. Construct the aggregate with NewAggregateRoot
//  2. Run domain logic that calls RecordEvent once invariants are satisfied
//  3. Commit the unit of work
//  4. Dispatch via the broker, which drops the dispatched events
type AggregateRoot struct {
	Identity
	events    *eventBuffer
	registrar Registrar
}

type eventBuffer struct {
	mu      sync.Mutex
	pending []Event
}

// NewAggregateRoot creates an AggregateRoot with an empty event buffer.
func NewAggregateRoot(options ...Option) AggregateRoot {
	config := buildIdentityConfig(options)

	return AggregateRoot{
		Identity:  Identity{id: config.id},
		events:    &eventBuffer{},
		registrar: config.registrar,
	}
}

// RecordEvent appends event to the pending events.
//
// It must only be called from the embedding aggregate's own methods.
// If a Registrar was configured, the aggregate registers itself on every call.
func (a *AggregateRoot) RecordEvent(event Event) {
	if event == nil {
		return
	}

	if a.events == nil {
		a.events = &eventBuffer{}
	}

	a.events.mu.Lock()
	a.events.pending = append(a.events.pending, event)
	a.events.mu.Unlock()

	if a.registrar != nil {
		a.registrar.RegisterAggregate(a)
	}
}

// PendingEvents returns a snapshot of the buffered events in the order they were recorded.
func (a *AggregateRoot) PendingEvents() []Event {
	if a.events == nil {
		return Events{}
	}

	a.events.mu.Lock()
	defer a.events.mu.Unlock()

	out := make(Events, len(a.events.pending))
	copy(out, a.events.pending)

	return out
}

// HasPendingEvents reports whether any event is buffered.
func (a *AggregateRoot) HasPendingEvents() bool {
	if a.events == nil {
		return false
	}

	a.events.mu.Lock()
	defer a.events.mu.Unlock()

	return len(a.events.pending) > 0
}

// ClearEvents empties the buffer. Calling it on an empty buffer is a no-op.
func (a *AggregateRoot) ClearEvents() {
	if a.events == nil {
		return
	}

	a.events.mu.Lock()
	a.events.pending = nil
	a.events.mu.Unlock()
}

// DropEvents removes the count oldest buffered events and returns how many remain.
// Events recorded after a PendingEvents snapshot survive when count is that snapshot's length.
func (a *AggregateRoot) DropEvents(count int) int {
	if a.events == nil {
		return 0
	}

	a.events.mu.Lock()
	defer a.events.mu.Unlock()

	if count <= 0 {
		return len(a.events.pending)
	}

	if count >= len(a.events.pending) {
		a.events.pending = nil
		return 0
	}

	a.events.pending = append([]Event(nil), a.events.pending[count:]...)

	return len(a.events.pending)
}
