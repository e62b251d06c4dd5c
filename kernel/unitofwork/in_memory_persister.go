package unitofwork

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

// InMemoryPersister is a goroutine-safe Persister that keeps the persisted events in memory.
// It serves tests and demos that run without a database.
type InMemoryPersister struct {
	mu        sync.Mutex
	persisted []kernel.Event
	calls     int
	failWith  error
}

var _ Persister = (*InMemoryPersister)(nil)

// NewInMemoryPersister creates an empty InMemoryPersister.
func NewInMemoryPersister() *InMemoryPersister {
	return &InMemoryPersister{}
}

// Persist appends the pending events of all aggregates, or nothing if it fails.
func (p *InMemoryPersister) Persist(ctx context.Context, aggregates []kernel.Aggregate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++

	if p.failWith != nil {
		return p.failWith
	}

	for _, aggregate := range aggregates {
		p.persisted = append(p.persisted, aggregate.PendingEvents()...)
	}

	return nil
}

// FailWith makes every following Persist call return err. A nil err restores normal operation.
func (p *InMemoryPersister) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failWith = err
}

// Persisted returns all persisted events in the order they were persisted.
func (p *InMemoryPersister) Persisted() []kernel.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]kernel.Event(nil), p.persisted...)
}

// PersistedFor returns the persisted events of one aggregate.
func (p *InMemoryPersister) PersistedFor(id kernel.ID) []kernel.Event {
	var events []kernel.Event

	for _, event := range p.Persisted() {
		if event.AggregateID() == id {
			events = append(events, event)
		}
	}

	return events
}

// CallCount returns how often Persist was called.
func (p *InMemoryPersister) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls
}
