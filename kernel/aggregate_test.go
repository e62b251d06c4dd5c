package kernel_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

type registrarSpy struct {
	mu         sync.Mutex
	registered []kernel.Aggregate
}

func (r *registrarSpy) RegisterAggregate(aggregate kernel.Aggregate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered = append(r.registered, aggregate)
}

type counterAggregate struct {
	kernel.AggregateRoot
	value int
}

func newCounter(options ...kernel.Option) *counterAggregate {
	return &counterAggregate{AggregateRoot: kernel.NewAggregateRoot(options...)}
}

func (c *counterAggregate) Increment() {
	c.value++
	c.RecordEvent(kernel.NewEventRecord("Incremented", c.ID(), c.value))
}

func (c *counterAggregate) Reset() {
	c.value = 0
	c.RecordEvent(kernel.NewEventRecord("Reset", c.ID(), nil))
}

func Test_AggregateRoot_StartsWithoutPendingEvents(t *testing.T) {
	counter := newCounter()

	assert.Empty(t, counter.PendingEvents())
	assert.False(t, counter.HasPendingEvents())
}

func Test_AggregateRoot_RecordEvent_KeepsInsertionOrder(t *testing.T) {
	counter := newCounter()

	counter.Increment()
	counter.Reset()
	counter.Increment()

	events := counter.PendingEvents()
	require.Len(t, events, 3)
	assert.Equal(t, "Incremented", events[0].EventKind())
	assert.Equal(t, "Reset", events[1].EventKind())
	assert.Equal(t, "Incremented", events[2].EventKind())
	assert.Equal(t, 1, events[2].Data())
	assert.True(t, counter.HasPendingEvents())
}

func Test_AggregateRoot_PendingEvents_IsASnapshot(t *testing.T) {
	counter := newCounter()
	counter.Increment()

	snapshot := counter.PendingEvents()
	counter.Increment()

	assert.Len(t, snapshot, 1)
	assert.Len(t, counter.PendingEvents(), 2)
}

func Test_AggregateRoot_ClearEvents_IsIdempotent(t *testing.T) {
	counter := newCounter()
	counter.Increment()

	counter.ClearEvents()
	counter.ClearEvents()

	assert.Empty(t, counter.PendingEvents())
}

func Test_AggregateRoot_DropEvents_KeepsEventsRecordedAfterSnapshot(t *testing.T) {
	counter := newCounter()
	counter.Increment()
	counter.Increment()

	snapshot := counter.PendingEvents()
	counter.Reset()

	remaining := counter.DropEvents(len(snapshot))

	require.Equal(t, 1, remaining)
	events := counter.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "Reset", events[0].EventKind())
}

func Test_AggregateRoot_DropEvents_Bounds(t *testing.T) {
	counter := newCounter()
	counter.Increment()
	counter.Increment()

	assert.Equal(t, 2, counter.DropEvents(0))
	assert.Equal(t, 0, counter.DropEvents(5))
	assert.Empty(t, counter.PendingEvents())

	var root kernel.AggregateRoot
	assert.Equal(t, 0, root.DropEvents(1))
}

func Test_AggregateRoot_RegistersItselfOnEveryRecordedEvent(t *testing.T) {
	registrar := &registrarSpy{}
	counter := newCounter(kernel.WithRegistrar(registrar), kernel.WithID("counter-1"))

	counter.Increment()
	counter.Increment()

	require.Len(t, registrar.registered, 2)
	assert.Equal(t, kernel.ID("counter-1"), registrar.registered[0].ID())
	assert.Len(t, registrar.registered[1].PendingEvents(), 2, "the registered aggregate shares the buffer")
}

func Test_AggregateRoot_WithoutRegistrar_DoesNotRegister(t *testing.T) {
	registrar := &registrarSpy{}
	counter := newCounter()

	counter.Increment()

	assert.Empty(t, registrar.registered)
}

func Test_AggregateRoot_ZeroValue_IsUsable(t *testing.T) {
	var root kernel.AggregateRoot

	assert.Empty(t, root.PendingEvents())
	root.ClearEvents()
	root.RecordEvent(kernel.NewEventRecord("Something", root.ID(), nil))

	assert.Len(t, root.PendingEvents(), 1)
}

func Test_AggregateRoot_BufferIsUnbounded(t *testing.T) {
	counter := newCounter()

	for range 10_000 {
		counter.Increment()
	}

	assert.Len(t, counter.PendingEvents(), 10_000)
}

func Test_AggregateRoot_ConcurrentRecording(t *testing.T) {
	counter := newCounter()
	wg := sync.WaitGroup{}

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counter.RecordEvent(kernel.NewEventRecord("Concurrent", counter.ID(), nil))
		}()
	}
	wg.Wait()

	assert.Len(t, counter.PendingEvents(), 50)
}
