package broker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
	"github.com/AntonStoeckl/domain-kernel-go/kernel/broker"
)

const (
	kindOpened kernel.EventKind = "AccountOpened"
	kindCredit kernel.EventKind = "AccountCredited"
)

type account struct {
	kernel.AggregateRoot
	balance int
}

func openAccount(options ...kernel.Option) *account {
	a := &account{AggregateRoot: kernel.NewAggregateRoot(options...)}
	a.RecordEvent(kernel.NewEventRecord(kindOpened, a.ID(), nil))

	return a
}

func (a *account) Credit(amount int) {
	a.balance += amount
	a.RecordEvent(kernel.NewEventRecord(kindCredit, a.ID(), amount))
}

type invocationLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *invocationLog) handler(name string) broker.HandlerFunc {
	return func(_ context.Context, event kernel.Event) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.entries = append(l.entries, name+":"+event.EventKind())

		return nil
	}
}

func (l *invocationLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.entries...)
}

func newBroker(t *testing.T, options ...broker.Option) *broker.Broker {
	t.Helper()

	b, err := broker.NewBroker(options...)
	require.NoError(t, err)

	return b
}

func Test_NewBroker_WithEventHandler(t *testing.T) {
	calls := &invocationLog{}

	b := newBroker(t, broker.WithEventHandler(kindOpened, calls.handler("h1")))

	assert.Equal(t, 1, b.HandlerCount(kindOpened))
}

func Test_NewBroker_WithNilEventHandler_Fails(t *testing.T) {
	b, err := broker.NewBroker(broker.WithEventHandler(kindOpened, nil))

	assert.ErrorIs(t, err, broker.ErrNilHandler)
	assert.Nil(t, b)
}

func Test_Broker_RegisterAggregateTwice_DispatchesEventsOnce(t *testing.T) {
	// arrange
	ctx := context.Background()
	b := newBroker(t)
	calls := &invocationLog{}
	b.RegisterEventHandler(kindOpened, calls.handler("h"))
	acc := openAccount()

	// act
	b.RegisterAggregate(&acc.AggregateRoot)
	b.RegisterAggregate(&acc.AggregateRoot)
	err := b.DispatchAggregateEvents(ctx, acc)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"h:" + kindOpened}, calls.all())
	assert.Empty(t, acc.PendingEvents())
	assert.False(t, b.IsRegistered(acc.ID()))
	assert.Zero(t, b.RegisteredAggregateCount())
}

func Test_Broker_SecondDispatch_IsANoOp(t *testing.T) {
	ctx := context.Background()
	b := newBroker(t)
	calls := &invocationLog{}
	b.RegisterEventHandler(kindOpened, calls.handler("h"))
	acc := openAccount(kernel.WithRegistrar(b))
	acc.RecordEvent(kernel.NewEventRecord(kindOpened, acc.ID(), nil))

	require.NoError(t, b.DispatchAggregateEvents(ctx, acc))
	require.NoError(t, b.DispatchAggregateEvents(ctx, acc))

	assert.Len(t, calls.all(), 2)
}

func Test_Broker_Dispatch_InvokesHandlersInRegistrationOrderPerEvent(t *testing.T) {
	// arrange
	ctx := context.Background()
	b := newBroker(t)
	calls := &invocationLog{}
	b.RegisterEventHandler(kindOpened, calls.handler("h1"))
	b.RegisterEventHandler(kindCredit, calls.handler("h1"))
	b.RegisterEventHandler(kindOpened, calls.handler("h2"))
	b.RegisterEventHandler(kindCredit, calls.handler("h2"))
	b.RegisterEventHandler(kindCredit, calls.handler("h3"))
	acc := openAccount(kernel.WithRegistrar(b))
	acc.Credit(10)

	// act
	err := b.DispatchAggregateEvents(ctx, acc)

	// assert
	require.NoError(t, err)
	assert.Equal(
		t,
		[]string{
			"h1:" + kindOpened,
			"h2:" + kindOpened,
			"h1:" + kindCredit,
			"h2:" + kindCredit,
			"h3:" + kindCredit,
		},
		calls.all(),
	)
}

func Test_Broker_SameHandlerRegisteredTwice_RunsTwice(t *testing.T) {
	ctx := context.Background()
	b := newBroker(t)
	calls := &invocationLog{}
	h := calls.handler("h")
	b.RegisterEventHandler(kindOpened, h)
	b.RegisterEventHandler(kindOpened, h)
	acc := openAccount(kernel.WithRegistrar(b))

	require.NoError(t, b.DispatchAggregateEvents(ctx, acc))

	assert.Len(t, calls.all(), 2)
}

func Test_Broker_RegisterNilHandler_IsIgnored(t *testing.T) {
	b := newBroker(t)

	b.RegisterEventHandler(kindOpened, nil)

	assert.Zero(t, b.HandlerCount(kindOpened))
}

func Test_Broker_Dispatch_OnlyTouchesTheGivenAggregate(t *testing.T) {
	// arrange
	ctx := context.Background()
	b := newBroker(t)
	var seen []kernel.ID
	b.RegisterEventHandler(kindCredit, func(_ context.Context, event kernel.Event) error {
		seen = append(seen, event.AggregateID())
		return nil
	})

	accA := openAccount(kernel.WithRegistrar(b))
	accA.Credit(1)
	accB := openAccount(kernel.WithRegistrar(b))
	accB.Credit(2)

	// act
	err := b.DispatchAggregateEvents(ctx, accA)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []kernel.ID{accA.ID()}, seen)
	assert.Empty(t, accA.PendingEvents())
	assert.Len(t, accB.PendingEvents(), 2)
	assert.True(t, b.IsRegistered(accB.ID()))
	assert.Equal(t, 1, b.RegisteredAggregateCount())
}

func Test_Broker_Dispatch_WithoutHandlers_ClearsAndUnregisters(t *testing.T) {
	ctx := context.Background()
	b := newBroker(t)
	calls := &invocationLog{}
	b.RegisterEventHandler(kindOpened, calls.handler("h"))
	acc := openAccount(kernel.WithRegistrar(b))

	b.ClearEventHandlers()
	err := b.DispatchAggregateEvents(ctx, acc)

	require.NoError(t, err)
	assert.Empty(t, calls.all())
	assert.Empty(t, acc.PendingEvents())
	assert.False(t, b.IsRegistered(acc.ID()))
	assert.Zero(t, b.HandlerCount(kindOpened))
}

func Test_Broker_Dispatch_UnregisteredAggregate_IsANoOp(t *testing.T) {
	ctx := context.Background()
	b := newBroker(t)
	calls := &invocationLog{}
	b.RegisterEventHandler(kindOpened, calls.handler("h"))
	acc := openAccount()

	err := b.DispatchAggregateEvents(ctx, acc)

	require.NoError(t, err)
	assert.Empty(t, calls.all())
	assert.Len(t, acc.PendingEvents(), 1)
}

func Test_Broker_Dispatch_NilAggregate_IsANoOp(t *testing.T) {
	b := newBroker(t)
	var acc *account

	assert.NoError(t, b.DispatchAggregateEvents(context.Background(), nil))
	assert.NoError(t, b.DispatchAggregateEvents(context.Background(), acc))
	b.RegisterAggregate(nil)
	assert.Zero(t, b.RegisteredAggregateCount())
}

func Test_Broker_Dispatch_UsesTheRegisteredInstance(t *testing.T) {
	// arrange
	ctx := context.Background()
	b := newBroker(t)
	var credited []any
	b.RegisterEventHandler(kindCredit, func(_ context.Context, event kernel.Event) error {
		credited = append(credited, event.Data())
		return nil
	})
	registered := openAccount(kernel.WithRegistrar(b))
	registered.Credit(5)
	sameID := kernel.NewIdentity(kernel.WithID(registered.ID()))

	// act
	err := b.DispatchAggregateEvents(ctx, sameID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []any{5}, credited)
	assert.Empty(t, registered.PendingEvents())
}

func Test_Broker_Dispatch_FirstRegisteredInstanceWins(t *testing.T) {
	ctx := context.Background()
	b := newBroker(t)
	var credited []any
	b.RegisterEventHandler(kindCredit, func(_ context.Context, event kernel.Event) error {
		credited = append(credited, event.Data())
		return nil
	})
	first := openAccount(kernel.WithRegistrar(b))
	first.Credit(1)
	second := openAccount(kernel.WithID(first.ID()), kernel.WithRegistrar(b))
	second.Credit(2)

	require.NoError(t, b.DispatchAggregateEvents(ctx, second))

	assert.Equal(t, []any{1}, credited)
	assert.Len(t, second.PendingEvents(), 2)
}

func Test_Broker_Dispatch_FailingHandler_AbortsAndKeepsAggregateRegistered(t *testing.T) {
	// arrange
	ctx := context.Background()
	b := newBroker(t)
	errBoom := errors.New("boom")
	calls := &invocationLog{}
	b.RegisterEventHandler(kindOpened, calls.handler("before"))
	b.RegisterEventHandler(kindOpened, func(context.Context, kernel.Event) error { return errBoom })
	b.RegisterEventHandler(kindOpened, calls.handler("after"))
	b.RegisterEventHandler(kindCredit, calls.handler("credit"))
	acc := openAccount(kernel.WithRegistrar(b))
	acc.Credit(3)

	// act
	err := b.DispatchAggregateEvents(ctx, acc)

	// assert
	assert.Same(t, errBoom, err)
	assert.Equal(t, []string{"before:" + kindOpened}, calls.all())
	assert.True(t, b.IsRegistered(acc.ID()))
	assert.Len(t, acc.PendingEvents(), 2)
}

func Test_Broker_Redispatch_AfterFailure_InvokesFromTheStart(t *testing.T) {
	// arrange
	ctx := context.Background()
	b := newBroker(t)
	errBoom := errors.New("boom")
	b.RegisterEventHandler(kindOpened, func(context.Context, kernel.Event) error { return errBoom })
	acc := openAccount(kernel.WithRegistrar(b))
	require.ErrorIs(t, b.DispatchAggregateEvents(ctx, acc), errBoom)

	calls := &invocationLog{}
	b.ClearEventHandlers()
	b.RegisterEventHandler(kindOpened, calls.handler("h"))

	// act
	err := b.DispatchAggregateEvents(ctx, acc)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"h:" + kindOpened}, calls.all())
	assert.False(t, b.IsRegistered(acc.ID()))
}

func Test_Broker_PanickingHandler_IsNotRecovered(t *testing.T) {
	b := newBroker(t)
	b.RegisterEventHandler(kindOpened, func(context.Context, kernel.Event) error { panic("handler bug") })
	acc := openAccount(kernel.WithRegistrar(b))

	assert.PanicsWithValue(t, "handler bug", func() {
		_ = b.DispatchAggregateEvents(context.Background(), acc)
	})
	assert.True(t, b.IsRegistered(acc.ID()))

	calls := &invocationLog{}
	b.ClearEventHandlers()
	b.RegisterEventHandler(kindOpened, calls.handler("h"))

	require.NoError(t, b.DispatchAggregateEvents(context.Background(), acc))
	assert.Equal(t, []string{"h:" + kindOpened}, calls.all(), "the aggregate is released after the panic")
}

func Test_Broker_ClearRegisteredAggregates_LeavesBuffersIntact(t *testing.T) {
	ctx := context.Background()
	b := newBroker(t)
	calls := &invocationLog{}
	b.RegisterEventHandler(kindOpened, calls.handler("h"))
	acc := openAccount(kernel.WithRegistrar(b))

	b.ClearRegisteredAggregates()
	err := b.DispatchAggregateEvents(ctx, acc)

	require.NoError(t, err)
	assert.Empty(t, calls.all())
	assert.Len(t, acc.PendingEvents(), 1)
	assert.Zero(t, b.RegisteredAggregateCount())
}

func Test_Broker_Handler_SeesHandlersRegisteredDuringDispatch(t *testing.T) {
	ctx := context.Background()
	b := newBroker(t)
	calls := &invocationLog{}
	b.RegisterEventHandler(kindOpened, func(context.Context, kernel.Event) error {
		b.RegisterEventHandler(kindCredit, calls.handler("late"))
		return nil
	})
	acc := openAccount(kernel.WithRegistrar(b))
	acc.Credit(1)

	require.NoError(t, b.DispatchAggregateEvents(ctx, acc))

	assert.Equal(t, []string{"late:" + kindCredit}, calls.all())
}

func Test_Broker_Handler_MayDispatchAnotherAggregate(t *testing.T) {
	// arrange
	ctx := context.Background()
	b := newBroker(t)
	calls := &invocationLog{}
	other := openAccount(kernel.WithRegistrar(b))
	first := openAccount(kernel.WithRegistrar(b))

	b.RegisterEventHandler(kindOpened, calls.handler("h"))
	b.RegisterEventHandler(kindCredit, func(ctx context.Context, _ kernel.Event) error {
		return b.DispatchAggregateEvents(ctx, other)
	})
	first.Credit(1)

	// act
	err := b.DispatchAggregateEvents(ctx, first)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"h:" + kindOpened, "h:" + kindOpened}, calls.all())
	assert.Zero(t, b.RegisteredAggregateCount())
}

func Test_Broker_Async_DoesNotWaitForTheHandler(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	b := newBroker(t)
	release := make(chan struct{})
	done := make(chan error, 1)
	b.RegisterEventHandler(kindOpened, broker.Async(func(handlerCtx context.Context, _ kernel.Event) error {
		<-release
		done <- handlerCtx.Err()
		return nil
	}, nil))
	acc := openAccount(kernel.WithRegistrar(b))

	// act
	err := b.DispatchAggregateEvents(ctx, acc)
	cancel()
	close(release)

	// assert
	require.NoError(t, err)
	assert.False(t, b.IsRegistered(acc.ID()))
	select {
	case handlerErr := <-done:
		assert.NoError(t, handlerErr, "the async handler's context must not be canceled with the dispatch context")
	case <-time.After(time.Second):
		t.Fatal("async handler did not run")
	}
}

func Test_Broker_Async_FailureIsReportedOnlyToOnError(t *testing.T) {
	// arrange
	ctx := context.Background()
	b := newBroker(t)
	errAsync := errors.New("async failure")
	reported := make(chan error, 1)
	b.RegisterEventHandler(kindOpened, broker.Async(
		func(context.Context, kernel.Event) error { return errAsync },
		func(_ kernel.Event, err error) { reported <- err },
	))
	acc := openAccount(kernel.WithRegistrar(b))

	// act
	err := b.DispatchAggregateEvents(ctx, acc)

	// assert
	require.NoError(t, err)
	select {
	case got := <-reported:
		assert.ErrorIs(t, got, errAsync)
	case <-time.After(time.Second):
		t.Fatal("async failure was not reported")
	}
}

func Test_Broker_ConcurrentRecordingAndDispatch(t *testing.T) {
	ctx := context.Background()
	b := newBroker(t)
	var mu sync.Mutex
	credited := 0
	b.RegisterEventHandler(kindCredit, func(context.Context, kernel.Event) error {
		mu.Lock()
		defer mu.Unlock()
		credited++

		return nil
	})

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc := openAccount(kernel.WithRegistrar(b))
			acc.Credit(1)
			acc.Credit(1)
			assert.NoError(t, b.DispatchAggregateEvents(ctx, acc))
		}()
	}
	wg.Wait()

	assert.Equal(t, 40, credited)
	assert.Zero(t, b.RegisteredAggregateCount())
}

func Test_Broker_ConcurrentDispatchOfTheSameAggregate_InvokesHandlersOnce(t *testing.T) {
	// arrange
	ctx := context.Background()
	b := newBroker(t)
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	invocations := 0
	b.RegisterEventHandler(kindOpened, func(context.Context, kernel.Event) error {
		mu.Lock()
		invocations++
		mu.Unlock()
		close(started)
		<-release

		return nil
	})
	acc := openAccount(kernel.WithRegistrar(b))

	done := make(chan error, 1)
	go func() { done <- b.DispatchAggregateEvents(ctx, acc) }()
	<-started

	// act
	concurrentErr := b.DispatchAggregateEvents(ctx, acc)
	close(release)
	firstErr := <-done

	// assert
	require.NoError(t, concurrentErr)
	require.NoError(t, firstErr)
	mu.Lock()
	assert.Equal(t, 1, invocations)
	mu.Unlock()
	assert.Empty(t, acc.PendingEvents())
	assert.False(t, b.IsRegistered(acc.ID()))
}

func Test_Broker_EventsRecordedDuringDispatch_StayRegistered(t *testing.T) {
	// arrange
	ctx := context.Background()
	b := newBroker(t)
	started := make(chan struct{})
	release := make(chan struct{})
	calls := &invocationLog{}
	b.RegisterEventHandler(kindOpened, func(context.Context, kernel.Event) error {
		close(started)
		<-release

		return nil
	})
	b.RegisterEventHandler(kindCredit, calls.handler("credit"))
	acc := openAccount(kernel.WithRegistrar(b))

	done := make(chan error, 1)
	go func() { done <- b.DispatchAggregateEvents(ctx, acc) }()
	<-started

	// act
	acc.Credit(5)
	close(release)
	err := <-done

	// assert
	require.NoError(t, err)
	events := acc.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, kindCredit, events[0].EventKind())
	assert.True(t, b.IsRegistered(acc.ID()))

	require.NoError(t, b.DispatchAggregateEvents(ctx, acc))
	assert.Equal(t, []string{"credit:" + kindCredit}, calls.all())
	assert.False(t, b.IsRegistered(acc.ID()))
}

func Test_Broker_UnregisterAggregate_InvokesNoHandler(t *testing.T) {
	ctx := context.Background()
	b := newBroker(t)
	calls := &invocationLog{}
	b.RegisterEventHandler(kindOpened, calls.handler("h"))
	acc := openAccount(kernel.WithRegistrar(b))

	assert.True(t, b.UnregisterAggregate(acc.ID()))
	assert.False(t, b.UnregisterAggregate(acc.ID()))
	require.NoError(t, b.DispatchAggregateEvents(ctx, acc))

	assert.Empty(t, calls.all())
	assert.False(t, b.IsRegistered(acc.ID()))
	assert.Len(t, acc.PendingEvents(), 1)
}
