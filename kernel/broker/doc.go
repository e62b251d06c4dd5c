// Package broker routes the events buffered by aggregates to handlers registered per event kind.
//
// A Broker keeps two registries: event kind → ordered handlers, and aggregate ID → aggregate
// with undispatched events. DispatchAggregateEvents invokes every handler for every buffered
// event of the registered aggregate, then drops the dispatched events and unregisters it.
//
// Key features:
//   - Explicit instances owned by the composition root, no process-wide state
//   - Idempotent aggregate registration keyed by ID (the first instance wins)
//   - At most one dispatch per aggregate at a time
//   - Handlers run in registration order, events in recording order
//   - A failing handler aborts dispatch and leaves the aggregate registered with its events
//   - Async wraps fire-and-forget handlers the broker never waits for
//   - Optional logging, metrics, and tracing via functional options
//
// Usage examples:
//
//	b, _ := broker.NewBroker(broker.WithLogger(slog.Default()))
//
//	b.RegisterEventHandler(ordering.OrderShippedEventKind, func(ctx context.Context, e kernel.Event) error {
//		return notifier.OrderShipped(ctx, e.AggregateID())
//	})
//
//	order := ordering.PlaceOrder(customerID, kernel.WithRegistrar(b))
//	// ... persist and commit ...
//	err := b.DispatchAggregateEvents(ctx, order)
package broker
