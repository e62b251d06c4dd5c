// Package kernel provides the building blocks for in-process domain models:
// identity-bearing objects, immutable values, domain events and aggregate roots
// that buffer events until the surrounding unit of work has committed.
//
// Key types:
//   - Identity / Entity: equality by a stable ID, never by attributes
//   - Value: immutable attribute bundle with deep structural equality
//   - EventRecord: immutable fact about one aggregate, tagged with an explicit EventKind
//   - AggregateRoot: Identity plus an ordered buffer of pending events
//
// The broker subpackage fans buffered events out to handlers after commit.
//
// Common usage pattern:
//
//	type Order struct {
//		kernel.AggregateRoot
//		shipped bool
//	}
//
//	func NewOrder(registrar kernel.Registrar) *Order {
//		return &Order{AggregateRoot: kernel.NewAggregateRoot(kernel.WithRegistrar(registrar))}
//	}
//
//	func (o *Order) Ship() {
//		o.shipped = true
//		o.RecordEvent(kernel.NewEventRecord(OrderShippedEventKind, o.ID(), nil))
//	}
//
//	// after the unit of work has committed
//	err := b.DispatchAggregateEvents(ctx, order)
package kernel
