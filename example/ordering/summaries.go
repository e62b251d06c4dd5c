package ordering

import (
	"context"
	"fmt"
	"sync"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

// OrderSummary is the read model of one order, projected from its events.
type OrderSummary struct {
	OrderID    kernel.ID
	CustomerID kernel.ID
	LineCount  int
	TotalCents int64
	Currency   string
	Shipped    bool
}

// OrderSummaries keeps an OrderSummary per order, updated by the order events.
// It is safe for concurrent use.
type OrderSummaries struct {
	mu        sync.RWMutex
	summaries map[kernel.ID]OrderSummary
}

// NewOrderSummaries creates an empty read model.
func NewOrderSummaries() *OrderSummaries {
	return &OrderSummaries{summaries: make(map[kernel.ID]OrderSummary)}
}

// Project applies event to the read model. Events of other kinds are ignored.
func (s *OrderSummaries) Project(_ context.Context, event kernel.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := s.summaries[event.AggregateID()]
	summary.OrderID = event.AggregateID()

	switch event.EventKind() {
	case OrderPlacedEventKind:
		data, ok := kernel.DataAs[OrderPlaced](event)
		if !ok {
			return fmt.Errorf("%s: unexpected payload %T", event.EventKind(), event.Data())
		}

		summary.CustomerID = kernel.ID(data.CustomerID)

	case OrderLineAddedEventKind:
		data, ok := kernel.DataAs[OrderLineAdded](event)
		if !ok {
			return fmt.Errorf("%s: unexpected payload %T", event.EventKind(), event.Data())
		}

		summary.LineCount++
		summary.TotalCents += data.UnitPriceCents * int64(data.Quantity)
		summary.Currency = data.Currency

	case OrderShippedEventKind:
		summary.Shipped = true

	default:
		return nil
	}

	s.summaries[event.AggregateID()] = summary

	return nil
}

// Summary returns the summary of orderID.
func (s *OrderSummaries) Summary(orderID kernel.ID) (OrderSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, found := s.summaries[orderID]

	return summary, found
}

// Count returns the number of known orders.
func (s *OrderSummaries) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.summaries)
}

// EventKinds returns the event kinds Project handles.
func EventKinds() []kernel.EventKind {
	return []kernel.EventKind{OrderPlacedEventKind, OrderLineAddedEventKind, OrderShippedEventKind}
}
