package ordering

import (
	"slices"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

// Order is the aggregate root of the ordering domain. Its IDs are nanoids.
//
// Business Rules:
//
//	Lines can be added until the order is shipped (ErrOrderAlreadyShipped)
//	All lines share one currency (ErrCurrencyMismatch)
//	An order needs at least one line to be shipped (ErrEmptyOrder)
//	Shipping twice fails (ErrOrderAlreadyShipped)
type Order struct {
	kernel.AggregateRoot

	customerID kernel.ID
	lines      []OrderLine
	shipped    bool
}

// PlaceOrder creates an Order for customerID and records OrderPlaced.
// Pass kernel.WithRegistrar to have the order register itself with a broker.
func PlaceOrder(customerID kernel.ID, options ...kernel.Option) *Order {
	options = append([]kernel.Option{kernel.WithIDGenerator(kernel.NanoID)}, options...)

	order := &Order{
		AggregateRoot: kernel.NewAggregateRoot(options...),
		customerID:    customerID,
	}

	order.RecordEvent(buildOrderPlaced(order.ID(), customerID))

	return order
}

// AddLine appends line and records OrderLineAdded.
func (o *Order) AddLine(line OrderLine) error {
	if o.shipped {
		return ErrOrderAlreadyShipped
	}

	if len(o.lines) > 0 && o.lines[0].UnitPrice().Currency() != line.UnitPrice().Currency() {
		return ErrCurrencyMismatch
	}

	o.lines = append(o.lines, line)
	o.RecordEvent(buildOrderLineAdded(o.ID(), line))

	return nil
}

// Ship marks the order shipped and records OrderShipped with the order total.
func (o *Order) Ship() error {
	if o.shipped {
		return ErrOrderAlreadyShipped
	}

	if len(o.lines) == 0 {
		return ErrEmptyOrder
	}

	total, err := o.Total()
	if err != nil {
		return err
	}

	o.shipped = true
	o.RecordEvent(buildOrderShipped(o.ID(), len(o.lines), total))

	return nil
}

// Total returns the sum of all line totals. An empty order totals zero without a currency.
func (o *Order) Total() (Money, error) {
	if len(o.lines) == 0 {
		return NewMoney(0, ""), nil
	}

	total := NewMoney(0, o.lines[0].UnitPrice().Currency())
	for _, line := range o.lines {
		var err error
		if total, err = total.Add(line.Total()); err != nil {
			return Money{}, err
		}
	}

	return total, nil
}

// CustomerID returns the ID of the customer who placed the order.
func (o *Order) CustomerID() kernel.ID {
	return o.customerID
}

// Lines returns the order lines in the order they were added.
func (o *Order) Lines() []OrderLine {
	return slices.Clone(o.lines)
}

// IsShipped reports whether Ship has succeeded.
func (o *Order) IsShipped() bool {
	return o.shipped
}
