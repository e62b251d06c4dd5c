package ordering

import (
	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

const (
	OrderPlacedEventKind    = "OrderPlaced"
	OrderLineAddedEventKind = "OrderLineAdded"
	OrderShippedEventKind   = "OrderShipped"
)

// OrderPlaced is the payload of an OrderPlacedEventKind event.
type OrderPlaced struct {
	CustomerID string `json:"customerId"`
}

// OrderLineAdded is the payload of an OrderLineAddedEventKind event.
type OrderLineAdded struct {
	SKU            string `json:"sku"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Currency       string `json:"currency"`
}

// OrderShipped is the payload of an OrderShippedEventKind event.
type OrderShipped struct {
	LineCount  int    `json:"lineCount"`
	TotalCents int64  `json:"totalCents"`
	Currency   string `json:"currency"`
}

func buildOrderPlaced(orderID, customerID kernel.ID) kernel.EventRecord {
	return kernel.NewEventRecord(OrderPlacedEventKind, orderID, OrderPlaced{CustomerID: customerID.String()})
}

func buildOrderLineAdded(orderID kernel.ID, line OrderLine) kernel.EventRecord {
	return kernel.NewEventRecord(OrderLineAddedEventKind, orderID, OrderLineAdded{
		SKU:            line.SKU(),
		Quantity:       line.Quantity(),
		UnitPriceCents: line.UnitPrice().Cents(),
		Currency:       line.UnitPrice().Currency(),
	})
}

func buildOrderShipped(orderID kernel.ID, lineCount int, total Money) kernel.EventRecord {
	return kernel.NewEventRecord(OrderShippedEventKind, orderID, OrderShipped{
		LineCount:  lineCount,
		TotalCents: total.Cents(),
		Currency:   total.Currency(),
	})
}
