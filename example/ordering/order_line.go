package ordering

import (
	"strings"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

// OrderLineAttributes is the attribute bundle of OrderLine.
type OrderLineAttributes struct {
	SKU       string
	Quantity  int
	UnitPrice MoneyAttributes
}

// OrderLine is a quantity of one SKU at a unit price.
type OrderLine struct {
	kernel.Value[OrderLineAttributes]
}

// NewOrderLine creates an OrderLine.
// It returns ErrEmptySKU or ErrInvalidQuantity if the input violates the line's rules.
func NewOrderLine(sku string, quantity int, unitPrice Money) (OrderLine, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return OrderLine{}, ErrEmptySKU
	}

	if quantity < 1 {
		return OrderLine{}, ErrInvalidQuantity
	}

	return OrderLine{Value: kernel.NewValue(OrderLineAttributes{
		SKU:       sku,
		Quantity:  quantity,
		UnitPrice: unitPrice.Get(),
	})}, nil
}

func (l OrderLine) SKU() string {
	return l.Get().SKU
}

func (l OrderLine) Quantity() int {
	return l.Get().Quantity
}

func (l OrderLine) UnitPrice() Money {
	price := l.Get().UnitPrice

	return NewMoney(price.Cents, price.Currency)
}

// Total returns the unit price times the quantity.
func (l OrderLine) Total() Money {
	return l.UnitPrice().Times(l.Quantity())
}

// Equals reports whether other is an OrderLine with the same attributes.
func (l OrderLine) Equals(other any) bool {
	switch o := other.(type) {
	case OrderLine:
		return l.Value.Equals(o.Value)
	case *OrderLine:
		return o != nil && l.Value.Equals(o.Value)
	default:
		return false
	}
}
