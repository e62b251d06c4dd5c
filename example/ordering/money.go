package ordering

import (
	"fmt"
	"strings"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

// MoneyAttributes is the attribute bundle of Money.
type MoneyAttributes struct {
	Cents    int64
	Currency string
}

// Money is an amount in minor units of a currency.
type Money struct {
	kernel.Value[MoneyAttributes]
}

// NewMoney creates Money. The currency code is upper-cased.
func NewMoney(cents int64, currency string) Money {
	return Money{Value: kernel.NewValue(MoneyAttributes{
		Cents:    cents,
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
	})}
}

func (m Money) Cents() int64 {
	return m.Get().Cents
}

func (m Money) Currency() string {
	return m.Get().Currency
}

// Add returns the sum of m and other, which must share m's currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency() != other.Currency() {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency(), other.Currency())
	}

	return NewMoney(m.Cents()+other.Cents(), m.Currency()), nil
}

// Times returns m multiplied by factor.
func (m Money) Times(factor int) Money {
	return NewMoney(m.Cents()*int64(factor), m.Currency())
}

// Equals reports whether other is Money with the same amount and currency.
func (m Money) Equals(other any) bool {
	switch o := other.(type) {
	case Money:
		return m.Value.Equals(o.Value)
	case *Money:
		return o != nil && m.Value.Equals(o.Value)
	default:
		return false
	}
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.Cents()/100, abs(m.Cents()%100), m.Currency())
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
