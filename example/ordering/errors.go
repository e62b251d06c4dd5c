package ordering

import (
	"errors"
)

// ErrOrderAlreadyShipped is returned when a shipped order is changed.
var ErrOrderAlreadyShipped = errors.New("order is already shipped")

// ErrEmptyOrder is returned when an order without lines is shipped.
var ErrEmptyOrder = errors.New("order has no lines")

// ErrCurrencyMismatch is returned when amounts in different currencies are combined.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// ErrInvalidQuantity is returned when an order line has a quantity below one.
var ErrInvalidQuantity = errors.New("quantity must be at least one")

// ErrEmptySKU is returned when an order line has no SKU.
var ErrEmptySKU = errors.New("sku must not be empty")
