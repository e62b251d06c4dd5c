package kernel

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Value is an immutable attribute bundle compared by deep structural equality.
//
// The bundle is copied on construction and on every Get, so nothing a caller does
// with a retrieved bundle is observable through the Value.
type Value[T any] struct {
	value T
}

// NewValue creates a Value holding a private copy of value.
func NewValue[T any](value T) Value[T] {
	return Value[T]{value: deepCopy(value)}
}

// Get returns a copy of the bundle.
func (v Value[T]) Get() T {
	return deepCopy(v.value)
}

// Equals reports whether other is a Value of the same bundle type with a deeply equal bundle.
// Nil and empty maps or slices are treated as equal.
func (v Value[T]) Equals(other any) bool {
	switch o := other.(type) {
	case Value[T]:
		return equalBundles(v.value, o.value)
	case *Value[T]:
		if o == nil {
			return false
		}

		return equalBundles(v.value, o.value)
	default:
		return false
	}
}

var bundleComparison = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

func equalBundles[T any](a, b T) bool {
	return cmp.Equal(a, b, bundleComparison...)
}
