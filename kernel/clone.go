package kernel

import (
	"github.com/huandu/go-clone"
)

// deepCopy returns a copy of v that shares no mutable state with it.
func deepCopy[T any](v T) T {
	cloned, ok := clone.Clone(v).(T)
	if !ok {
		var zero T
		return zero
	}

	return cloned
}
