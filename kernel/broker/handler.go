package broker

import (
	"context"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

// HandlerFunc reacts to one dispatched event.
// A returned error aborts the dispatch it was invoked from.
type HandlerFunc func(ctx context.Context, event kernel.Event) error

// AsyncErrorFunc receives the failures of asynchronous handlers.
type AsyncErrorFunc func(event kernel.Event, err error)

// Async wraps handler so that it runs on its own goroutine and always reports success to the broker.
//
// The broker neither waits for nor observes the wrapped handler. Its context is detached from the
// dispatch context's cancellation. Failures go to onError, which may be nil.
func Async(handler HandlerFunc, onError AsyncErrorFunc) HandlerFunc {
	return func(ctx context.Context, event kernel.Event) error {
		detached := context.WithoutCancel(ctx)

		go func() {
			if err := handler(detached, event); err != nil && onError != nil {
				onError(event, err)
			}
		}()

		return nil
	}
}
