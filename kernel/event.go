package kernel

import (
	"time"
)

// EventKind is the discriminator handlers are registered for.
// Concrete events assign their own constant kind when they are built.
type EventKind = string

// Events is an alias type for a slice of Event.
type Events = []Event

// Event is an immutable fact about something that happened to one aggregate.
type Event interface {
	EventKind() EventKind
	AggregateID() ID
	OccurredAt() time.Time
	Data() any
}

// EventRecord is the default Event implementation. Concrete events embed it.
//
// It should only be constructed with NewEventRecord.
type EventRecord struct {
	kind        EventKind
	aggregateID ID
	occurredAt  time.Time
	data        any
}

// EventOption configures NewEventRecord.
type EventOption func(*eventConfig)

type eventConfig struct {
	clock      func() time.Time
	occurredAt time.Time
}

// WithOccurredAt sets the occurrence time explicitly.
func WithOccurredAt(occurredAt time.Time) EventOption {
	return func(c *eventConfig) {
		c.occurredAt = occurredAt
	}
}

// WithClock sets the clock used to stamp the occurrence time.
func WithClock(clock func() time.Time) EventOption {
	return func(c *eventConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewEventRecord is a factory method for EventRecord.
//
// The occurrence time is taken when the record is built, not when it is dispatched.
// data may be nil; otherwise a private copy is stored.
func NewEventRecord(kind EventKind, aggregateID ID, data any, options ...EventOption) EventRecord {
	config := eventConfig{clock: time.Now}
	for _, option := range options {
		if option != nil {
			option(&config)
		}
	}

	occurredAt := config.occurredAt
	if occurredAt.IsZero() {
		occurredAt = config.clock()
	}

	return EventRecord{
		kind:        kind,
		aggregateID: aggregateID,
		occurredAt:  occurredAt.UTC(),
		data:        deepCopy(data),
	}
}

// EventKind returns the kind the record was built with.
func (e EventRecord) EventKind() EventKind {
	return e.kind
}

// AggregateID returns the ID of the aggregate the event concerns.
func (e EventRecord) AggregateID() ID {
	return e.aggregateID
}

// OccurredAt returns when the event occurred.
func (e EventRecord) OccurredAt() time.Time {
	return e.occurredAt
}

// Timestamp returns the occurrence time as an ISO-8601 string.
func (e EventRecord) Timestamp() string {
	return e.occurredAt.Format(time.RFC3339Nano)
}

// Data returns a copy of the payload, or nil if there is none.
func (e EventRecord) Data() any {
	return deepCopy(e.data)
}

// HasData reports whether the event carries a payload.
func (e EventRecord) HasData() bool {
	return e.data != nil
}

// DataAs returns the event's payload as D.
func DataAs[D any](event Event) (D, bool) {
	data, ok := event.Data().(D)

	return data, ok
}
