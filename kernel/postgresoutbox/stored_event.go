package postgresoutbox

import (
	"errors"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

// StoredEvents is an alias type for a slice of StoredEvent.
type StoredEvents = []StoredEvent

// StoredEvent is the outbox row of one event, built on scalars only.
//
// While its properties are exported, it should only be constructed with BuildStoredEvent or StoredEventFrom.
type StoredEvent struct {
	MessageID   string
	AggregateID kernel.ID
	EventKind   kernel.EventKind
	OccurredAt  time.Time
	PayloadJSON []byte
}

// BuildStoredEvent is a factory method for StoredEvent.
// Returns ErrInvalidPayloadJSON if payloadJSON is not valid JSON.
func BuildStoredEvent(
	messageID string,
	aggregateID kernel.ID,
	kind kernel.EventKind,
	occurredAt time.Time,
	payloadJSON []byte,
) (StoredEvent, error) {

	if !jsoniter.ConfigFastest.Valid(payloadJSON) {
		return StoredEvent{}, ErrInvalidPayloadJSON
	}

	return StoredEvent{
		MessageID:   messageID,
		AggregateID: aggregateID,
		EventKind:   kind,
		OccurredAt:  occurredAt,
		PayloadJSON: payloadJSON,
	}, nil
}

// StoredEventFrom converts a recorded event into a StoredEvent with a fresh message ID.
// The event's data is encoded as JSON; an event without data gets the payload null.
func StoredEventFrom(event kernel.Event) (StoredEvent, error) {
	payloadJSON, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(event.Data())
	if err != nil {
		return StoredEvent{}, errors.Join(ErrEncodingPayloadFailed, err)
	}

	return BuildStoredEvent(uuid.NewString(), event.AggregateID(), event.EventKind(), event.OccurredAt(), payloadJSON)
}

// DecodePayload unmarshals the payload into target.
func (e StoredEvent) DecodePayload(target any) error {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(e.PayloadJSON, target)
}
