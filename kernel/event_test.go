package kernel_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

const parcelSentEventKind = "ParcelSent"

type parcelSentData struct {
	Carrier string
	Items   []string
}

type parcelSent struct {
	kernel.EventRecord
}

func buildParcelSent(parcelID kernel.ID, data parcelSentData, options ...kernel.EventOption) parcelSent {
	return parcelSent{kernel.NewEventRecord(parcelSentEventKind, parcelID, data, options...)}
}

func Test_NewEventRecord(t *testing.T) {
	fakeClock := time.Date(2024, 3, 1, 12, 30, 0, 500, time.FixedZone("CET", 3600))

	event := buildParcelSent(
		"parcel-1",
		parcelSentData{Carrier: "DHL", Items: []string{"book"}},
		kernel.WithClock(func() time.Time { return fakeClock }),
	)

	assert.Equal(t, parcelSentEventKind, event.EventKind())
	assert.Equal(t, kernel.ID("parcel-1"), event.AggregateID())
	assert.True(t, fakeClock.Equal(event.OccurredAt()))
	assert.Equal(t, time.UTC, event.OccurredAt().Location())
	assert.Equal(t, "2024-03-01T11:30:00.0000005Z", event.Timestamp())
	assert.True(t, event.HasData())
	assert.Equal(t, parcelSentData{Carrier: "DHL", Items: []string{"book"}}, event.Data())
}

func Test_NewEventRecord_StampsTheOccurrenceTimeAtConstruction(t *testing.T) {
	before := time.Now()
	event := kernel.NewEventRecord("Something", "a-1", nil)
	after := time.Now()

	assert.False(t, event.OccurredAt().Before(before.UTC()))
	assert.False(t, event.OccurredAt().After(after.UTC()))
}

func Test_NewEventRecord_WithOccurredAt(t *testing.T) {
	occurredAt := time.Unix(1_700_000_000, 0).UTC()

	event := kernel.NewEventRecord("Something", "a-1", nil, kernel.WithOccurredAt(occurredAt))

	assert.Equal(t, occurredAt, event.OccurredAt())
}

func Test_NewEventRecord_WithoutData(t *testing.T) {
	event := kernel.NewEventRecord("Something", "a-1", nil)

	assert.False(t, event.HasData())
	assert.Nil(t, event.Data())
}

func Test_EventRecord_Data_CannotBeMutatedFromOutside(t *testing.T) {
	payload := map[string]any{"items": []string{"book"}}
	event := kernel.NewEventRecord("Something", "a-1", payload)

	payload["items"].([]string)[0] = "changed by producer"
	event.Data().(map[string]any)["items"].([]string)[0] = "changed by consumer"

	assert.Equal(t, map[string]any{"items": []string{"book"}}, event.Data())
}

func Test_DataAs(t *testing.T) {
	event := buildParcelSent("parcel-1", parcelSentData{Carrier: "UPS"})

	data, ok := kernel.DataAs[parcelSentData](event)
	assert.True(t, ok)
	assert.Equal(t, "UPS", data.Carrier)

	_, ok = kernel.DataAs[string](event)
	assert.False(t, ok)
}
