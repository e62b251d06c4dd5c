package postgresoutbox

import "errors"

// ErrNilDatabaseConnection is returned when a constructor receives a nil database handle.
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")

// ErrEmptyTableName is returned by WithTableName for an empty name.
var ErrEmptyTableName = errors.New("outbox table name must not be empty")

// ErrInvalidPayloadJSON is returned when a stored event's payload is not valid JSON.
var ErrInvalidPayloadJSON = errors.New("payload json is not valid")

// ErrEncodingPayloadFailed is returned when an event's data cannot be encoded as JSON.
var ErrEncodingPayloadFailed = errors.New("encoding event payload failed")

// ErrBuildingQueryFailed is returned when a SQL statement cannot be rendered.
var ErrBuildingQueryFailed = errors.New("building query failed")

// ErrCreatingSchemaFailed is returned when the outbox table cannot be created.
var ErrCreatingSchemaFailed = errors.New("creating outbox schema failed")

// ErrAppendingEventsFailed is returned when the INSERT fails or stores fewer rows than events.
var ErrAppendingEventsFailed = errors.New("appending events to the outbox failed")

// ErrQueryingEventsFailed is returned when the outbox cannot be read.
var ErrQueryingEventsFailed = errors.New("querying events failed")

// ErrScanningDBRowFailed is returned when a result row cannot be scanned.
var ErrScanningDBRowFailed = errors.New("scanning db row failed")
