package postgresoutbox

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
	"github.com/AntonStoeckl/domain-kernel-go/kernel/postgresoutbox/internal/adapters"
)

const (
	defaultTableName             = "outbox"
	dialectPostgres              = "postgres"
	colSequenceNumber            = "sequence_number"
	colMessageID                 = "message_id"
	colAggregateID               = "aggregate_id"
	colEventKind                 = "event_kind"
	colOccurredAt                = "occurred_at"
	colPersistedAt               = "persisted_at"
	colPayload                   = "payload"
	castJsonb                    = "?::jsonb"
	logMsgBuildInsertQueryFailed = "failed to build insert query"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgConvertEventFailed     = "failed to convert event for the outbox"
	logMsgDBExecFailed           = "database execution failed during persist"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgRowsAffectedMismatch   = "outbox insert stored fewer rows than events"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgSchemaFailed           = "failed to create outbox schema"
	logMsgSchemaEnsured          = "outbox schema ensured"
	logMsgEventsPersisted        = "events persisted"
	logMsgQueryCompleted         = "query completed"
	logMsgSQLExecuted            = "executed sql"
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrTable                 = "table"
	logAttrEventKind             = "event_kind"
	logAttrAggregateID           = "aggregate_id"
	logAttrEventCount            = "event_count"
	logAttrAggregateCount        = "aggregate_count"
	logAttrRowsAffected          = "rows_affected"
	logAttrDurationMS            = "duration_ms"
)

// Store is the PostgreSQL outbox. It is safe for concurrent use if the underlying handle is.
type Store struct {
	db        adapters.DBAdapter
	tableName string
	clock     func() time.Time

	logger           kernel.Logger
	contextualLogger kernel.ContextualLogger
	metricsCollector kernel.MetricsCollector
	tracingCollector kernel.TracingCollector
}

type queryResultRow struct {
	messageID   string
	aggregateID string
	eventKind   string
	occurredAt  time.Time
	payload     []byte
}

// NewStoreFromPGXPool creates a Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromSQLDB creates a Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (Store, error) {
	s := Store{
		db:        db,
		tableName: defaultTableName,
		clock:     time.Now,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// TableName returns the name of the outbox table.
func (s Store) TableName() string {
	return s.tableName
}

// EnsureSchema creates the outbox table and its aggregate index if they do not exist yet.
func (s Store) EnsureSchema(ctx context.Context) error {
	table := pq.QuoteIdentifier(s.tableName)
	index := pq.QuoteIdentifier(s.tableName + "_aggregate_id_idx")

	statements := []string{
		"CREATE TABLE IF NOT EXISTS " + table + ` (
			sequence_number bigserial PRIMARY KEY,
			message_id text NOT NULL UNIQUE,
			aggregate_id text NOT NULL,
			event_kind text NOT NULL,
			occurred_at timestamptz NOT NULL,
			persisted_at timestamptz NOT NULL,
			payload jsonb NOT NULL
		)`,
		"CREATE INDEX IF NOT EXISTS " + index + " ON " + table + " (aggregate_id, sequence_number)",
	}

	for _, statement := range statements {
		start := time.Now()
		_, err := s.db.Exec(ctx, statement)
		s.logSQL(ctx, statement, time.Since(start))

		if err != nil {
			s.logError(ctx, logMsgSchemaFailed, err, logAttrTable, s.tableName)
			return errors.Join(ErrCreatingSchemaFailed, err)
		}
	}

	s.logInfo(ctx, logMsgSchemaEnsured, logAttrTable, s.tableName)

	return nil
}

// Persist stores the pending events of all aggregates with a single INSERT.
// Aggregates without pending events contribute nothing; if no events are pending at all, nothing is executed.
func (s Store) Persist(ctx context.Context, aggregates []kernel.Aggregate) error {
	events, convertErr := s.storedEventsOf(ctx, aggregates)
	if convertErr != nil {
		return convertErr
	}

	if len(events) == 0 {
		return nil
	}

	tracing, ctx := s.startPersistTracing(ctx, len(aggregates), len(events))
	metrics := s.startPersistMetrics(ctx)

	sqlQuery, buildErr := s.buildInsertQuery(events)
	if buildErr != nil {
		s.logError(ctx, logMsgBuildInsertQueryFailed, buildErr, logAttrEventCount, len(events))
		tracing.finishError(errorTypeBuildQuery, 0)

		return buildErr
	}

	start := time.Now()
	result, execErr := s.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	s.logSQL(ctx, sqlQuery, duration)

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		metrics.recordError(errorTypeDatabaseExec, duration)
		tracing.finishError(errorTypeDatabaseExec, duration)

		return errors.Join(ErrAppendingEventsFailed, execErr)
	}

	rowsAffected, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		s.logError(ctx, logMsgDBExecFailed, rowsErr)
		metrics.recordError(errorTypeRowsAffected, duration)
		tracing.finishError(errorTypeRowsAffected, duration)

		return errors.Join(ErrAppendingEventsFailed, rowsErr)
	}

	if rowsAffected != int64(len(events)) {
		s.logError(
			ctx,
			logMsgRowsAffectedMismatch,
			ErrAppendingEventsFailed,
			logAttrEventCount, len(events),
			logAttrRowsAffected, rowsAffected,
		)
		metrics.recordError(errorTypeRowsAffected, duration)
		tracing.finishError(errorTypeRowsAffected, duration)

		return ErrAppendingEventsFailed
	}

	metrics.recordSuccess(len(events), duration)
	tracing.finishSuccess(rowsAffected, duration)
	s.logInfo(
		ctx,
		logMsgEventsPersisted,
		logAttrAggregateCount, len(aggregates),
		logAttrEventCount, len(events),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return nil
}

// Query returns the stored events of one aggregate in the order they were persisted.
func (s Store) Query(ctx context.Context, aggregateID kernel.ID) (StoredEvents, error) {
	sqlQuery, buildErr := s.buildSelectQuery(aggregateID)
	if buildErr != nil {
		s.logError(ctx, logMsgBuildSelectQueryFailed, buildErr, logAttrAggregateID, aggregateID.String())
		return nil, buildErr
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	s.logSQL(ctx, sqlQuery, duration)

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		s.recordDatabaseError(ctx, operationQuery, errorTypeDatabaseQuery)

		return nil, errors.Join(ErrQueryingEventsFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	events, scanErr := s.scanStoredEvents(ctx, rows)
	if scanErr != nil {
		return nil, scanErr
	}

	s.logInfo(
		ctx,
		logMsgQueryCompleted,
		logAttrAggregateID, aggregateID.String(),
		logAttrEventCount, len(events),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return events, nil
}

func (s Store) storedEventsOf(ctx context.Context, aggregates []kernel.Aggregate) (StoredEvents, error) {
	events := make(StoredEvents, 0)

	for _, aggregate := range aggregates {
		if isNil(aggregate) {
			continue
		}

		for _, event := range aggregate.PendingEvents() {
			stored, err := StoredEventFrom(event)
			if err != nil {
				s.logError(ctx, logMsgConvertEventFailed, err, logAttrEventKind, event.EventKind())
				return nil, err
			}

			events = append(events, stored)
		}
	}

	return events, nil
}

func (s Store) scanStoredEvents(ctx context.Context, rows adapters.DBRows) (StoredEvents, error) {
	events := make(StoredEvents, 0)
	row := queryResultRow{}

	for rows.Next() {
		if err := rows.Scan(&row.messageID, &row.aggregateID, &row.eventKind, &row.occurredAt, &row.payload); err != nil {
			s.logError(ctx, logMsgScanRowFailed, err)
			return nil, errors.Join(ErrScanningDBRowFailed, err)
		}

		event, buildErr := BuildStoredEvent(
			row.messageID,
			kernel.ID(row.aggregateID),
			row.eventKind,
			row.occurredAt,
			append([]byte(nil), row.payload...),
		)
		if buildErr != nil {
			s.logError(ctx, logMsgScanRowFailed, buildErr, logAttrEventKind, row.eventKind)
			return nil, errors.Join(ErrScanningDBRowFailed, buildErr)
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		s.logError(ctx, logMsgDBQueryFailed, err)
		return nil, errors.Join(ErrQueryingEventsFailed, err)
	}

	return events, nil
}

func (s Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, err.Error())
	}
}

func (s Store) buildInsertQuery(events StoredEvents) (string, error) {
	persistedAt := s.clock().UTC()

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tableName).
		Cols(colMessageID, colAggregateID, colEventKind, colOccurredAt, colPersistedAt, colPayload)

	for _, event := range events {
		insertStmt = insertStmt.Vals(goqu.Vals{
			event.MessageID,
			event.AggregateID.String(),
			event.EventKind,
			event.OccurredAt.UTC(),
			persistedAt,
			goqu.L(castJsonb, string(event.PayloadJSON)),
		})
	}

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s Store) buildSelectQuery(aggregateID kernel.ID) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(colMessageID, colAggregateID, colEventKind, colOccurredAt, colPayload).
		Where(goqu.C(colAggregateID).Eq(aggregateID.String())).
		Order(goqu.I(colSequenceNumber).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
