// Package postgresoutbox persists the pending events of aggregates into a PostgreSQL outbox table.
//
// The Store implements the unit of work's Persister: all pending events of all given aggregates
// are written with one multi-row INSERT, so either every event is stored or none is.
// Relays, retries, and exactly-once delivery to external systems are left to the consumers of the table.
//
// Supported database handles:
//   - pgxpool.Pool via NewStoreFromPGXPool
//   - sql.DB via NewStoreFromSQLDB (e.g. with github.com/lib/pq)
//   - sqlx.DB via NewStoreFromSQLX
//
// Usage:
//
//	store, err := postgresoutbox.NewStoreFromPGXPool(pool, postgresoutbox.WithLogger(logger))
//	if err != nil { ... }
//	if err := store.EnsureSchema(ctx); err != nil { ... }
//	uow, err := unitofwork.New(store, b)
package postgresoutbox
