// Package adapters lets the outbox store run on pgxpool.Pool, sql.DB, or sqlx.DB
// through the single DBAdapter interface.
package adapters
