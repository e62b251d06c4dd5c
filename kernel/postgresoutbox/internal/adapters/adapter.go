package adapters

import (
	"context"
	"database/sql"
)

// DBAdapter is the database surface the outbox store needs.
// Statements arrive fully rendered, so no placeholder arguments are passed.
type DBAdapter interface {
	Query(ctx context.Context, statement string) (DBRows, error)
	Exec(ctx context.Context, statement string) (DBResult, error)
}

// DBRows iterates over the rows of a query result.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult reports the outcome of an executed statement.
type DBResult interface {
	RowsAffected() (int64, error)
}

// sqlRows adapts *sql.Rows, which sql.DB and sqlx.DB both hand out.
type sqlRows struct {
	rows *sql.Rows
}

func (r sqlRows) Next() bool             { return r.rows.Next() }
func (r sqlRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r sqlRows) Err() error             { return r.rows.Err() }
func (r sqlRows) Close() error           { return r.rows.Close() }
