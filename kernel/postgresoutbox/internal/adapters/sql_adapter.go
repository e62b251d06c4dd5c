package adapters

import (
	"context"
	"database/sql"
)

// SQLAdapter implements DBAdapter for sql.DB.
type SQLAdapter struct {
	db *sql.DB
}

// NewSQLAdapter creates a SQLAdapter.
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

// Query runs statement on the database handle.
func (a *SQLAdapter) Query(ctx context.Context, statement string) (DBRows, error) {
	rows, err := a.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}

	return sqlRows{rows: rows}, nil
}

// Exec runs statement on the database handle.
func (a *SQLAdapter) Exec(ctx context.Context, statement string) (DBResult, error) {
	return a.db.ExecContext(ctx, statement)
}
