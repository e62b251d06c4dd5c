package adapters

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SQLXAdapter implements DBAdapter for sqlx.DB.
type SQLXAdapter struct {
	db *sqlx.DB
}

// NewSQLXAdapter creates a SQLXAdapter.
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

// Query runs statement on the database handle.
func (a *SQLXAdapter) Query(ctx context.Context, statement string) (DBRows, error) {
	rows, err := a.db.QueryxContext(ctx, statement)
	if err != nil {
		return nil, err
	}

	return sqlRows{rows: rows.Rows}, nil
}

// Exec runs statement on the database handle.
func (a *SQLXAdapter) Exec(ctx context.Context, statement string) (DBResult, error) {
	return a.db.ExecContext(ctx, statement)
}
