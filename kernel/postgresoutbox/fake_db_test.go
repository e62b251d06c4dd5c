package postgresoutbox

import (
	"context"
	"fmt"
	"time"

	"github.com/AntonStoeckl/domain-kernel-go/kernel/postgresoutbox/internal/adapters"
)

type fakeDB struct {
	execStatements  []string
	queryStatements []string
	execErr         error
	rowsAffected    func(statementCount int) int64
	rowsAffectedErr error
	queryErr        error
	rows            [][]any
	scanErr         error
}

func (f *fakeDB) Exec(_ context.Context, statement string) (adapters.DBResult, error) {
	f.execStatements = append(f.execStatements, statement)

	if f.execErr != nil {
		return nil, f.execErr
	}

	affected := int64(0)
	if f.rowsAffected != nil {
		affected = f.rowsAffected(len(f.execStatements))
	}

	return fakeResult{affected: affected, err: f.rowsAffectedErr}, nil
}

func (f *fakeDB) Query(_ context.Context, statement string) (adapters.DBRows, error) {
	f.queryStatements = append(f.queryStatements, statement)

	if f.queryErr != nil {
		return nil, f.queryErr
	}

	return &fakeRows{rows: f.rows, scanErr: f.scanErr, cursor: -1}, nil
}

type fakeResult struct {
	affected int64
	err      error
}

func (r fakeResult) RowsAffected() (int64, error) {
	return r.affected, r.err
}

type fakeRows struct {
	rows    [][]any
	cursor  int
	scanErr error
	closed  bool
}

func (r *fakeRows) Next() bool {
	r.cursor++
	return r.cursor < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}

	row := r.rows[r.cursor]
	if len(row) != len(dest) {
		return fmt.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}

	for i, value := range row {
		switch target := dest[i].(type) {
		case *string:
			*target = value.(string)
		case *time.Time:
			*target = value.(time.Time)
		case *[]byte:
			*target = value.([]byte)
		default:
			return fmt.Errorf("unsupported scan destination %T", dest[i])
		}
	}

	return nil
}

func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}
