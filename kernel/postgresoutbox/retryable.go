package postgresoutbox

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE codes of transient failures, where the same INSERT may succeed when repeated.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateTooManyConnections   = "53300"
	sqlStateLockNotAvailable     = "55P03"
)

// IsRetryable reports whether err, as returned by Store.Persist, is a transient Postgres failure.
// It understands the errors of both pgx and lib/pq. Use it with unitofwork.WithRetryableErrors.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientSQLState(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return isTransientSQLState(string(pqErr.Code))
	}

	return false
}

func isTransientSQLState(code string) bool {
	switch code {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateTooManyConnections, sqlStateLockNotAvailable:
		return true
	default:
		return false
	}
}
