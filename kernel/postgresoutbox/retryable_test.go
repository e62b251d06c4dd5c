package postgresoutbox_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/domain-kernel-go/kernel/postgresoutbox"
)

func Test_IsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "pgx serialization failure", err: &pgconn.PgError{Code: "40001"}, want: true},
		{name: "pgx deadlock", err: &pgconn.PgError{Code: "40P01"}, want: true},
		{name: "pgx unique violation", err: &pgconn.PgError{Code: "23505"}, want: false},
		{name: "pq lock not available", err: &pq.Error{Code: "55P03"}, want: true},
		{name: "pq too many connections", err: &pq.Error{Code: "53300"}, want: true},
		{name: "pq syntax error", err: &pq.Error{Code: "42601"}, want: false},
		{
			name: "joined with the package sentinel",
			err:  errors.Join(postgresoutbox.ErrAppendingEventsFailed, &pgconn.PgError{Code: "40001"}),
			want: true,
		},
		{name: "wrapped", err: fmt.Errorf("persist: %w", &pq.Error{Code: "40P01"}), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, postgresoutbox.IsRetryable(tt.err))
		})
	}
}
