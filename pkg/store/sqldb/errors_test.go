package sqldb_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/grc-admin/pkg/store/sqldb"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/sqldbtest"
)

func TestIsUniqueViolation(t *testing.T) {
	db := sqldbtest.NewDB(t)
	ctx := context.Background()

	insert := `INSERT INTO control_domains (id, code, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, insert, "d1", "AC", "Access Control", "2024-01-01", "2024-01-01")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "d2", "AC", "Access Control again", "2024-01-01", "2024-01-01")
	require.Error(t, err)

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "sqlite unique index", err: err, want: true},
		{name: "wrapped", err: fmt.Errorf("failed to insert: %w", err), want: true},
		{name: "postgres unique violation", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "postgres foreign key", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqldb.IsUniqueViolation(tt.err))
		})
	}
}
