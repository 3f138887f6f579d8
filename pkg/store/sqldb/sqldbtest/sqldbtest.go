// Package sqldbtest opens throwaway databases for store and service tests.
package sqldbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/de-tools/grc-admin/pkg/store/sqldb"
)

// NewDB returns a migrated sqlite database under t.TempDir, closed on cleanup.
func NewDB(t *testing.T) *sqldb.DB {
	t.Helper()

	db, err := sqldb.NewDB(context.Background(), sqldb.Settings{
		Driver: string(sqldb.DialectSQLite),
		DSN:    filepath.Join(t.TempDir(), "grc.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	})
	return db
}
