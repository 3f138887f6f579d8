package sqldb

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite file", func(t *testing.T) {
		db, err := NewDB(ctx, Settings{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db")})
		require.NoError(t, err)
		require.NotNil(t, db)
		defer func() {
			if err := db.Close(); err != nil {
				t.Errorf("failed to close database connection: %v", err)
			}
		}()

		assert.Equal(t, DialectSQLite, db.Dialect())
		require.NoError(t, db.HealthCheck(ctx))

		// boot schema is idempotent
		require.NoError(t, db.Migrate(ctx))

		var count int
		err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("unknown driver", func(t *testing.T) {
		db, err := NewDB(ctx, Settings{Driver: "oracle"})
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestSqliteDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain path",
			in:   "grc.db",
			want: "file:grc.db?_time_format=sqlite&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
		{
			name: "existing params",
			in:   "file:grc.db?mode=rwc",
			want: "file:grc.db?mode=rwc&_time_format=sqlite&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.in))
		})
	}
}

func TestDB_Builder(t *testing.T) {
	sqlite := Wrap(nil, DialectSQLite)
	query, _, err := sqlite.Builder().Select("id").From("t").Where(sq.Eq{"a": 1}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM t WHERE a = ?", query)

	pg := Wrap(nil, DialectPostgres)
	query, _, err = pg.Builder().Select("id").From("t").Where(sq.Eq{"a": 1}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM t WHERE a = $1", query)
}

func TestDB_InTx(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	db := Wrap(conn, DialectSQLite)
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM t WHERE id = ?")).
			WithArgs("1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := db.InTx(ctx, func(ctx context.Context) error {
			require.NotNil(t, GetTransaction(ctx))
			_, err := db.Execute(ctx, db.Builder().Delete("t").Where(sq.Eq{"id": "1"}))
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.InTx(ctx, func(ctx context.Context) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested joins outer", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := db.InTx(ctx, func(outer context.Context) error {
			return db.InTx(outer, func(inner context.Context) error {
				assert.Same(t, GetTransaction(outer), GetTransaction(inner))
				return nil
			})
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDB_Count(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	db := Wrap(conn, DialectPostgres)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM controls WHERE deleted_at IS NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := db.Count(context.Background(), db.Builder().Select("COUNT(*)").From("controls").Where(NotDeleted))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
