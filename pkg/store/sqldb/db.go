package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type Settings struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// DB wraps a connection pool with the dialect its queries are built for.
type DB struct {
	*sql.DB
	dialect Dialect
}

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func NewDB(ctx context.Context, settings Settings) (*DB, error) {
	var (
		driverName string
		dsn        = settings.DSN
		dialect    Dialect
	)
	switch Dialect(settings.Driver) {
	case DialectSQLite, "":
		driverName, dialect = "sqlite", DialectSQLite
		if dsn == "" {
			dsn = "grc.db"
		}
		dsn = sqliteDSN(dsn)
	case DialectPostgres:
		driverName, dialect = "pgx", DialectPostgres
	default:
		return nil, fmt.Errorf("unsupported database driver %q", settings.Driver)
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == DialectSQLite {
		// one writer avoids SQLITE_BUSY under concurrent requests
		conn.SetMaxOpenConns(1)
	} else if settings.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(settings.MaxOpenConns)
	}

	db := Wrap(conn, dialect)
	if err := db.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Wrap adapts an existing pool, used by tests with sqlmock.
func Wrap(conn *sql.DB, dialect Dialect) *DB {
	return &DB{DB: conn, dialect: dialect}
}

func sqliteDSN(dsn string) string {
	params := []string{"_time_format=sqlite", "_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)"}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		dsn = "file:" + dsn
	}
	return dsn + sep + strings.Join(params, "&")
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Builder returns a statement builder using the dialect's placeholders.
func (db *DB) Builder() sq.StatementBuilderType {
	if db.dialect == DialectPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// Conn returns the transaction carried by ctx, or the pool.
func (db *DB) Conn(ctx context.Context) Querier {
	if tx := GetTransaction(ctx); tx != nil {
		return tx
	}
	return db.DB
}

// InTx runs fn inside a transaction. Nested calls join the outer transaction.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if GetTransaction(ctx) != nil {
		return fn(ctx)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(WithTransaction(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			zerolog.Ctx(ctx).Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Migrate applies the boot schema. Statements are idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	queries := append([]string{}, bootQueries...)

	for _, query := range queries {
		for _, stmt := range strings.Split(query, ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
	}
	return nil
}

// Execute runs a built statement on the context connection.
func (db *DB) Execute(ctx context.Context, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return db.Conn(ctx).ExecContext(ctx, query, args...)
}

// Select runs a built query on the context connection.
func (db *DB) Select(ctx context.Context, b sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return db.Conn(ctx).QueryContext(ctx, query, args...)
}

// SelectRow runs a built single-row query on the context connection.
func (db *DB) SelectRow(ctx context.Context, b sq.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return db.Conn(ctx).QueryRowContext(ctx, query, args...), nil
}

// Count runs SELECT COUNT(*) over a filtered select.
func (db *DB) Count(ctx context.Context, b sq.SelectBuilder) (int, error) {
	row, err := db.SelectRow(ctx, b)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}

func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}
