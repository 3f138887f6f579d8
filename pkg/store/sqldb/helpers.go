package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/de-tools/grc-admin/pkg/models/domain"
)

func NewID() string {
	return uuid.NewString()
}

// NullString stores empty strings as NULL.
func NullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func NullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return domain.NormalizeTime(*t)
}

func NullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func FloatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

// EncodeJSON marshals v for a TEXT column. Nil and empty values become NULL.
func EncodeJSON(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json column: %w", err)
	}
	switch string(b) {
	case "null", "[]", "{}":
		return nil, nil
	}
	return string(b), nil
}

type jsonScanner[T any] struct {
	dst *T
}

func (s jsonScanner[T]) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, s.dst)
}

// JSONColumn scans a TEXT column holding JSON into dst.
func JSONColumn[T any](dst *T) sql.Scanner {
	return jsonScanner[T]{dst: dst}
}

// Search matches term case-insensitively against any of cols.
func Search(term string, cols ...string) sq.Sqlizer {
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	or := sq.Or{}
	for _, c := range cols {
		or = append(or, sq.Expr("LOWER("+c+") LIKE ?", pattern))
	}
	return or
}

func Paginate(b sq.SelectBuilder, p domain.Page) sq.SelectBuilder {
	p = p.Normalize()
	return b.Limit(uint64(p.Limit)).Offset(uint64(p.Offset()))
}

var NotDeleted = sq.Eq{"deleted_at": nil}

// RowsAffected maps a zero-row update onto a not-found error.
func RowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.NewNotFound(entity, id)
	}
	return nil
}

// CountBy returns per-value row counts for col.
func (db *DB) CountBy(ctx context.Context, b sq.SelectBuilder, col string) (map[string]int, error) {
	rows, err := db.Select(ctx, b.Columns(col, "COUNT(*)").GroupBy(col))
	if err != nil {
		return nil, fmt.Errorf("failed to count by %s: %w", col, err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			key sql.NullString
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count by %s: %w", col, err)
		}
		if key.Valid {
			out[key.String] = n
		}
	}
	return out, rows.Err()
}
