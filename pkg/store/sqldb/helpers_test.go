package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/grc-admin/pkg/models/domain"
)

func TestEncodeJSON(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil", in: nil, want: nil},
		{name: "empty slice", in: []string{}, want: nil},
		{name: "nil slice", in: []string(nil), want: nil},
		{name: "empty map", in: map[string]any{}, want: nil},
		{name: "values", in: []string{"a", "b"}, want: `["a","b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeJSON(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONColumn(t *testing.T) {
	var tags []string
	require.NoError(t, JSONColumn(&tags).Scan(`["x","y"]`))
	assert.Equal(t, []string{"x", "y"}, tags)

	var untouched []string
	require.NoError(t, JSONColumn(&untouched).Scan(nil))
	assert.Nil(t, untouched)

	var m map[string]any
	require.NoError(t, JSONColumn(&m).Scan([]byte(`{"k":1}`)))
	assert.Equal(t, float64(1), m["k"])

	assert.Error(t, JSONColumn(&m).Scan(42))
}

func TestSearch(t *testing.T) {
	query, args, err := Search("  Access ", "title", "description").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", query)
	assert.Equal(t, []any{"%access%", "%access%"}, args)
}

func TestPaginate(t *testing.T) {
	db := Wrap(nil, DialectSQLite)
	query, _, err := Paginate(db.Builder().Select("id").From("t"), domain.Page{Page: 3, Limit: 500}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM t LIMIT 100 OFFSET 200", query)
}

func TestRowsAffected(t *testing.T) {
	err := RowsAffected(sqlmock.NewResult(0, 0), "control", "c-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, RowsAffected(sqlmock.NewResult(0, 1), "control", "c-1"))

	err = RowsAffected(sqlmock.NewErrorResult(errors.New("driver")), "control", "c-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestNullHelpers(t *testing.T) {
	assert.Nil(t, NullString(""))
	assert.Equal(t, "x", NullString("x"))
	assert.Nil(t, NullTime(nil))
	assert.Nil(t, NullFloat(nil))

	ts := time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.FixedZone("X", 3600))
	assert.Equal(t, time.Date(2024, 5, 1, 9, 0, 0, 123456000, time.UTC), NullTime(&ts))

	assert.Nil(t, TimePtr(sql.NullTime{}))
	assert.Nil(t, FloatPtr(sql.NullFloat64{}))
	f := FloatPtr(sql.NullFloat64{Float64: 2.5, Valid: true})
	require.NotNil(t, f)
	assert.Equal(t, 2.5, *f)
}

func TestDB_CountBy(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	db := Wrap(conn, DialectSQLite)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT status, COUNT(*) FROM unified_controls WHERE deleted_at IS NULL GROUP BY status",
	)).WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
		AddRow("active", 3).
		AddRow("draft", 1).
		AddRow(nil, 2))

	got, err := db.CountBy(context.Background(), db.Builder().Select().From("unified_controls").Where(NotDeleted), "status")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"active": 3, "draft": 1}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
