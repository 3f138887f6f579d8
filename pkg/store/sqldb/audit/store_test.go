package audit

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/sqldbtest"
)

type fixture struct {
	db    *sqldb.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db := sqldbtest.NewDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	return &fixture{
		db:    db,
		store: store,
	}
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func entry(id string, action domain.AuditAction, entityType, entityID string, at time.Time) *domain.AuditLog {
	return &domain.AuditLog{
		ID:          id,
		UserID:      "user-1",
		UserEmail:   "auditor@example.com",
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: "Changed " + entityType,
		Changes:     map[string]any{"status": "active"},
		IPAddress:   "10.0.0.1",
		StatusCode:  200,
		CreatedAt:   at,
	}
}

func seed(t *testing.T, f *fixture) {
	ctx := context.Background()
	require.NoError(t, f.store.Insert(ctx, entry("a1", domain.AuditCreate, "control", "c-1", base)))
	require.NoError(t, f.store.Insert(ctx, entry("a2", domain.AuditUpdate, "control", "c-1", base.Add(time.Hour))))
	require.NoError(t, f.store.Insert(ctx, entry("a3", domain.AuditCreate, "sop", "s-1", base.Add(48*time.Hour))))
}

func TestNewStore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupFixture(t)
		assert.NotNil(t, f.store)
	})

	t.Run("nil db", func(t *testing.T) {
		store, err := NewStore(nil)
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}

func TestStore_InsertAndGet(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	seed(t, f)

	got, err := f.store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.AuditCreate, got.Action)
	assert.Equal(t, "c-1", got.EntityID)
	assert.Equal(t, map[string]any{"status": "active"}, got.Changes)
	assert.Equal(t, 200, got.StatusCode)
	assert.True(t, base.Equal(got.CreatedAt))

	_, err = f.store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	seed(t, f)

	tests := []struct {
		name   string
		filter domain.AuditFilter
		ids    []string
	}{
		{name: "newest first", filter: domain.AuditFilter{}, ids: []string{"a3", "a2", "a1"}},
		{name: "by entity type", filter: domain.AuditFilter{EntityType: "control"}, ids: []string{"a2", "a1"}},
		{name: "by action", filter: domain.AuditFilter{Action: domain.AuditCreate}, ids: []string{"a3", "a1"}},
		{name: "search", filter: domain.AuditFilter{Search: "SOP"}, ids: []string{"a3"}},
		{
			name:   "time window",
			filter: domain.AuditFilter{From: timePtr(base.Add(time.Minute)), To: timePtr(base.Add(2 * time.Hour))},
			ids:    []string{"a2"},
		},
		{name: "page", filter: domain.AuditFilter{Page: domain.Page{Page: 2, Limit: 2}}, ids: []string{"a1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.store.List(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(res.Items))
			for _, l := range res.Items {
				ids = append(ids, l.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestStore_ListByEntity(t *testing.T) {
	f := setupFixture(t)
	seed(t, f)

	trail, err := f.store.ListByEntity(context.Background(), "control", "c-1")
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, "a1", trail[0].ID)
	assert.Equal(t, "a2", trail[1].ID)
}

func TestStore_Stats(t *testing.T) {
	f := setupFixture(t)
	seed(t, f)

	stats, err := f.store.Stats(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, map[string]int{"create": 2, "update": 1}, stats.ByAction)
	assert.Equal(t, map[string]int{"control": 2, "sop": 1}, stats.ByEntityType)
}

func TestStore_DeleteBefore(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	seed(t, f)

	cutoff := base.Add(24 * time.Hour)
	var archived []string
	require.NoError(t, f.store.IterateBefore(ctx, cutoff, func(l domain.AuditLog) error {
		archived = append(archived, l.ID)
		return nil
	}))
	assert.Equal(t, []string{"a1", "a2"}, archived)

	n, err := f.store.DeleteBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res, err := f.store.List(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
}

func TestStore_Insert_QueryShape(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	store, err := NewStore(sqldb.Wrap(conn, sqldb.DialectPostgres))
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs (id,user_id,user_email,action,entity_type,entity_id,description,changes,ip_address,user_agent,request_id,status_code,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)")).
		WithArgs("a1", "user-1", "auditor@example.com", "create", "control", "c-1", "Changed control",
			`{"status":"active"}`, "10.0.0.1", nil, nil, 200, base).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Insert(context.Background(), entry("a1", domain.AuditCreate, "control", "c-1", base)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func timePtr(t time.Time) *time.Time {
	return &t
}
