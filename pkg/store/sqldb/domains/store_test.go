package domains

import (
	"context"
	"testing"
	"time"

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

var base = time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)

func setupFixture(t *testing.T) *fixture {
	db := sqldbtest.NewDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	return &fixture{
		db:    db,
		store: store,
	}
}

func controlDomain(id, code, parent string, order int, active bool) *domain.ControlDomain {
	return &domain.ControlDomain{
		ID:           id,
		Name:         "Domain " + code,
		Code:         code,
		ParentID:     parent,
		DisplayOrder: order,
		IsActive:     active,
		Ownership:    domain.Ownership{CreatedAt: base, UpdatedAt: base},
	}
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

func TestStore_CRUD(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Create(ctx, controlDomain("d1", "AC", "", 2, true)))
	require.NoError(t, f.store.Create(ctx, controlDomain("d2", "IR", "", 1, true)))
	require.NoError(t, f.store.Create(ctx, controlDomain("d3", "AC-SUB", "d1", 0, false)))

	d, err := f.store.Get(ctx, "d3")
	require.NoError(t, err)
	assert.Equal(t, "d1", d.ParentID)
	assert.False(t, d.IsActive)

	exists, err := f.store.ExistsCode(ctx, "IR")
	require.NoError(t, err)
	assert.True(t, exists)

	all, err := f.store.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"d3", "d2", "d1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	active, err := f.store.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	on := true
	require.NoError(t, f.store.Update(ctx, "d3", domain.ControlDomainUpdate{IsActive: &on, UpdatedBy: "user-1"}))
	d, err = f.store.Get(ctx, "d3")
	require.NoError(t, err)
	assert.True(t, d.IsActive)
	assert.Equal(t, "user-1", d.UpdatedBy)

	require.NoError(t, f.store.Delete(ctx, "d3", "user-1"))
	_, err = f.store.Get(ctx, "d3")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ControlCounts(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	for _, c := range []struct{ id, domainID string }{{"c1", "d1"}, {"c2", "d1"}, {"c3", "d2"}} {
		_, err := f.db.ExecContext(ctx,
			`INSERT INTO unified_controls (id, control_identifier, title, domain_id, created_at, updated_at)
			 VALUES (?, ?, 'x', ?, ?, ?)`, c.id, c.id, c.domainID, base, base)
		require.NoError(t, err)
	}
	_, err := f.db.ExecContext(ctx, `UPDATE unified_controls SET deleted_at = ? WHERE id = 'c3'`, base)
	require.NoError(t, err)

	counts, err := f.store.ControlCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"d1": 2}, counts)
}
