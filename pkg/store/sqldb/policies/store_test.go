package policies

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

var base = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func setupFixture(t *testing.T) *fixture {
	db := sqldbtest.NewDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	return &fixture{
		db:    db,
		store: store,
	}
}

func policy(id, title string, status domain.PolicyStatus, offset time.Duration) *domain.Policy {
	return &domain.Policy{
		ID:         id,
		Title:      title,
		PolicyType: "security",
		Status:     status,
		OwnerID:    "owner-1",
		Version:    "1.0",
		Content:    "All staff must comply.",
		Ownership: domain.Ownership{
			CreatedBy: "user-1",
			CreatedAt: base.Add(offset),
			UpdatedAt: base.Add(offset),
		},
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

	require.NoError(t, f.store.Create(ctx, policy("p1", "Acceptable Use", domain.PolicyDraft, 0)))
	require.NoError(t, f.store.Create(ctx, policy("p2", "Access Control", domain.PolicyPublished, time.Hour)))

	tests := []struct {
		name   string
		filter domain.PolicyFilter
		want   []string
	}{
		{name: "all", filter: domain.PolicyFilter{}, want: []string{"p2", "p1"}},
		{name: "by status", filter: domain.PolicyFilter{Status: domain.PolicyDraft}, want: []string{"p1"}},
		{name: "search", filter: domain.PolicyFilter{Search: "ACCESS"}, want: []string{"p2"}},
		{name: "no match", filter: domain.PolicyFilter{OwnerID: "someone"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.store.List(ctx, tt.filter)
			require.NoError(t, err)
			ids := []string{}
			for _, p := range res.Items {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, len(tt.want), res.Total)
		})
	}

	version := "2.0"
	require.NoError(t, f.store.Update(ctx, "p1", domain.PolicyUpdate{Version: &version, UpdatedBy: "user-2"}))
	require.NoError(t, f.store.UpdateStatus(ctx, "p1", string(domain.PolicyInReview), "user-2"))
	p, err := f.store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "2.0", p.Version)
	assert.Equal(t, domain.PolicyInReview, p.Status)

	require.NoError(t, f.store.Delete(ctx, "p1", "user-2"))
	_, err = f.store.Get(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.store.Delete(ctx, "p1", "user-2"), domain.ErrNotFound)
}

func TestStore_Acknowledge(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Create(ctx, policy("p1", "Acceptable Use", domain.PolicyPublished, 0)))

	first, err := f.store.Acknowledge(ctx, &domain.PolicyAcknowledgment{PolicyID: "p1", UserID: "u1", AcknowledgedAt: base})
	require.NoError(t, err)
	assert.True(t, first.AcknowledgedAt.Equal(base))

	again, err := f.store.Acknowledge(ctx, &domain.PolicyAcknowledgment{PolicyID: "p1", UserID: "u1", AcknowledgedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	assert.True(t, again.AcknowledgedAt.Equal(base))

	_, err = f.store.Acknowledge(ctx, &domain.PolicyAcknowledgment{PolicyID: "p1", UserID: "u2", AcknowledgedAt: base})
	require.NoError(t, err)

	acks, err := f.store.ListAcknowledgments(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, acks, 2)
}
