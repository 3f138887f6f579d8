package exceptions

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

var base = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func setupFixture(t *testing.T) *fixture {
	db := sqldbtest.NewDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	return &fixture{
		db:    db,
		store: store,
	}
}

func exception(id, identifier string, risk domain.RiskLevel) *domain.PolicyException {
	return &domain.PolicyException{
		ID:                  id,
		ExceptionIdentifier: identifier,
		PolicyID:            "p1",
		Title:               "Legacy system " + identifier,
		Justification:       "Vendor end of life",
		RiskLevel:           risk,
		Status:              domain.ExceptionRequested,
		RequestedBy:         "user-1",
		Ownership:           domain.Ownership{CreatedBy: "user-1", CreatedAt: base, UpdatedAt: base},
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

func TestStore_CreateListUpdate(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Create(ctx, exception("e1", "EXC-001", domain.RiskHigh)))
	require.NoError(t, f.store.Create(ctx, exception("e2", "EXC-002", domain.RiskLow)))

	exists, err := f.store.ExistsIdentifier(ctx, "EXC-001")
	require.NoError(t, err)
	assert.True(t, exists)

	res, err := f.store.List(ctx, domain.ExceptionFilter{RiskLevel: domain.RiskHigh})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "e1", res.Items[0].ID)

	critical := domain.RiskCritical
	require.NoError(t, f.store.Update(ctx, "e2", domain.ExceptionUpdate{RiskLevel: &critical}))
	e, err := f.store.Get(ctx, "e2")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskCritical, e.RiskLevel)
	assert.Nil(t, e.ApprovedAt)

	require.NoError(t, f.store.Delete(ctx, "e2", "user-1"))
	_, err = f.store.Get(ctx, "e2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DecideAndExpire(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Create(ctx, exception("e1", "EXC-001", domain.RiskHigh)))
	require.NoError(t, f.store.Create(ctx, exception("e2", "EXC-002", domain.RiskLow)))

	end := base.AddDate(0, 1, 0)
	require.NoError(t, f.store.Decide(ctx, "e1", domain.ExceptionApproved, domain.ExceptionDecision{
		Approve: true, DecidedBy: "ciso", Notes: "time boxed", StartDate: &base, EndDate: &end,
	}, base))

	e, err := f.store.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, domain.ExceptionApproved, e.Status)
	assert.Equal(t, "ciso", e.ApprovedBy)
	assert.Equal(t, "time boxed", e.DecisionNotes)
	require.NotNil(t, e.EndDate)
	assert.True(t, e.EndDate.Equal(end))

	err = f.store.Decide(ctx, "e1", domain.ExceptionRejected, domain.ExceptionDecision{DecidedBy: "ciso"}, base)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.store.Decide(ctx, "e2", domain.ExceptionRejected, domain.ExceptionDecision{DecidedBy: "ciso"}, base))

	n, err := f.store.ExpireBefore(ctx, end.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = f.store.ExpireBefore(ctx, end.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	e, err = f.store.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, domain.ExceptionExpired, e.Status)
}
