package policies

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/policies"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/sqldbtest"
)

type mockTrigger struct{ mock.Mock }

func (m *mockTrigger) Trigger(
	ctx context.Context,
	entityType domain.EntityType,
	entityID string,
	trigger domain.WorkflowTrigger,
	data map[string]any,
) {
	m.Called(entityType, entityID, trigger, data)
}

func setupService(t *testing.T) (*service, *mockTrigger) {
	store, err := policies.NewStore(sqldbtest.NewDB(t))
	require.NoError(t, err)

	trigger := new(mockTrigger)
	svc := NewService(store, trigger).(*service)
	return svc, trigger
}

func TestService_Lifecycle(t *testing.T) {
	svc, trigger := setupService(t)
	ctx := context.Background()

	trigger.On("Trigger", domain.EntityPolicy, mock.Anything, domain.TriggerOnCreate, mock.Anything).Once()
	p, err := svc.Create(ctx, &domain.Policy{
		Title:      "Acceptable use",
		PolicyType: "security",
		Ownership:  domain.Ownership{CreatedBy: "admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyDraft, p.Status)
	assert.Equal(t, "1.0", p.Version)

	_, err = svc.Acknowledge(ctx, p.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalid)

	trigger.On("Trigger", domain.EntityPolicy, p.ID, domain.TriggerOnStatusChange, map[string]any{
		"status":          "published",
		"previous_status": "draft",
		"policy_type":     "security",
	}).Once()
	published := domain.PolicyPublished
	got, err := svc.Update(ctx, p.ID, domain.PolicyUpdate{Status: &published, UpdatedBy: "officer"})
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyPublished, got.Status)

	first := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }
	ack, err := svc.Acknowledge(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.True(t, first.Equal(ack.AcknowledgedAt))

	svc.now = func() time.Time { return first.Add(time.Hour) }
	again, err := svc.Acknowledge(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.True(t, first.Equal(again.AcknowledgedAt))

	acks, err := svc.Acknowledgments(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, acks, 1)

	title := "Acceptable use of IT"
	_, err = svc.Update(ctx, p.ID, domain.PolicyUpdate{Title: &title})
	require.NoError(t, err)
	trigger.AssertExpectations(t)

	require.NoError(t, svc.Delete(ctx, p.ID, "admin"))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Acknowledge(ctx, p.ID, "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
