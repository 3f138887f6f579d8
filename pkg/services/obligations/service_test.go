package obligations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/obligations"
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

var now = time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*service, *mockTrigger) {
	store, err := obligations.NewStore(sqldbtest.NewDB(t))
	require.NoError(t, err)

	trigger := new(mockTrigger)
	svc := NewService(store, trigger).(*service)
	svc.now = func() time.Time { return now }
	return svc, trigger
}

func TestService_CreateAndUpdate(t *testing.T) {
	svc, trigger := setupService(t)
	ctx := context.Background()

	trigger.On("Trigger", domain.EntityObligation, mock.Anything, domain.TriggerOnCreate, mock.Anything).Once()
	o, err := svc.Create(ctx, &domain.Obligation{
		ObligationIdentifier: "OBL-001",
		Title:                "Annual GDPR DPIA review",
		Source:               "GDPR",
		Ownership:            domain.Ownership{CreatedBy: "admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ObligationNotStarted, o.Status)
	assert.Equal(t, domain.PriorityMedium, o.Priority)
	assert.Equal(t, "admin", o.UpdatedBy)

	_, err = svc.Create(ctx, &domain.Obligation{ObligationIdentifier: "OBL-001", Title: "dup"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	title := "GDPR DPIA review"
	got, err := svc.Update(ctx, o.ID, domain.ObligationUpdate{Title: &title, UpdatedBy: "owner"})
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)

	trigger.On("Trigger", domain.EntityObligation, o.ID, domain.TriggerOnStatusChange, map[string]any{
		"status":          "met",
		"previous_status": "not_started",
		"priority":        "medium",
	}).Once()
	met := domain.ObligationMet
	got, err = svc.Update(ctx, o.ID, domain.ObligationUpdate{Status: &met, UpdatedBy: "owner"})
	require.NoError(t, err)
	assert.Equal(t, domain.ObligationMet, got.Status)

	trigger.AssertExpectations(t)

	require.NoError(t, svc.Delete(ctx, o.ID, "admin"))
	_, err = svc.Get(ctx, o.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Stats(t *testing.T) {
	svc, trigger := setupService(t)
	ctx := context.Background()
	trigger.On("Trigger", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()

	past := now.AddDate(0, 0, -3)
	future := now.AddDate(0, 1, 0)
	fixtures := []domain.Obligation{
		{ObligationIdentifier: "OBL-1", Title: "late", DueDate: &past, Priority: domain.PriorityHigh},
		{ObligationIdentifier: "OBL-2", Title: "late but met", DueDate: &past, Status: domain.ObligationMet},
		{ObligationIdentifier: "OBL-3", Title: "upcoming", DueDate: &future},
		{ObligationIdentifier: "OBL-4", Title: "no due date", Status: domain.ObligationNotApplicable},
	}
	for i := range fixtures {
		_, err := svc.Create(ctx, &fixtures[i])
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, map[string]int{"not_started": 2, "met": 1, "not_applicable": 1}, stats.ByStatus)
	assert.Equal(t, map[string]int{"high": 1, "medium": 3}, stats.ByPriority)
}
