package sops

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/sops"
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

var now = time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store   sops.Store
	trigger *mockTrigger
	svc     *service
}

func setupFixture(t *testing.T) *fixture {
	db := sqldbtest.NewDB(t)
	store, err := sops.NewStore(db)
	require.NoError(t, err)

	trigger := new(mockTrigger)
	trigger.On("Trigger", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()

	svc := NewService(store, db, trigger).(*service)
	svc.now = func() time.Time { return now }
	return &fixture{store: store, trigger: trigger, svc: svc}
}

func (f *fixture) create(t *testing.T, identifier string) *domain.SOP {
	sop, err := f.svc.Create(context.Background(), &domain.SOP{
		SOPIdentifier: identifier,
		Title:         "Incident handling",
		Category:      "security",
		Content:       "Step one",
		Ownership:     domain.Ownership{CreatedBy: "author"},
	})
	require.NoError(t, err)
	return sop
}

func TestService_Create(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	sop := f.create(t, "SOP-001")
	assert.Equal(t, "1.0", sop.Version)
	assert.Equal(t, 1, sop.VersionNumber)
	assert.Equal(t, domain.SOPDraft, sop.Status)
	f.trigger.AssertCalled(t, "Trigger", domain.EntitySOP, sop.ID, domain.TriggerOnCreate, mock.Anything)

	versions, err := f.svc.Versions(ctx, sop.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "Initial version", versions[0].ChangeSummary)

	_, err = f.svc.Create(ctx, &domain.SOP{SOPIdentifier: "SOP-001", Title: "dup"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestService_Update(t *testing.T) {
	t.Run("content change creates version", func(t *testing.T) {
		f := setupFixture(t)
		ctx := context.Background()
		sop := f.create(t, "SOP-001")

		content := "Step one, then two"
		got, err := f.svc.Update(ctx, sop.ID, domain.SOPUpdate{
			Content:       &content,
			ChangeSummary: "added step two",
			UpdatedBy:     "editor",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, got.VersionNumber)
		assert.Equal(t, "2.0", got.Version)

		custom := "2.1"
		content = "Step one, two, three"
		got, err = f.svc.Update(ctx, sop.ID, domain.SOPUpdate{Content: &content, Version: &custom})
		require.NoError(t, err)
		assert.Equal(t, 3, got.VersionNumber)
		assert.Equal(t, "2.1", got.Version)

		versions, err := f.svc.Versions(ctx, sop.ID)
		require.NoError(t, err)
		require.Len(t, versions, 3)
		assert.Equal(t, 3, versions[0].VersionNumber)
		assert.Equal(t, "added step two", versions[1].ChangeSummary)
	})

	t.Run("same content keeps version", func(t *testing.T) {
		f := setupFixture(t)
		sop := f.create(t, "SOP-001")

		content := sop.Content
		got, err := f.svc.Update(context.Background(), sop.ID, domain.SOPUpdate{Content: &content})
		require.NoError(t, err)
		assert.Equal(t, 1, got.VersionNumber)
	})

	t.Run("status change triggers workflows", func(t *testing.T) {
		f := setupFixture(t)
		sop := f.create(t, "SOP-001")

		status := domain.SOPInReview
		_, err := f.svc.Update(context.Background(), sop.ID, domain.SOPUpdate{Status: &status})
		require.NoError(t, err)
		f.trigger.AssertCalled(t, "Trigger", domain.EntitySOP, sop.ID, domain.TriggerOnStatusChange,
			map[string]any{"status": "in_review", "previous_status": "draft", "category": "security"})
	})
}

func TestService_Publish(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sop := f.create(t, "SOP-001")

	_, err := f.svc.Publish(ctx, sop.ID, "officer", []string{"u1"})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	approved := domain.SOPApproved
	_, err = f.svc.Update(ctx, sop.ID, domain.SOPUpdate{Status: &approved})
	require.NoError(t, err)

	got, err := f.svc.Publish(ctx, sop.ID, "officer", []string{"u1", "u2", "u1"})
	require.NoError(t, err)
	assert.Equal(t, domain.SOPPublished, got.Status)
	require.NotNil(t, got.PublishedDate)

	assigned, err := f.svc.Assigned(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "officer", assigned[0].Assignment.AssignedBy)

	_, err = f.svc.Acknowledge(ctx, sop.ID, "stranger")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	a, err := f.svc.Acknowledge(ctx, sop.ID, "u1")
	require.NoError(t, err)
	require.NotNil(t, a.AcknowledgedAt)

	stats, err := f.svc.PublicationStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PublicationStats{
		TotalPublished:     1,
		PublishedThisMonth: 1,
		PublishedThisYear:  1,
		TotalAssignments:   2,
		Acknowledged:       1,
		AcknowledgmentRate: 50,
	}, stats)
}

func TestService_Steps(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sop := f.create(t, "SOP-001")

	first, err := f.svc.CreateStep(ctx, &domain.SOPStep{SOPID: sop.ID, Title: "Detect"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.StepNumber)

	second, err := f.svc.CreateStep(ctx, &domain.SOPStep{SOPID: sop.ID, Title: "Contain"})
	require.NoError(t, err)
	assert.Equal(t, 2, second.StepNumber)

	_, err = f.svc.CreateStep(ctx, &domain.SOPStep{SOPID: sop.ID, StepNumber: 2, Title: "dup"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.svc.CreateStep(ctx, &domain.SOPStep{SOPID: "missing", Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	one := 1
	_, err = f.svc.UpdateStep(ctx, sop.ID, second.ID, domain.SOPStepUpdate{StepNumber: &one})
	assert.ErrorIs(t, err, domain.ErrConflict)

	five := 5
	critical := true
	got, err := f.svc.UpdateStep(ctx, sop.ID, second.ID, domain.SOPStepUpdate{StepNumber: &five, IsCritical: &critical})
	require.NoError(t, err)
	assert.Equal(t, 5, got.StepNumber)
	assert.True(t, got.IsCritical)

	require.NoError(t, f.svc.DeleteStep(ctx, sop.ID, first.ID))
	steps, err := f.svc.Steps(ctx, sop.ID)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "Contain", steps[0].Title)
}

func TestService_RunDueSchedules(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sop := f.create(t, "SOP-001")

	overdue, err := f.svc.CreateSchedule(ctx, &domain.SOPSchedule{
		SOPID:             sop.ID,
		Frequency:         domain.FrequencyWeekly,
		NextExecutionDate: now.AddDate(0, 0, -10),
		AssignedUserID:    "operator",
		IsActive:          true,
	})
	require.NoError(t, err)

	future, err := f.svc.CreateSchedule(ctx, &domain.SOPSchedule{
		SOPID:     sop.ID,
		Frequency: domain.FrequencyMonthly,
		IsActive:  true,
	})
	require.NoError(t, err)
	assert.True(t, now.AddDate(0, 1, 0).Equal(future.NextExecutionDate))

	ran, err := f.svc.RunDueSchedules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ran)

	schedules, err := f.svc.Schedules(ctx, sop.ID)
	require.NoError(t, err)
	for _, sch := range schedules {
		if sch.ID == overdue.ID {
			assert.True(t, now.AddDate(0, 0, 4).Equal(sch.NextExecutionDate), sch.NextExecutionDate)
		}
	}

	ran, err = f.svc.RunDueSchedules(ctx)
	require.NoError(t, err)
	assert.Zero(t, ran)

	require.NoError(t, f.svc.DeleteSchedule(ctx, sop.ID, future.ID))
}

func TestService_Feedback(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sop := f.create(t, "SOP-001")

	for _, rating := range []int{5, 4, 4} {
		_, err := f.svc.CreateFeedback(ctx, &domain.SOPFeedback{SOPID: sop.ID, UserID: "u1", Rating: rating})
		require.NoError(t, err)
	}
	_, err := f.svc.CreateFeedback(ctx, &domain.SOPFeedback{SOPID: sop.ID, Rating: 6})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	summary, err := f.svc.FeedbackSummary(ctx, sop.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, 4.33, summary.AverageRating)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 2, 5: 1}, summary.Distribution)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize("s1", nil)
	assert.Zero(t, s.Count)
	assert.Zero(t, s.AverageRating)
	assert.Len(t, s.Distribution, 5)
}
