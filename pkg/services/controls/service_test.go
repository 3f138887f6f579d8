package controls

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/controls"
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

type fixture struct {
	db      *sqldb.DB
	trigger *mockTrigger
	svc     Service
}

func setupFixture(t *testing.T) *fixture {
	db := sqldbtest.NewDB(t)
	store, err := controls.NewStore(db)
	require.NoError(t, err)

	trigger := new(mockTrigger)
	return &fixture{
		db:      db,
		trigger: trigger,
		svc:     NewService(store, trigger),
	}
}

func (f *fixture) create(t *testing.T, identifier, title string) *domain.UnifiedControl {
	c, err := f.svc.Create(context.Background(), &domain.UnifiedControl{
		ControlIdentifier: identifier,
		Title:             title,
		ControlType:       domain.ControlPreventive,
		Complexity:        domain.LevelMedium,
		Ownership:         domain.Ownership{CreatedBy: "admin"},
	})
	require.NoError(t, err)
	return c
}

func TestService_Create(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	c := f.create(t, "AC-1", "Access policy")
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, domain.ControlDraft, c.Status)
	assert.Equal(t, domain.ImplNotImplemented, c.ImplementationStatus)
	assert.Equal(t, "admin", c.UpdatedBy)

	_, err := f.svc.Create(ctx, &domain.UnifiedControl{ControlIdentifier: "AC-1", Title: "dup"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestService_Update(t *testing.T) {
	t.Run("implemented triggers workflows", func(t *testing.T) {
		f := setupFixture(t)
		c := f.create(t, "AC-1", "Access policy")

		f.trigger.On("Trigger", domain.EntityControl, c.ID, domain.TriggerOnStatusChange,
			mock.MatchedBy(func(data map[string]any) bool {
				return data["implementation_status"] == "implemented" && data["previous_status"] == "not_implemented"
			}),
		).Once()

		implemented := domain.ImplImplemented
		got, err := f.svc.Update(context.Background(), c.ID, domain.ControlUpdate{
			ImplementationStatus: &implemented,
			UpdatedBy:            "officer",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ImplImplemented, got.ImplementationStatus)
		assert.Equal(t, "officer", got.UpdatedBy)
		f.trigger.AssertExpectations(t)
	})

	t.Run("other changes do not trigger", func(t *testing.T) {
		f := setupFixture(t)
		c := f.create(t, "AC-1", "Access policy")

		title := "Access control policy"
		got, err := f.svc.Update(context.Background(), c.ID, domain.ControlUpdate{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, got.Title)
		f.trigger.AssertNotCalled(t, "Trigger", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing control", func(t *testing.T) {
		f := setupFixture(t)
		_, err := f.svc.Update(context.Background(), "missing", domain.ControlUpdate{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestService_Related(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	a := f.create(t, "AC-1", "Access policy")
	f.create(t, "AC-2", "Account review")

	related, err := f.svc.Related(ctx, a.ID, 0)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "AC-2", related[0].ControlIdentifier)

	_, err = f.svc.Related(ctx, "missing", 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_ExportCSV(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	_, err := f.db.ExecContext(ctx, `INSERT INTO control_domains (id, name, code, created_at, updated_at)
		VALUES ('d1', 'Identity', 'IAM', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, &domain.UnifiedControl{
		ControlIdentifier: "AC-1",
		Title:             `Access "least" privilege`,
		DomainID:          "d1",
		ControlType:       domain.ControlTechnical,
		Complexity:        domain.LevelHigh,
		CostImpact:        domain.LevelLow,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportCSV(ctx, domain.ControlFilter{}, &buf))

	want := `"Control ID","Title","Domain","Type","Complexity","Cost Impact","Status","Implementation Status"` + "\n" +
		`"AC-1","Access ""least"" privilege","Identity","technical","high","low","draft","not_implemented"` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestService_Import(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.create(t, "AC-1", "Access policy")

	result, err := f.svc.Import(ctx, []domain.UnifiedControl{
		{ControlIdentifier: "AC-1", Title: "existing"},
		{ControlIdentifier: "AC-2", Title: "Account review"},
		{ControlIdentifier: "", Title: "no identifier"},
		{ControlIdentifier: "AC-3", Title: "Audit logging"},
	}, "importer")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)

	list, err := f.svc.List(ctx, domain.ControlFilter{Search: "audit"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "importer", list.Items[0].CreatedBy)
}
