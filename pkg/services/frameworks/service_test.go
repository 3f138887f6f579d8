package frameworks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/controls"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/frameworks"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/sqldbtest"
)

type fixture struct {
	controls controls.Store
	svc      Service
}

func setupFixture(t *testing.T) *fixture {
	db := sqldbtest.NewDB(t)
	store, err := frameworks.NewStore(db)
	require.NoError(t, err)
	controlStore, err := controls.NewStore(db)
	require.NoError(t, err)

	return &fixture{
		controls: controlStore,
		svc:      NewService(store, controlStore),
	}
}

func (f *fixture) control(t *testing.T, id string, status domain.ImplementationStatus) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.controls.Create(context.Background(), &domain.UnifiedControl{
		ID:                   id,
		ControlIdentifier:    "CTL-" + id,
		Title:                "Control " + id,
		Status:               domain.ControlActive,
		ImplementationStatus: status,
		Ownership:            domain.Ownership{CreatedAt: now, UpdatedAt: now},
	}))
}

func TestService_Frameworks(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	fw, err := f.svc.Create(ctx, &domain.Framework{
		FrameworkCode: "ISO27001",
		Name:          "ISO/IEC 27001",
		Version:       "2022",
		Ownership:     domain.Ownership{CreatedBy: "admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FrameworkActive, fw.Status)

	_, err = f.svc.Create(ctx, &domain.Framework{FrameworkCode: "ISO27001", Name: "dup"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	name := "ISO 27001"
	updated, err := f.svc.Update(ctx, fw.ID, domain.FrameworkUpdate{Name: &name, UpdatedBy: "officer"})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	list, err := f.svc.List(ctx, domain.FrameworkFilter{Search: "27001"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	require.NoError(t, f.svc.Delete(ctx, fw.ID, "admin"))
	_, err = f.svc.Get(ctx, fw.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Mappings(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	fw, err := f.svc.Create(ctx, &domain.Framework{FrameworkCode: "SOC2", Name: "SOC 2"})
	require.NoError(t, err)

	r1, err := f.svc.CreateRequirement(ctx, &domain.FrameworkRequirement{
		FrameworkID:           fw.ID,
		RequirementIdentifier: "CC6.1",
		RequirementText:       "Logical access",
		Domain:                "Access",
		DisplayOrder:          1,
	})
	require.NoError(t, err)
	r2, err := f.svc.CreateRequirement(ctx, &domain.FrameworkRequirement{
		FrameworkID:           fw.ID,
		RequirementIdentifier: "CC7.1",
		RequirementText:       "Monitoring",
		DisplayOrder:          2,
	})
	require.NoError(t, err)

	_, err = f.svc.CreateRequirement(ctx, &domain.FrameworkRequirement{
		FrameworkID: fw.ID, RequirementIdentifier: "CC6.1", RequirementText: "dup",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.svc.CreateRequirement(ctx, &domain.FrameworkRequirement{FrameworkID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.control(t, "c1", domain.ImplImplemented)

	m, err := f.svc.MapControl(ctx, &domain.FrameworkControlMapping{ControlID: "c1", RequirementID: r1.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.CoverageFull, m.CoverageLevel)

	_, err = f.svc.MapControl(ctx, &domain.FrameworkControlMapping{ControlID: "c1", RequirementID: r1.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.svc.MapControl(ctx, &domain.FrameworkControlMapping{ControlID: "missing", RequirementID: r1.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := f.svc.MapControlBulk(ctx, "c1", BulkMappingRequest{
		RequirementIDs: []string{r1.ID, r2.ID},
		CoverageLevel:  domain.CoveragePartial,
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, r2.ID, created[0].RequirementID)

	mappings, err := f.svc.ControlMappings(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, mappings, 2)

	matrix, err := f.svc.CoverageMatrix(ctx, fw.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, matrix.Met)
	assert.Equal(t, 1, matrix.PartiallyMet)
	assert.Equal(t, 50, matrix.OverallCompliance)

	na := domain.CoverageNotApplicable
	notes := "handled by provider"
	got, err := f.svc.UpdateMapping(ctx, created[0].ID, &na, &notes)
	require.NoError(t, err)
	assert.Equal(t, domain.CoverageNotApplicable, got.CoverageLevel)
	assert.Equal(t, notes, got.MappingNotes)

	matrix, err = f.svc.CoverageMatrix(ctx, fw.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, matrix.OverallCompliance)

	require.NoError(t, f.svc.DeleteMapping(ctx, m.ID))
	require.NoError(t, f.svc.DeleteRequirement(ctx, fw.ID, r2.ID))

	reqs, err := f.svc.ListRequirements(ctx, fw.ID)
	require.NoError(t, err)
	assert.Len(t, reqs, 1)
}
