package frameworks

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/controls"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/frameworks"
)

type BulkMappingRequest struct {
	RequirementIDs []string
	CoverageLevel  domain.CoverageLevel
	MappingNotes   string
	MappedBy       string
}

type Service interface {
	Create(ctx context.Context, f *domain.Framework) (*domain.Framework, error)
	Get(ctx context.Context, id string) (*domain.Framework, error)
	List(ctx context.Context, filter domain.FrameworkFilter) (domain.ListResult[domain.Framework], error)
	Update(ctx context.Context, id string, u domain.FrameworkUpdate) (*domain.Framework, error)
	Delete(ctx context.Context, id, deletedBy string) error

	CreateRequirement(ctx context.Context, r *domain.FrameworkRequirement) (*domain.FrameworkRequirement, error)
	ListRequirements(ctx context.Context, frameworkID string) ([]domain.FrameworkRequirement, error)
	DeleteRequirement(ctx context.Context, frameworkID, requirementID string) error

	MapControl(ctx context.Context, m *domain.FrameworkControlMapping) (*domain.FrameworkControlMapping, error)
	MapControlBulk(ctx context.Context, controlID string, req BulkMappingRequest) ([]domain.FrameworkControlMapping, error)
	UpdateMapping(ctx context.Context, id string, coverage *domain.CoverageLevel, notes *string) (*domain.FrameworkControlMapping, error)
	DeleteMapping(ctx context.Context, id string) error
	ControlMappings(ctx context.Context, controlID string) ([]domain.FrameworkControlMapping, error)

	CoverageMatrix(ctx context.Context, frameworkID string) (domain.CoverageMatrix, error)
}

type service struct {
	store    frameworks.Store
	controls controls.Store
}

func NewService(store frameworks.Store, controlStore controls.Store) Service {
	return &service{store: store, controls: controlStore}
}

func (s *service) Create(ctx context.Context, f *domain.Framework) (*domain.Framework, error) {
	exists, err := s.store.ExistsCode(ctx, f.FrameworkCode)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewConflict("framework %s already exists", f.FrameworkCode)
	}

	now := domain.Now()
	f.ID = uuid.NewString()
	if f.Status == "" {
		f.Status = domain.FrameworkActive
	}
	f.UpdatedBy = f.CreatedBy
	f.CreatedAt, f.UpdatedAt = now, now

	if err := s.store.Create(ctx, f); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, f.ID)
}

func (s *service) Get(ctx context.Context, id string) (*domain.Framework, error) {
	return s.store.Get(ctx, id)
}

func (s *service) List(ctx context.Context, filter domain.FrameworkFilter) (domain.ListResult[domain.Framework], error) {
	return s.store.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, u domain.FrameworkUpdate) (*domain.Framework, error) {
	if err := s.store.Update(ctx, id, u); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id, deletedBy string) error {
	return s.store.Delete(ctx, id, deletedBy)
}

func (s *service) CreateRequirement(ctx context.Context, r *domain.FrameworkRequirement) (*domain.FrameworkRequirement, error) {
	if _, err := s.store.Get(ctx, r.FrameworkID); err != nil {
		return nil, err
	}
	exists, err := s.store.ExistsRequirement(ctx, r.FrameworkID, r.RequirementIdentifier)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewConflict("requirement %s already exists in this framework", r.RequirementIdentifier)
	}

	now := domain.Now()
	r.ID = uuid.NewString()
	r.CreatedAt, r.UpdatedAt = now, now
	if err := s.store.CreateRequirement(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) ListRequirements(ctx context.Context, frameworkID string) ([]domain.FrameworkRequirement, error) {
	if _, err := s.store.Get(ctx, frameworkID); err != nil {
		return nil, err
	}
	return s.store.ListRequirements(ctx, frameworkID)
}

func (s *service) DeleteRequirement(ctx context.Context, frameworkID, requirementID string) error {
	return s.store.DeleteRequirement(ctx, frameworkID, requirementID)
}

func (s *service) MapControl(ctx context.Context, m *domain.FrameworkControlMapping) (*domain.FrameworkControlMapping, error) {
	if _, err := s.controls.Get(ctx, m.ControlID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetRequirement(ctx, m.RequirementID); err != nil {
		return nil, err
	}
	mapped, err := s.store.MappedRequirementIDs(ctx, m.ControlID)
	if err != nil {
		return nil, err
	}
	if mapped[m.RequirementID] {
		return nil, domain.NewConflict("control is already mapped to requirement %s", m.RequirementID)
	}

	s.prepare(m)
	if err := s.store.CreateMapping(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// MapControlBulk maps the control to each requirement not already mapped.
func (s *service) MapControlBulk(
	ctx context.Context,
	controlID string,
	req BulkMappingRequest,
) ([]domain.FrameworkControlMapping, error) {
	if _, err := s.controls.Get(ctx, controlID); err != nil {
		return nil, err
	}
	mapped, err := s.store.MappedRequirementIDs(ctx, controlID)
	if err != nil {
		return nil, err
	}

	created := []domain.FrameworkControlMapping{}
	for _, requirementID := range req.RequirementIDs {
		if mapped[requirementID] {
			continue
		}
		if _, err := s.store.GetRequirement(ctx, requirementID); err != nil {
			return created, err
		}
		m := domain.FrameworkControlMapping{
			RequirementID: requirementID,
			ControlID:     controlID,
			CoverageLevel: req.CoverageLevel,
			MappingNotes:  req.MappingNotes,
			MappedBy:      req.MappedBy,
		}
		s.prepare(&m)
		if err := s.store.CreateMapping(ctx, &m); err != nil {
			return created, err
		}
		mapped[requirementID] = true
		created = append(created, m)
	}

	zerolog.Ctx(ctx).Info().
		Str("control_id", controlID).
		Int("requested", len(req.RequirementIDs)).
		Int("created", len(created)).
		Msg("control mapped to framework requirements")
	return created, nil
}

func (s *service) prepare(m *domain.FrameworkControlMapping) {
	now := domain.Now()
	m.ID = uuid.NewString()
	if m.CoverageLevel == "" {
		m.CoverageLevel = domain.CoverageFull
	}
	m.CreatedAt, m.UpdatedAt = now, now
}

func (s *service) UpdateMapping(
	ctx context.Context,
	id string,
	coverage *domain.CoverageLevel,
	notes *string,
) (*domain.FrameworkControlMapping, error) {
	if err := s.store.UpdateMapping(ctx, id, coverage, notes); err != nil {
		return nil, err
	}
	return s.store.GetMapping(ctx, id)
}

func (s *service) DeleteMapping(ctx context.Context, id string) error {
	return s.store.DeleteMapping(ctx, id)
}

func (s *service) ControlMappings(ctx context.Context, controlID string) ([]domain.FrameworkControlMapping, error) {
	return s.store.ListMappingsForControl(ctx, controlID)
}

func (s *service) CoverageMatrix(ctx context.Context, frameworkID string) (domain.CoverageMatrix, error) {
	fw, err := s.store.Get(ctx, frameworkID)
	if err != nil {
		return domain.CoverageMatrix{}, err
	}
	requirements, err := s.store.ListRequirements(ctx, frameworkID)
	if err != nil {
		return domain.CoverageMatrix{}, err
	}
	mappings, err := s.store.RequirementMappings(ctx, frameworkID)
	if err != nil {
		return domain.CoverageMatrix{}, err
	}
	return BuildCoverageMatrix(*fw, requirements, mappings), nil
}
