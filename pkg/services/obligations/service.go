package obligations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/obligations"
)

// WorkflowTrigger starts the workflows listening for an entity event.
type WorkflowTrigger interface {
	Trigger(ctx context.Context, entityType domain.EntityType, entityID string, trigger domain.WorkflowTrigger, data map[string]any)
}

type Service interface {
	Create(ctx context.Context, o *domain.Obligation) (*domain.Obligation, error)
	Get(ctx context.Context, id string) (*domain.Obligation, error)
	List(ctx context.Context, filter domain.ObligationFilter) (domain.ListResult[domain.Obligation], error)
	Update(ctx context.Context, id string, u domain.ObligationUpdate) (*domain.Obligation, error)
	Delete(ctx context.Context, id, deletedBy string) error
	Stats(ctx context.Context) (domain.ObligationStats, error)
}

type service struct {
	store    obligations.Store
	workflow WorkflowTrigger
	now      func() time.Time
}

func NewService(store obligations.Store, workflow WorkflowTrigger) Service {
	return &service{store: store, workflow: workflow, now: domain.Now}
}

func (s *service) Create(ctx context.Context, o *domain.Obligation) (*domain.Obligation, error) {
	exists, err := s.store.ExistsIdentifier(ctx, o.ObligationIdentifier)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewConflict("obligation %s already exists", o.ObligationIdentifier)
	}

	now := s.now()
	o.ID = uuid.NewString()
	if o.Status == "" {
		o.Status = domain.ObligationNotStarted
	}
	if o.Priority == "" {
		o.Priority = domain.PriorityMedium
	}
	o.UpdatedBy = o.CreatedBy
	o.CreatedAt, o.UpdatedAt = now, now

	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}
	if s.workflow != nil {
		s.workflow.Trigger(ctx, domain.EntityObligation, o.ID, domain.TriggerOnCreate, map[string]any{
			"status":   string(o.Status),
			"priority": string(o.Priority),
		})
	}
	return s.store.Get(ctx, o.ID)
}

func (s *service) Get(ctx context.Context, id string) (*domain.Obligation, error) {
	return s.store.Get(ctx, id)
}

func (s *service) List(ctx context.Context, filter domain.ObligationFilter) (domain.ListResult[domain.Obligation], error) {
	return s.store.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, u domain.ObligationUpdate) (*domain.Obligation, error) {
	before, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, id, u); err != nil {
		return nil, err
	}
	after, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.workflow != nil && before.Status != after.Status {
		s.workflow.Trigger(ctx, domain.EntityObligation, id, domain.TriggerOnStatusChange, map[string]any{
			"status":          string(after.Status),
			"previous_status": string(before.Status),
			"priority":        string(after.Priority),
		})
	}
	return after, nil
}

func (s *service) Delete(ctx context.Context, id, deletedBy string) error {
	return s.store.Delete(ctx, id, deletedBy)
}

// Stats counts obligations by status and priority. Overdue obligations are
// those past their due date that are neither met nor not applicable.
func (s *service) Stats(ctx context.Context) (domain.ObligationStats, error) {
	return s.store.Stats(ctx, s.now())
}
