package policies

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/policies"
)

// WorkflowTrigger starts the workflows listening for an entity event.
type WorkflowTrigger interface {
	Trigger(ctx context.Context, entityType domain.EntityType, entityID string, trigger domain.WorkflowTrigger, data map[string]any)
}

type Service interface {
	Create(ctx context.Context, p *domain.Policy) (*domain.Policy, error)
	Get(ctx context.Context, id string) (*domain.Policy, error)
	List(ctx context.Context, filter domain.PolicyFilter) (domain.ListResult[domain.Policy], error)
	Update(ctx context.Context, id string, u domain.PolicyUpdate) (*domain.Policy, error)
	Delete(ctx context.Context, id, deletedBy string) error
	Acknowledge(ctx context.Context, id, userID string) (*domain.PolicyAcknowledgment, error)
	Acknowledgments(ctx context.Context, id string) ([]domain.PolicyAcknowledgment, error)
}

type service struct {
	store    policies.Store
	workflow WorkflowTrigger
	now      func() time.Time
}

func NewService(store policies.Store, workflow WorkflowTrigger) Service {
	return &service{store: store, workflow: workflow, now: domain.Now}
}

func (s *service) Create(ctx context.Context, p *domain.Policy) (*domain.Policy, error) {
	now := s.now()
	p.ID = uuid.NewString()
	if p.Status == "" {
		p.Status = domain.PolicyDraft
	}
	if p.Version == "" {
		p.Version = "1.0"
	}
	p.UpdatedBy = p.CreatedBy
	p.CreatedAt, p.UpdatedAt = now, now

	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	if s.workflow != nil {
		s.workflow.Trigger(ctx, domain.EntityPolicy, p.ID, domain.TriggerOnCreate, map[string]any{
			"status":      string(p.Status),
			"policy_type": p.PolicyType,
		})
	}
	return s.store.Get(ctx, p.ID)
}

func (s *service) Get(ctx context.Context, id string) (*domain.Policy, error) {
	return s.store.Get(ctx, id)
}

func (s *service) List(ctx context.Context, filter domain.PolicyFilter) (domain.ListResult[domain.Policy], error) {
	return s.store.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, u domain.PolicyUpdate) (*domain.Policy, error) {
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
		s.workflow.Trigger(ctx, domain.EntityPolicy, id, domain.TriggerOnStatusChange, map[string]any{
			"status":          string(after.Status),
			"previous_status": string(before.Status),
			"policy_type":     after.PolicyType,
		})
	}
	return after, nil
}

func (s *service) Delete(ctx context.Context, id, deletedBy string) error {
	return s.store.Delete(ctx, id, deletedBy)
}

// Acknowledge records that userID has read a published policy. Repeated calls
// return the first acknowledgment.
func (s *service) Acknowledge(ctx context.Context, id, userID string) (*domain.PolicyAcknowledgment, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PolicyPublished {
		return nil, domain.NewValidation("status", "only published policies can be acknowledged")
	}
	return s.store.Acknowledge(ctx, &domain.PolicyAcknowledgment{
		PolicyID:       id,
		UserID:         userID,
		AcknowledgedAt: s.now(),
	})
}

func (s *service) Acknowledgments(ctx context.Context, id string) ([]domain.PolicyAcknowledgment, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListAcknowledgments(ctx, id)
}
