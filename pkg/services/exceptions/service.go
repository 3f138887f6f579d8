package exceptions

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/exceptions"
)

// WorkflowTrigger starts the workflows listening for an entity event.
type WorkflowTrigger interface {
	Trigger(ctx context.Context, entityType domain.EntityType, entityID string, trigger domain.WorkflowTrigger, data map[string]any)
}

type Service interface {
	Create(ctx context.Context, e *domain.PolicyException) (*domain.PolicyException, error)
	Get(ctx context.Context, id string) (*domain.PolicyException, error)
	List(ctx context.Context, filter domain.ExceptionFilter) (domain.ListResult[domain.PolicyException], error)
	Update(ctx context.Context, id string, u domain.ExceptionUpdate) (*domain.PolicyException, error)
	Delete(ctx context.Context, id, deletedBy string) error
	Decide(ctx context.Context, id string, d domain.ExceptionDecision) (*domain.PolicyException, error)
	ExpireDue(ctx context.Context) (int, error)
}

type service struct {
	store    exceptions.Store
	workflow WorkflowTrigger
	now      func() time.Time
}

func NewService(store exceptions.Store, workflow WorkflowTrigger) Service {
	return &service{store: store, workflow: workflow, now: domain.Now}
}

func (s *service) Create(ctx context.Context, e *domain.PolicyException) (*domain.PolicyException, error) {
	if e.ExceptionIdentifier == "" {
		e.ExceptionIdentifier = "EXC-" + strings.ToUpper(uuid.NewString()[:8])
	}
	exists, err := s.store.ExistsIdentifier(ctx, e.ExceptionIdentifier)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewConflict("exception %s already exists", e.ExceptionIdentifier)
	}
	if err := checkWindow(e.StartDate, e.EndDate); err != nil {
		return nil, err
	}

	now := s.now()
	e.ID = uuid.NewString()
	e.Status = domain.ExceptionRequested
	if e.RiskLevel == "" {
		e.RiskLevel = domain.RiskMedium
	}
	if e.RequestedBy == "" {
		e.RequestedBy = e.CreatedBy
	}
	e.UpdatedBy = e.CreatedBy
	e.CreatedAt, e.UpdatedAt = now, now

	if err := s.store.Create(ctx, e); err != nil {
		return nil, err
	}
	if s.workflow != nil {
		s.workflow.Trigger(ctx, domain.EntityPolicyException, e.ID, domain.TriggerOnCreate, map[string]any{
			"status":     string(e.Status),
			"risk_level": string(e.RiskLevel),
			"policy_id":  e.PolicyID,
		})
	}
	return s.store.Get(ctx, e.ID)
}

func (s *service) Get(ctx context.Context, id string) (*domain.PolicyException, error) {
	return s.store.Get(ctx, id)
}

func (s *service) List(ctx context.Context, filter domain.ExceptionFilter) (domain.ListResult[domain.PolicyException], error) {
	return s.store.List(ctx, filter)
}

func (s *service) requested(ctx context.Context, id string) (*domain.PolicyException, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status != domain.ExceptionRequested {
		return nil, domain.NewValidation("status", "exception is no longer in requested state")
	}
	return e, nil
}

func (s *service) Update(ctx context.Context, id string, u domain.ExceptionUpdate) (*domain.PolicyException, error) {
	e, err := s.requested(ctx, id)
	if err != nil {
		return nil, err
	}
	start, end := e.StartDate, e.EndDate
	if u.StartDate != nil {
		start = u.StartDate
	}
	if u.EndDate != nil {
		end = u.EndDate
	}
	if err := checkWindow(start, end); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, id, u); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id, deletedBy string) error {
	if _, err := s.requested(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id, deletedBy)
}

// Decide approves or rejects a requested exception. Approval needs an end date
// after the start date; the start date defaults to the decision time.
func (s *service) Decide(ctx context.Context, id string, d domain.ExceptionDecision) (*domain.PolicyException, error) {
	e, err := s.requested(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status := domain.ExceptionRejected
	if d.Approve {
		status = domain.ExceptionApproved
		if d.StartDate == nil {
			d.StartDate = e.StartDate
		}
		if d.StartDate == nil {
			d.StartDate = &now
		}
		if d.EndDate == nil {
			d.EndDate = e.EndDate
		}
		if d.EndDate == nil {
			return nil, domain.NewValidation("end_date", "required to approve an exception")
		}
		if err := checkWindow(d.StartDate, d.EndDate); err != nil {
			return nil, err
		}
	}

	if err := s.store.Decide(ctx, id, status, d, now); err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().
		Str("exception_id", id).
		Str("status", string(status)).
		Str("decided_by", d.DecidedBy).
		Msg("policy exception decided")

	if s.workflow != nil {
		s.workflow.Trigger(ctx, domain.EntityPolicyException, id, domain.TriggerOnStatusChange, map[string]any{
			"status":          string(status),
			"previous_status": string(e.Status),
			"risk_level":      string(e.RiskLevel),
		})
	}
	return s.store.Get(ctx, id)
}

// ExpireDue marks approved exceptions whose end date has passed as expired.
func (s *service) ExpireDue(ctx context.Context) (int, error) {
	n, err := s.store.ExpireBefore(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		zerolog.Ctx(ctx).Info().Int("expired", n).Msg("policy exceptions expired")
	}
	return n, nil
}

func checkWindow(start, end *time.Time) error {
	if start != nil && end != nil && !end.After(*start) {
		return domain.NewValidation("end_date", "must be after start_date")
	}
	return nil
}
