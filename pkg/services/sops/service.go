package sops

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/sops"
)

const (
	initialVersion = "1.0"
	initialSummary = "Initial version"
)

// WorkflowTrigger starts the workflows listening for an entity event.
type WorkflowTrigger interface {
	Trigger(ctx context.Context, entityType domain.EntityType, entityID string, trigger domain.WorkflowTrigger, data map[string]any)
}

// Transactor runs fn inside one database transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service interface {
	Create(ctx context.Context, sop *domain.SOP) (*domain.SOP, error)
	Get(ctx context.Context, id string) (*domain.SOP, error)
	List(ctx context.Context, filter domain.SOPFilter) (domain.ListResult[domain.SOP], error)
	Update(ctx context.Context, id string, u domain.SOPUpdate) (*domain.SOP, error)
	Delete(ctx context.Context, id, deletedBy string) error

	Publish(ctx context.Context, id, publishedBy string, assignTo []string) (*domain.SOP, error)
	Assigned(ctx context.Context, userID string) ([]domain.AssignedSOP, error)
	Acknowledge(ctx context.Context, id, userID string) (*domain.SOPAssignment, error)
	PublicationStats(ctx context.Context) (domain.PublicationStats, error)
	Versions(ctx context.Context, id string) ([]domain.SOPVersion, error)

	CreateStep(ctx context.Context, step *domain.SOPStep) (*domain.SOPStep, error)
	Steps(ctx context.Context, sopID string) ([]domain.SOPStep, error)
	UpdateStep(ctx context.Context, sopID, stepID string, u domain.SOPStepUpdate) (*domain.SOPStep, error)
	DeleteStep(ctx context.Context, sopID, stepID string) error

	CreateSchedule(ctx context.Context, sch *domain.SOPSchedule) (*domain.SOPSchedule, error)
	Schedules(ctx context.Context, sopID string) ([]domain.SOPSchedule, error)
	DeleteSchedule(ctx context.Context, sopID, scheduleID string) error
	RunDueSchedules(ctx context.Context) (int, error)

	CreateFeedback(ctx context.Context, f *domain.SOPFeedback) (*domain.SOPFeedback, error)
	Feedback(ctx context.Context, sopID string) ([]domain.SOPFeedback, error)
	FeedbackSummary(ctx context.Context, sopID string) (domain.FeedbackSummary, error)
}

type service struct {
	store    sops.Store
	tx       Transactor
	workflow WorkflowTrigger
	now      func() time.Time
}

func NewService(store sops.Store, tx Transactor, workflow WorkflowTrigger) Service {
	return &service{
		store:    store,
		tx:       tx,
		workflow: workflow,
		now:      domain.Now,
	}
}

func (s *service) trigger(ctx context.Context, id string, trigger domain.WorkflowTrigger, data map[string]any) {
	if s.workflow == nil {
		return
	}
	s.workflow.Trigger(ctx, domain.EntitySOP, id, trigger, data)
}

func (s *service) Create(ctx context.Context, sop *domain.SOP) (*domain.SOP, error) {
	exists, err := s.store.ExistsIdentifier(ctx, sop.SOPIdentifier)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewConflict("sop %s already exists", sop.SOPIdentifier)
	}

	now := s.now()
	sop.ID = uuid.NewString()
	if sop.Version == "" {
		sop.Version = initialVersion
	}
	sop.VersionNumber = 1
	if sop.Status == "" {
		sop.Status = domain.SOPDraft
	}
	sop.UpdatedBy = sop.CreatedBy
	sop.CreatedAt, sop.UpdatedAt = now, now

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, sop); err != nil {
			return err
		}
		return s.store.CreateVersion(ctx, &domain.SOPVersion{
			ID:            uuid.NewString(),
			SOPID:         sop.ID,
			VersionNumber: sop.VersionNumber,
			Version:       sop.Version,
			Title:         sop.Title,
			Content:       sop.Content,
			ChangeSummary: initialSummary,
			CreatedBy:     sop.CreatedBy,
			CreatedAt:     now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.trigger(ctx, sop.ID, domain.TriggerOnCreate, map[string]any{
		"status":   string(sop.Status),
		"category": sop.Category,
	})
	return s.store.Get(ctx, sop.ID)
}

func (s *service) Get(ctx context.Context, id string) (*domain.SOP, error) {
	return s.store.Get(ctx, id)
}

func (s *service) List(ctx context.Context, filter domain.SOPFilter) (domain.ListResult[domain.SOP], error) {
	return s.store.List(ctx, filter)
}

// Update applies u and snapshots a new version whenever the content changes.
func (s *service) Update(ctx context.Context, id string, u domain.SOPUpdate) (*domain.SOP, error) {
	before, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	contentChanged := u.Content != nil && *u.Content != before.Content

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.store.Update(ctx, id, u); err != nil {
			return err
		}
		if !contentChanged {
			return nil
		}

		number := before.VersionNumber + 1
		version := fmt.Sprintf("%d.0", number)
		if u.Version != nil && *u.Version != "" && *u.Version != before.Version {
			version = *u.Version
		}
		if err := s.store.SetVersion(ctx, id, number, version); err != nil {
			return err
		}
		title := before.Title
		if u.Title != nil {
			title = *u.Title
		}
		return s.store.CreateVersion(ctx, &domain.SOPVersion{
			ID:            uuid.NewString(),
			SOPID:         id,
			VersionNumber: number,
			Version:       version,
			Title:         title,
			Content:       *u.Content,
			ChangeSummary: u.ChangeSummary,
			CreatedBy:     u.UpdatedBy,
			CreatedAt:     s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	after, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.trigger(ctx, id, domain.TriggerOnUpdate, map[string]any{
		"status":   string(after.Status),
		"category": after.Category,
	})
	if before.Status != after.Status {
		zerolog.Ctx(ctx).Info().
			Str("sop_id", id).
			Str("from", string(before.Status)).
			Str("to", string(after.Status)).
			Msg("sop status changed")
		s.trigger(ctx, id, domain.TriggerOnStatusChange, map[string]any{
			"status":          string(after.Status),
			"previous_status": string(before.Status),
			"category":        after.Category,
		})
	}
	return after, nil
}

func (s *service) Delete(ctx context.Context, id, deletedBy string) error {
	return s.store.Delete(ctx, id, deletedBy)
}

// Publish moves an approved SOP to published and assigns it to the given users.
// Users that already hold an assignment are skipped.
func (s *service) Publish(ctx context.Context, id, publishedBy string, assignTo []string) (*domain.SOP, error) {
	sop, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sop.Status != domain.SOPApproved {
		return nil, domain.NewValidation("status", "sop must be approved before publishing")
	}

	now := s.now()
	var created int
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.store.Publish(ctx, id, now, publishedBy); err != nil {
			return err
		}
		for _, userID := range assignTo {
			ok, err := s.store.CreateAssignment(ctx, &domain.SOPAssignment{
				ID:         uuid.NewString(),
				SOPID:      id,
				UserID:     userID,
				AssignedBy: publishedBy,
				AssignedAt: now,
			})
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("sop_id", id).
		Int("assignments", created).
		Msg("sop published")
	s.trigger(ctx, id, domain.TriggerOnStatusChange, map[string]any{
		"status":          string(domain.SOPPublished),
		"previous_status": string(sop.Status),
		"category":        sop.Category,
	})
	return s.store.Get(ctx, id)
}

func (s *service) Assigned(ctx context.Context, userID string) ([]domain.AssignedSOP, error) {
	return s.store.ListAssigned(ctx, userID)
}

func (s *service) Acknowledge(ctx context.Context, id, userID string) (*domain.SOPAssignment, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.store.GetAssignment(ctx, id, userID); err != nil {
		if isNotFound(err) {
			return nil, domain.NewForbidden("sop %s is not assigned to %s", id, userID)
		}
		return nil, err
	}
	if err := s.store.Acknowledge(ctx, id, userID, s.now()); err != nil {
		return nil, err
	}
	return s.store.GetAssignment(ctx, id, userID)
}

func (s *service) PublicationStats(ctx context.Context) (domain.PublicationStats, error) {
	var (
		stats domain.PublicationStats
		err   error
	)
	now := s.now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	startOfYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	if stats.TotalPublished, err = s.store.CountPublished(ctx, nil); err != nil {
		return stats, err
	}
	if stats.PublishedThisMonth, err = s.store.CountPublished(ctx, &startOfMonth); err != nil {
		return stats, err
	}
	if stats.PublishedThisYear, err = s.store.CountPublished(ctx, &startOfYear); err != nil {
		return stats, err
	}
	if stats.TotalAssignments, err = s.store.CountAssignments(ctx, false); err != nil {
		return stats, err
	}
	if stats.Acknowledged, err = s.store.CountAssignments(ctx, true); err != nil {
		return stats, err
	}
	if stats.TotalAssignments > 0 {
		stats.AcknowledgmentRate = percent(stats.Acknowledged, stats.TotalAssignments)
	}
	return stats, nil
}

func (s *service) Versions(ctx context.Context, id string) ([]domain.SOPVersion, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListVersions(ctx, id)
}

func percent(n, total int) int {
	return int(math.Round(float64(n) / float64(total) * 100))
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
