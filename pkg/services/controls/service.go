package controls

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/controls"
)

const defaultRelatedLimit = 5

var exportHeader = []string{
	"Control ID", "Title", "Domain", "Type", "Complexity", "Cost Impact", "Status", "Implementation Status",
}

// WorkflowTrigger starts the workflows listening for an entity event.
type WorkflowTrigger interface {
	Trigger(ctx context.Context, entityType domain.EntityType, entityID string, trigger domain.WorkflowTrigger, data map[string]any)
}

type Service interface {
	Create(ctx context.Context, c *domain.UnifiedControl) (*domain.UnifiedControl, error)
	Get(ctx context.Context, id string) (*domain.UnifiedControl, error)
	List(ctx context.Context, filter domain.ControlFilter) (domain.ListResult[domain.UnifiedControl], error)
	Update(ctx context.Context, id string, u domain.ControlUpdate) (*domain.UnifiedControl, error)
	Delete(ctx context.Context, id, deletedBy string) error
	Stats(ctx context.Context) (domain.ControlLibraryStats, error)
	Related(ctx context.Context, id string, limit int) ([]domain.UnifiedControl, error)
	ExportCSV(ctx context.Context, filter domain.ControlFilter, w io.Writer) error
	Import(ctx context.Context, rows []domain.UnifiedControl, createdBy string) (domain.ImportResult, error)
}

type service struct {
	store    controls.Store
	workflow WorkflowTrigger
}

func NewService(store controls.Store, workflow WorkflowTrigger) Service {
	return &service{store: store, workflow: workflow}
}

func (s *service) Create(ctx context.Context, c *domain.UnifiedControl) (*domain.UnifiedControl, error) {
	exists, err := s.store.ExistsIdentifier(ctx, c.ControlIdentifier)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewConflict("control %s already exists", c.ControlIdentifier)
	}

	now := domain.Now()
	c.ID = uuid.NewString()
	if c.Status == "" {
		c.Status = domain.ControlDraft
	}
	if c.ImplementationStatus == "" {
		c.ImplementationStatus = domain.ImplNotImplemented
	}
	c.UpdatedBy = c.CreatedBy
	c.CreatedAt, c.UpdatedAt = now, now

	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, c.ID)
}

func (s *service) Get(ctx context.Context, id string) (*domain.UnifiedControl, error) {
	return s.store.Get(ctx, id)
}

func (s *service) List(ctx context.Context, filter domain.ControlFilter) (domain.ListResult[domain.UnifiedControl], error) {
	return s.store.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, u domain.ControlUpdate) (*domain.UnifiedControl, error) {
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

	if before.ImplementationStatus != after.ImplementationStatus &&
		after.ImplementationStatus == domain.ImplImplemented {
		zerolog.Ctx(ctx).Info().
			Str("control_id", id).
			Str("control_owner_id", after.ControlOwnerID).
			Msg("control implementation completed")
		if s.workflow != nil {
			s.workflow.Trigger(ctx, domain.EntityControl, id, domain.TriggerOnStatusChange, map[string]any{
				"implementation_status": string(after.ImplementationStatus),
				"status":                string(after.Status),
				"previous_status":       string(before.ImplementationStatus),
			})
		}
	}
	return after, nil
}

func (s *service) Delete(ctx context.Context, id, deletedBy string) error {
	return s.store.Delete(ctx, id, deletedBy)
}

func (s *service) Stats(ctx context.Context) (domain.ControlLibraryStats, error) {
	return s.store.Stats(ctx)
}

func (s *service) Related(ctx context.Context, id string, limit int) ([]domain.UnifiedControl, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRelatedLimit
	}
	return s.store.Related(ctx, c, limit)
}

// ExportCSV writes the filtered library with every cell quoted.
func (s *service) ExportCSV(ctx context.Context, filter domain.ControlFilter, w io.Writer) error {
	items, err := s.store.ListAll(ctx, filter)
	if err != nil {
		return err
	}
	names, err := s.store.DomainNames(ctx)
	if err != nil {
		return err
	}

	if err := writeQuoted(w, exportHeader); err != nil {
		return err
	}
	for _, c := range items {
		err := writeQuoted(w, []string{
			c.ControlIdentifier,
			c.Title,
			names[c.DomainID],
			string(c.ControlType),
			string(c.Complexity),
			string(c.CostImpact),
			string(c.Status),
			string(c.ImplementationStatus),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeQuoted(w io.Writer, cells []string) error {
	quoted := make([]string, len(cells))
	for i, c := range cells {
		quoted[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
	}
	if _, err := io.WriteString(w, strings.Join(quoted, ",")+"\n"); err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}
	return nil
}

// Import creates each row whose identifier is new. Row failures are collected
// with their 1-based position and do not stop the import.
func (s *service) Import(ctx context.Context, rows []domain.UnifiedControl, createdBy string) (domain.ImportResult, error) {
	result := domain.ImportResult{Errors: []domain.ImportRowError{}}
	logger := zerolog.Ctx(ctx)

	for i := range rows {
		row := rows[i]
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if strings.TrimSpace(row.ControlIdentifier) == "" || strings.TrimSpace(row.Title) == "" {
			result.Errors = append(result.Errors, domain.ImportRowError{
				Row:   i + 1,
				Error: "control_identifier and title are required",
			})
			continue
		}

		exists, err := s.store.ExistsIdentifier(ctx, row.ControlIdentifier)
		if err != nil {
			result.Errors = append(result.Errors, domain.ImportRowError{Row: i + 1, Error: err.Error()})
			continue
		}
		if exists {
			result.Skipped++
			continue
		}

		row.CreatedBy = createdBy
		if _, err := s.Create(ctx, &row); err != nil {
			result.Errors = append(result.Errors, domain.ImportRowError{Row: i + 1, Error: err.Error()})
			continue
		}
		result.Created++
	}

	logger.Info().
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("control import finished")
	return result, nil
}
