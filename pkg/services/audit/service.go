package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/archive"
	"github.com/de-tools/grc-admin/pkg/events"
	"github.com/de-tools/grc-admin/pkg/metrics"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	auditstore "github.com/de-tools/grc-admin/pkg/store/sqldb/audit"
)

var csvHeader = []string{
	"id", "created_at", "user_id", "user_email", "action", "entity_type", "entity_id", "description",
	"ip_address", "status_code",
}

type Service interface {
	Record(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) (domain.ListResult[domain.AuditLog], error)
	Get(ctx context.Context, id string) (*domain.AuditLog, error)
	EntityTrail(ctx context.Context, entityType, entityID string) ([]domain.AuditLog, error)
	ExportCSV(ctx context.Context, filter domain.AuditFilter, w io.Writer) error
	Stats(ctx context.Context, from, to *time.Time) (domain.AuditStats, error)
	Cleanup(ctx context.Context, retentionDays int) (int, error)
}

type service struct {
	store     auditstore.Store
	publisher events.Publisher
	archiver  archive.Archiver
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService wires the audit log. publisher, archiver and m may be nil.
func NewService(store auditstore.Store, publisher events.Publisher, archiver archive.Archiver, m *metrics.Metrics) Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &service{
		store:     store,
		publisher: publisher,
		archiver:  archiver,
		metrics:   m,
		now:       domain.Now,
	}
}

func (s *service) Record(ctx context.Context, entry *domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if entry.UserID == "" {
		entry.UserID = "system"
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		return err
	}
	s.metrics.RecordAuditEntry(string(entry.Action), entry.EntityType)

	if err := s.publisher.Publish(ctx, events.SubjectAudit+"."+string(entry.Action), entry); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("audit_id", entry.ID).Msg("failed to publish audit entry")
	}
	return nil
}

func (s *service) List(ctx context.Context, filter domain.AuditFilter) (domain.ListResult[domain.AuditLog], error) {
	return s.store.List(ctx, filter)
}

func (s *service) Get(ctx context.Context, id string) (*domain.AuditLog, error) {
	return s.store.Get(ctx, id)
}

func (s *service) EntityTrail(ctx context.Context, entityType, entityID string) ([]domain.AuditLog, error) {
	return s.store.ListByEntity(ctx, entityType, entityID)
}

func (s *service) ExportCSV(ctx context.Context, filter domain.AuditFilter, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	err := s.store.Iterate(ctx, filter, func(l domain.AuditLog) error {
		return cw.Write(csvRecord(l))
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func (s *service) Stats(ctx context.Context, from, to *time.Time) (domain.AuditStats, error) {
	if from != nil && to != nil && from.After(*to) {
		return domain.AuditStats{}, domain.NewValidation("from", "must not be after to")
	}
	return s.store.Stats(ctx, from, to)
}

// Cleanup deletes entries older than retentionDays. With an archiver configured the
// entries are uploaded first and a failed upload leaves them in place.
func (s *service) Cleanup(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays < 1 {
		return 0, domain.NewValidation("days", "retention must be at least 1 day")
	}
	logger := zerolog.Ctx(ctx)
	cutoff := s.now().AddDate(0, 0, -retentionDays)

	if s.archiver != nil {
		var (
			buf bytes.Buffer
			n   int
		)
		cw := csv.NewWriter(&buf)
		if err := cw.Write(csvHeader); err != nil {
			return 0, fmt.Errorf("failed to write csv header: %w", err)
		}
		err := s.store.IterateBefore(ctx, cutoff, func(l domain.AuditLog) error {
			n++
			return cw.Write(csvRecord(l))
		})
		if err != nil {
			return 0, err
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return 0, fmt.Errorf("failed to encode audit archive: %w", err)
		}

		if n > 0 {
			key, err := s.archiver.Upload(ctx, "audit-"+cutoff.Format("20060102T150405Z")+".csv", &buf)
			if err != nil {
				return 0, fmt.Errorf("failed to archive audit logs: %w", err)
			}
			logger.Info().Str("key", key).Int("entries", n).Msg("archived audit logs")
		}
	}

	deleted, err := s.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	logger.Info().Int("deleted", deleted).Time("cutoff", cutoff).Msg("audit retention cleanup finished")
	return deleted, nil
}

func csvRecord(l domain.AuditLog) []string {
	status := ""
	if l.StatusCode != 0 {
		status = strconv.Itoa(l.StatusCode)
	}
	return []string{
		l.ID,
		l.CreatedAt.UTC().Format(time.RFC3339),
		l.UserID,
		l.UserEmail,
		string(l.Action),
		l.EntityType,
		l.EntityID,
		l.Description,
		l.IPAddress,
		status,
	}
}
