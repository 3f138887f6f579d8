package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/models/store"
	"github.com/de-tools/grc-admin/pkg/store/sqldb"
)

const table = "audit_logs"

var columns = []string{
	"id", "user_id", "user_email", "action", "entity_type", "entity_id", "description",
	"changes", "ip_address", "user_agent", "request_id", "status_code", "created_at",
}

type Store interface {
	Insert(ctx context.Context, entry *domain.AuditLog) error
	Get(ctx context.Context, id string) (*domain.AuditLog, error)
	List(ctx context.Context, filter domain.AuditFilter) (domain.ListResult[domain.AuditLog], error)
	ListByEntity(ctx context.Context, entityType, entityID string) ([]domain.AuditLog, error)
	Iterate(ctx context.Context, filter domain.AuditFilter, fn func(domain.AuditLog) error) error
	IterateBefore(ctx context.Context, cutoff time.Time, fn func(domain.AuditLog) error) error
	Stats(ctx context.Context, from, to *time.Time) (domain.AuditStats, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
}

type defaultStore struct {
	db *sqldb.DB
}

func NewStore(db *sqldb.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{db: db}, nil
}

func (s *defaultStore) Insert(ctx context.Context, entry *domain.AuditLog) error {
	row := adapters.MapDomainAuditLogToStore(entry)
	q := s.db.Builder().Insert(table).Columns(columns...).Values(
		row.ID, row.UserID, row.UserEmail, row.Action, row.EntityType, row.EntityID, row.Description,
		row.Changes, row.IPAddress, row.UserAgent, row.RequestID, row.StatusCode, row.CreatedAt,
	)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

func (s *defaultStore) Get(ctx context.Context, id string) (*domain.AuditLog, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select(columns...).From(table).Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	entry, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("audit log", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log: %w", err)
	}
	return entry, nil
}

func applyFilter(b sq.SelectBuilder, f domain.AuditFilter) sq.SelectBuilder {
	if f.UserID != "" {
		b = b.Where(sq.Eq{"user_id": f.UserID})
	}
	if f.Action != "" {
		b = b.Where(sq.Eq{"action": string(f.Action)})
	}
	if f.EntityType != "" {
		b = b.Where(sq.Eq{"entity_type": f.EntityType})
	}
	if f.EntityID != "" {
		b = b.Where(sq.Eq{"entity_id": f.EntityID})
	}
	if f.From != nil {
		b = b.Where(sq.GtOrEq{"created_at": domain.NormalizeTime(*f.From)})
	}
	if f.To != nil {
		b = b.Where(sq.LtOrEq{"created_at": domain.NormalizeTime(*f.To)})
	}
	if f.Search != "" {
		b = b.Where(sqldb.Search(f.Search, "description", "entity_type", "user_email"))
	}
	return b
}

func (s *defaultStore) List(ctx context.Context, f domain.AuditFilter) (domain.ListResult[domain.AuditLog], error) {
	page := f.Page.Normalize()
	result := domain.ListResult[domain.AuditLog]{Page: page, Items: []domain.AuditLog{}}

	total, err := s.db.Count(ctx, applyFilter(s.db.Builder().Select("COUNT(*)").From(table), f))
	if err != nil {
		return result, err
	}
	result.Total = total

	q := applyFilter(s.db.Builder().Select(columns...).From(table), f).
		OrderBy("created_at DESC", "id DESC")
	result.Items, err = s.collect(ctx, sqldb.Paginate(q, page))
	return result, err
}

func (s *defaultStore) ListByEntity(ctx context.Context, entityType, entityID string) ([]domain.AuditLog, error) {
	q := s.db.Builder().Select(columns...).From(table).
		Where(sq.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("created_at ASC", "id ASC")
	return s.collect(ctx, q)
}

func (s *defaultStore) Iterate(ctx context.Context, f domain.AuditFilter, fn func(domain.AuditLog) error) error {
	q := applyFilter(s.db.Builder().Select(columns...).From(table), f).OrderBy("created_at ASC", "id ASC")
	return s.each(ctx, q, fn)
}

func (s *defaultStore) IterateBefore(ctx context.Context, cutoff time.Time, fn func(domain.AuditLog) error) error {
	q := s.db.Builder().Select(columns...).From(table).
		Where(sq.Lt{"created_at": domain.NormalizeTime(cutoff)}).
		OrderBy("created_at ASC", "id ASC")
	return s.each(ctx, q, fn)
}

func (s *defaultStore) Stats(ctx context.Context, from, to *time.Time) (domain.AuditStats, error) {
	f := domain.AuditFilter{From: from, To: to}
	stats := domain.AuditStats{From: from, To: to}

	total, err := s.db.Count(ctx, applyFilter(s.db.Builder().Select("COUNT(*)").From(table), f))
	if err != nil {
		return stats, err
	}
	stats.Total = total

	base := applyFilter(s.db.Builder().Select().From(table), f)
	if stats.ByAction, err = s.db.CountBy(ctx, base, "action"); err != nil {
		return stats, err
	}
	if stats.ByEntityType, err = s.db.CountBy(ctx, base, "entity_type"); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *defaultStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.Execute(ctx, s.db.Builder().Delete(table).
		Where(sq.Lt{"created_at": domain.NormalizeTime(cutoff)}))
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted rows: %w", err)
	}
	return int(n), nil
}

func (s *defaultStore) collect(ctx context.Context, q sq.SelectBuilder) ([]domain.AuditLog, error) {
	items := []domain.AuditLog{}
	err := s.each(ctx, q, func(l domain.AuditLog) error {
		items = append(items, l)
		return nil
	})
	return items, err
}

func (s *defaultStore) each(ctx context.Context, q sq.SelectBuilder, fn func(domain.AuditLog) error) error {
	rows, err := s.db.Select(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		entry, err := scan(rows)
		if err != nil {
			return fmt.Errorf("failed to scan audit log: %w", err)
		}
		if err := fn(*entry); err != nil {
			return err
		}
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (*domain.AuditLog, error) {
	var row store.AuditLog
	err := r.Scan(
		&row.ID, &row.UserID, &row.UserEmail, &row.Action, &row.EntityType, &row.EntityID, &row.Description,
		&row.Changes, &row.IPAddress, &row.UserAgent, &row.RequestID, &row.StatusCode, &row.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return adapters.MapStoreAuditLogToDomain(&row), nil
}
