package obligations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb"
)

const table = "obligations"

var columns = []string{
	"id", "obligation_identifier", "title", "COALESCE(description, '')", "COALESCE(source, '')",
	"COALESCE(source_reference, '')", "COALESCE(owner_id, '')", "status", "priority", "due_date",
	"COALESCE(created_by, '')", "COALESCE(updated_by, '')", "created_at", "updated_at", "deleted_at",
}

type Store interface {
	Create(ctx context.Context, o *domain.Obligation) error
	Get(ctx context.Context, id string) (*domain.Obligation, error)
	ExistsIdentifier(ctx context.Context, identifier string) (bool, error)
	List(ctx context.Context, filter domain.ObligationFilter) (domain.ListResult[domain.Obligation], error)
	ListAll(ctx context.Context) ([]domain.Obligation, error)
	Update(ctx context.Context, id string, u domain.ObligationUpdate) error
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
	Delete(ctx context.Context, id, deletedBy string) error
	Stats(ctx context.Context, now time.Time) (domain.ObligationStats, error)
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

func (s *defaultStore) Create(ctx context.Context, o *domain.Obligation) error {
	q := s.db.Builder().Insert(table).
		Columns(
			"id", "obligation_identifier", "title", "description", "source", "source_reference", "owner_id",
			"status", "priority", "due_date", "created_by", "updated_by", "created_at", "updated_at",
		).
		Values(
			o.ID, o.ObligationIdentifier, o.Title, sqldb.NullString(o.Description), sqldb.NullString(o.Source),
			sqldb.NullString(o.SourceReference), sqldb.NullString(o.OwnerID), string(o.Status),
			string(o.Priority), sqldb.NullTime(o.DueDate), sqldb.NullString(o.CreatedBy),
			sqldb.NullString(o.UpdatedBy), o.CreatedAt, o.UpdatedAt,
		)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert obligation: %w", err)
	}
	return nil
}

func (s *defaultStore) Get(ctx context.Context, id string) (*domain.Obligation, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select(columns...).From(table).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return nil, err
	}
	o, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("obligation", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get obligation: %w", err)
	}
	return o, nil
}

func (s *defaultStore) ExistsIdentifier(ctx context.Context, identifier string) (bool, error) {
	n, err := s.db.Count(ctx, s.db.Builder().Select("COUNT(*)").From(table).
		Where(sq.Eq{"obligation_identifier": identifier}))
	return n > 0, err
}

func applyFilter(b sq.SelectBuilder, f domain.ObligationFilter) sq.SelectBuilder {
	b = b.Where(sqldb.NotDeleted)
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": string(f.Status)})
	}
	if f.Priority != "" {
		b = b.Where(sq.Eq{"priority": string(f.Priority)})
	}
	if f.OwnerID != "" {
		b = b.Where(sq.Eq{"owner_id": f.OwnerID})
	}
	if f.Search != "" {
		b = b.Where(sqldb.Search(f.Search, "title", "description", "obligation_identifier"))
	}
	return b
}

func (s *defaultStore) List(ctx context.Context, f domain.ObligationFilter) (domain.ListResult[domain.Obligation], error) {
	page := f.Page.Normalize()
	result := domain.ListResult[domain.Obligation]{Page: page, Items: []domain.Obligation{}}

	total, err := s.db.Count(ctx, applyFilter(s.db.Builder().Select("COUNT(*)").From(table), f))
	if err != nil {
		return result, err
	}
	result.Total = total

	q := applyFilter(s.db.Builder().Select(columns...).From(table), f).OrderBy("created_at DESC", "id")
	result.Items, err = s.collect(ctx, sqldb.Paginate(q, page))
	return result, err
}

func (s *defaultStore) ListAll(ctx context.Context) ([]domain.Obligation, error) {
	return s.collect(ctx, s.db.Builder().Select(columns...).From(table).
		Where(sqldb.NotDeleted).OrderBy("obligation_identifier"))
}

func (s *defaultStore) Update(ctx context.Context, id string, u domain.ObligationUpdate) error {
	set := map[string]any{"updated_at": domain.Now()}
	if u.UpdatedBy != "" {
		set["updated_by"] = u.UpdatedBy
	}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Source != nil {
		set["source"] = *u.Source
	}
	if u.SourceReference != nil {
		set["source_reference"] = *u.SourceReference
	}
	if u.OwnerID != nil {
		set["owner_id"] = sqldb.NullString(*u.OwnerID)
	}
	if u.Status != nil {
		set["status"] = string(*u.Status)
	}
	if u.Priority != nil {
		set["priority"] = string(*u.Priority)
	}
	if u.DueDate != nil {
		set["due_date"] = sqldb.NullTime(u.DueDate)
	}
	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).SetMap(set).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to update obligation: %w", err)
	}
	return sqldb.RowsAffected(res, "obligation", id)
}

func (s *defaultStore) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	if err := domain.EntityObligation.ValidateStatus(status); err != nil {
		return err
	}
	st := domain.ObligationStatus(status)
	return s.Update(ctx, id, domain.ObligationUpdate{Status: &st, UpdatedBy: updatedBy})
}

func (s *defaultStore) Delete(ctx context.Context, id, deletedBy string) error {
	now := domain.Now()
	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).
		Set("deleted_at", now).Set("updated_at", now).Set("updated_by", sqldb.NullString(deletedBy)).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to delete obligation: %w", err)
	}
	return sqldb.RowsAffected(res, "obligation", id)
}

// Stats counts overdue obligations as those past due and not yet met or waived.
func (s *defaultStore) Stats(ctx context.Context, now time.Time) (domain.ObligationStats, error) {
	stats := domain.ObligationStats{}
	base := s.db.Builder().Select().From(table).Where(sqldb.NotDeleted)

	var err error
	if stats.ByStatus, err = s.db.CountBy(ctx, base, "status"); err != nil {
		return stats, err
	}
	for _, n := range stats.ByStatus {
		stats.Total += n
	}
	if stats.ByPriority, err = s.db.CountBy(ctx, base, "priority"); err != nil {
		return stats, err
	}
	stats.Overdue, err = s.db.Count(ctx, s.db.Builder().Select("COUNT(*)").From(table).
		Where(sqldb.NotDeleted).
		Where(sq.Lt{"due_date": domain.NormalizeTime(now)}).
		Where(sq.NotEq{"status": []string{string(domain.ObligationMet), string(domain.ObligationNotApplicable)}}))
	return stats, err
}

func (s *defaultStore) collect(ctx context.Context, q sq.SelectBuilder) ([]domain.Obligation, error) {
	rows, err := s.db.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query obligations: %w", err)
	}
	defer rows.Close()

	items := []domain.Obligation{}
	for rows.Next() {
		o, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}
		items = append(items, *o)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (*domain.Obligation, error) {
	var (
		o domain.Obligation
		status, priority string
		due, deleted     sql.NullTime
	)
	err := r.Scan(
		&o.ID, &o.ObligationIdentifier, &o.Title, &o.Description, &o.Source, &o.SourceReference,
		&o.OwnerID, &status, &priority, &due, &o.CreatedBy, &o.UpdatedBy, &o.CreatedAt, &o.UpdatedAt, &deleted,
	)
	if err != nil {
		return nil, err
	}
	o.Status = domain.ObligationStatus(status)
	o.Priority = domain.Priority(priority)
	o.DueDate = sqldb.TimePtr(due)
	o.DeletedAt = sqldb.TimePtr(deleted)
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return &o, nil
}
