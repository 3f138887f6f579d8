package domains

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb"
)

const table = "control_domains"

var columns = []string{
	"id", "name", "code", "COALESCE(description, '')", "COALESCE(parent_id, '')", "display_order",
	"is_active", "COALESCE(created_by, '')", "COALESCE(updated_by, '')", "created_at", "updated_at",
	"deleted_at",
}

type Store interface {
	Create(ctx context.Context, d *domain.ControlDomain) error
	Get(ctx context.Context, id string) (*domain.ControlDomain, error)
	ExistsCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, activeOnly bool) ([]domain.ControlDomain, error)
	Update(ctx context.Context, id string, u domain.ControlDomainUpdate) error
	Delete(ctx context.Context, id, deletedBy string) error
	ControlCounts(ctx context.Context) (map[string]int, error)
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

func (s *defaultStore) Create(ctx context.Context, d *domain.ControlDomain) error {
	q := s.db.Builder().Insert(table).
		Columns(
			"id", "name", "code", "description", "parent_id", "display_order", "is_active",
			"created_by", "updated_by", "created_at", "updated_at",
		).
		Values(
			d.ID, d.Name, d.Code, sqldb.NullString(d.Description), sqldb.NullString(d.ParentID),
			d.DisplayOrder, d.IsActive, sqldb.NullString(d.CreatedBy), sqldb.NullString(d.UpdatedBy),
			d.CreatedAt, d.UpdatedAt,
		)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert control domain: %w", err)
	}
	return nil
}

func (s *defaultStore) Get(ctx context.Context, id string) (*domain.ControlDomain, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select(columns...).From(table).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return nil, err
	}
	d, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("control domain", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get control domain: %w", err)
	}
	return d, nil
}

func (s *defaultStore) ExistsCode(ctx context.Context, code string) (bool, error) {
	n, err := s.db.Count(ctx, s.db.Builder().Select("COUNT(*)").From(table).Where(sq.Eq{"code": code}))
	return n > 0, err
}

func (s *defaultStore) List(ctx context.Context, activeOnly bool) ([]domain.ControlDomain, error) {
	q := s.db.Builder().Select(columns...).From(table).Where(sqldb.NotDeleted).OrderBy("display_order", "name")
	if activeOnly {
		q = q.Where(sq.Eq{"is_active": true})
	}
	rows, err := s.db.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query control domains: %w", err)
	}
	defer rows.Close()

	items := []domain.ControlDomain{}
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan control domain: %w", err)
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

func (s *defaultStore) Update(ctx context.Context, id string, u domain.ControlDomainUpdate) error {
	set := map[string]any{"updated_at": domain.Now()}
	if u.UpdatedBy != "" {
		set["updated_by"] = u.UpdatedBy
	}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.ParentID != nil {
		set["parent_id"] = sqldb.NullString(*u.ParentID)
	}
	if u.DisplayOrder != nil {
		set["display_order"] = *u.DisplayOrder
	}
	if u.IsActive != nil {
		set["is_active"] = *u.IsActive
	}
	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).SetMap(set).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to update control domain: %w", err)
	}
	return sqldb.RowsAffected(res, "control domain", id)
}

func (s *defaultStore) Delete(ctx context.Context, id, deletedBy string) error {
	now := domain.Now()
	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).
		Set("deleted_at", now).Set("updated_at", now).Set("updated_by", sqldb.NullString(deletedBy)).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to delete control domain: %w", err)
	}
	return sqldb.RowsAffected(res, "control domain", id)
}

// ControlCounts returns the number of live controls per domain id.
func (s *defaultStore) ControlCounts(ctx context.Context) (map[string]int, error) {
	return s.db.CountBy(ctx, s.db.Builder().Select().From("unified_controls").Where(sqldb.NotDeleted), "domain_id")
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (*domain.ControlDomain, error) {
	var (
		d   domain.ControlDomain
		del sql.NullTime
	)
	err := r.Scan(
		&d.ID, &d.Name, &d.Code, &d.Description, &d.ParentID, &d.DisplayOrder, &d.IsActive,
		&d.CreatedBy, &d.UpdatedBy, &d.CreatedAt, &d.UpdatedAt, &del,
	)
	if err != nil {
		return nil, err
	}
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	d.DeletedAt = sqldb.TimePtr(del)
	return &d, nil
}
