package controls

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	sq "github.com/Masterminds/squirrel"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb"
)

const table = "unified_controls"

var columns = []string{
	"id", "control_identifier", "title", "COALESCE(description, '')", "COALESCE(control_type, '')",
	"COALESCE(control_category, '')", "COALESCE(domain_id, '')", "COALESCE(complexity, '')",
	"COALESCE(cost_impact, '')", "status", "implementation_status", "COALESCE(control_owner_id, '')",
	"COALESCE(control_procedures, '')", "COALESCE(testing_procedures, '')", "tags",
	"COALESCE(created_by, '')", "COALESCE(updated_by, '')", "created_at", "updated_at", "deleted_at",
}

var defaultSort = domain.Sort{Field: "created_at", Order: domain.SortDesc}

type Store interface {
	Create(ctx context.Context, c *domain.UnifiedControl) error
	Get(ctx context.Context, id string) (*domain.UnifiedControl, error)
	ExistsIdentifier(ctx context.Context, identifier string) (bool, error)
	List(ctx context.Context, filter domain.ControlFilter) (domain.ListResult[domain.UnifiedControl], error)
	ListAll(ctx context.Context, filter domain.ControlFilter) ([]domain.UnifiedControl, error)
	Update(ctx context.Context, id string, u domain.ControlUpdate) error
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
	Delete(ctx context.Context, id, deletedBy string) error
	Stats(ctx context.Context) (domain.ControlLibraryStats, error)
	Related(ctx context.Context, c *domain.UnifiedControl, limit int) ([]domain.UnifiedControl, error)
	ListUnmapped(ctx context.Context, page domain.Page) (domain.ListResult[domain.UnifiedControl], error)
	DomainNames(ctx context.Context) (map[string]string, error)
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

func (s *defaultStore) Create(ctx context.Context, c *domain.UnifiedControl) error {
	tags, err := sqldb.EncodeJSON(c.Tags)
	if err != nil {
		return err
	}
	q := s.db.Builder().Insert(table).
		Columns(
			"id", "control_identifier", "title", "description", "control_type", "control_category",
			"domain_id", "complexity", "cost_impact", "status", "implementation_status", "control_owner_id",
			"control_procedures", "testing_procedures", "tags", "created_by", "updated_by", "created_at", "updated_at",
		).
		Values(
			c.ID, c.ControlIdentifier, c.Title, sqldb.NullString(c.Description), sqldb.NullString(string(c.ControlType)),
			sqldb.NullString(c.ControlCategory), sqldb.NullString(c.DomainID), sqldb.NullString(string(c.Complexity)),
			sqldb.NullString(string(c.CostImpact)), string(c.Status), string(c.ImplementationStatus),
			sqldb.NullString(c.ControlOwnerID), sqldb.NullString(c.ControlProcedures),
			sqldb.NullString(c.TestingProcedures), tags, sqldb.NullString(c.CreatedBy),
			sqldb.NullString(c.UpdatedBy), c.CreatedAt, c.UpdatedAt,
		)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert control: %w", err)
	}
	return nil
}

func (s *defaultStore) Get(ctx context.Context, id string) (*domain.UnifiedControl, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select(columns...).From(table).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return nil, err
	}
	c, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("control", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get control: %w", err)
	}
	return c, nil
}

// ExistsIdentifier also sees soft-deleted rows since the unique index does.
func (s *defaultStore) ExistsIdentifier(ctx context.Context, identifier string) (bool, error) {
	n, err := s.db.Count(ctx, s.db.Builder().Select("COUNT(*)").From(table).
		Where(sq.Eq{"control_identifier": identifier}))
	return n > 0, err
}

func applyFilter(b sq.SelectBuilder, f domain.ControlFilter) sq.SelectBuilder {
	b = b.Where(sqldb.NotDeleted)
	if f.ControlType != "" {
		b = b.Where(sq.Eq{"control_type": string(f.ControlType)})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": string(f.Status)})
	}
	if f.ImplementationStatus != "" {
		b = b.Where(sq.Eq{"implementation_status": string(f.ImplementationStatus)})
	}
	if f.DomainID != "" {
		b = b.Where(sq.Eq{"domain_id": f.DomainID})
	}
	if f.ControlOwnerID != "" {
		b = b.Where(sq.Eq{"control_owner_id": f.ControlOwnerID})
	}
	if f.Search != "" {
		b = b.Where(sqldb.Search(f.Search, "title", "description", "control_identifier"))
	}
	return b
}

func orderBy(s domain.Sort) string {
	if s.Field == "" {
		s = defaultSort
	}
	return s.SQL()
}

func (s *defaultStore) List(ctx context.Context, f domain.ControlFilter) (domain.ListResult[domain.UnifiedControl], error) {
	page := f.Page.Normalize()
	result := domain.ListResult[domain.UnifiedControl]{Page: page, Items: []domain.UnifiedControl{}}

	total, err := s.db.Count(ctx, applyFilter(s.db.Builder().Select("COUNT(*)").From(table), f))
	if err != nil {
		return result, err
	}
	result.Total = total

	q := applyFilter(s.db.Builder().Select(columns...).From(table), f).OrderBy(orderBy(f.Sort), "id")
	result.Items, err = s.collect(ctx, sqldb.Paginate(q, page))
	return result, err
}

func (s *defaultStore) ListAll(ctx context.Context, f domain.ControlFilter) ([]domain.UnifiedControl, error) {
	if f.Sort.Field == "" {
		f.Sort = domain.Sort{Field: "control_identifier", Order: domain.SortAsc}
	}
	q := applyFilter(s.db.Builder().Select(columns...).From(table), f).OrderBy(orderBy(f.Sort), "id")
	return s.collect(ctx, q)
}

func (s *defaultStore) Update(ctx context.Context, id string, u domain.ControlUpdate) error {
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
	if u.ControlType != nil {
		set["control_type"] = string(*u.ControlType)
	}
	if u.ControlCategory != nil {
		set["control_category"] = *u.ControlCategory
	}
	if u.DomainID != nil {
		set["domain_id"] = sqldb.NullString(*u.DomainID)
	}
	if u.Complexity != nil {
		set["complexity"] = string(*u.Complexity)
	}
	if u.CostImpact != nil {
		set["cost_impact"] = string(*u.CostImpact)
	}
	if u.Status != nil {
		set["status"] = string(*u.Status)
	}
	if u.ImplementationStatus != nil {
		set["implementation_status"] = string(*u.ImplementationStatus)
	}
	if u.ControlOwnerID != nil {
		set["control_owner_id"] = sqldb.NullString(*u.ControlOwnerID)
	}
	if u.ControlProcedures != nil {
		set["control_procedures"] = *u.ControlProcedures
	}
	if u.TestingProcedures != nil {
		set["testing_procedures"] = *u.TestingProcedures
	}
	if u.Tags != nil {
		tags, err := sqldb.EncodeJSON(u.Tags)
		if err != nil {
			return err
		}
		set["tags"] = tags
	}

	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).SetMap(set).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to update control: %w", err)
	}
	return sqldb.RowsAffected(res, "control", id)
}

func (s *defaultStore) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	if err := domain.EntityControl.ValidateStatus(status); err != nil {
		return err
	}
	st := domain.ControlStatus(status)
	return s.Update(ctx, id, domain.ControlUpdate{Status: &st, UpdatedBy: updatedBy})
}

func (s *defaultStore) Delete(ctx context.Context, id, deletedBy string) error {
	now := domain.Now()
	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).
		Set("deleted_at", now).Set("updated_at", now).Set("updated_by", sqldb.NullString(deletedBy)).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to delete control: %w", err)
	}
	return sqldb.RowsAffected(res, "control", id)
}

func (s *defaultStore) Stats(ctx context.Context) (domain.ControlLibraryStats, error) {
	stats := domain.ControlLibraryStats{}
	base := s.db.Builder().Select().From(table).Where(sqldb.NotDeleted)

	byStatus, err := s.db.CountBy(ctx, base, "status")
	if err != nil {
		return stats, err
	}
	for _, n := range byStatus {
		stats.Total += n
	}
	stats.Active = byStatus[string(domain.ControlActive)]
	stats.Draft = byStatus[string(domain.ControlDraft)]
	stats.Deprecated = byStatus[string(domain.ControlDeprecated)]

	if stats.ByType, err = s.db.CountBy(ctx, base, "control_type"); err != nil {
		return stats, err
	}
	if stats.ByComplexity, err = s.db.CountBy(ctx, base, "complexity"); err != nil {
		return stats, err
	}
	byImpl, err := s.db.CountBy(ctx, base, "implementation_status")
	if err != nil {
		return stats, err
	}
	if stats.Total > 0 {
		implemented := byImpl[string(domain.ImplImplemented)]
		stats.ImplementationRate = int(math.Round(float64(implemented) / float64(stats.Total) * 100))
	}
	return stats, nil
}

func (s *defaultStore) Related(ctx context.Context, c *domain.UnifiedControl, limit int) ([]domain.UnifiedControl, error) {
	match := sq.Or{}
	if c.DomainID != "" {
		match = append(match, sq.Eq{"domain_id": c.DomainID})
	}
	if c.ControlType != "" {
		match = append(match, sq.Eq{"control_type": string(c.ControlType)})
	}
	if len(match) == 0 {
		return []domain.UnifiedControl{}, nil
	}
	q := s.db.Builder().Select(columns...).From(table).
		Where(sqldb.NotDeleted).
		Where(sq.NotEq{"id": c.ID}).
		Where(match).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit))
	return s.collect(ctx, q)
}

var unmapped = sq.Expr("NOT EXISTS (SELECT 1 FROM control_asset_mappings m WHERE m.control_id = unified_controls.id)")

// ListUnmapped pages through controls without any asset mapping.
func (s *defaultStore) ListUnmapped(ctx context.Context, page domain.Page) (domain.ListResult[domain.UnifiedControl], error) {
	page = page.Normalize()
	result := domain.ListResult[domain.UnifiedControl]{Page: page, Items: []domain.UnifiedControl{}}

	total, err := s.db.Count(ctx, s.db.Builder().Select("COUNT(*)").From(table).
		Where(sqldb.NotDeleted).Where(unmapped))
	if err != nil {
		return result, err
	}
	result.Total = total

	q := s.db.Builder().Select(columns...).From(table).
		Where(sqldb.NotDeleted).Where(unmapped).
		OrderBy("control_identifier")
	result.Items, err = s.collect(ctx, sqldb.Paginate(q, page))
	return result, err
}

func (s *defaultStore) DomainNames(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.Select(ctx, s.db.Builder().Select("id", "name").From("control_domains"))
	if err != nil {
		return nil, fmt.Errorf("failed to query domain names: %w", err)
	}
	defer rows.Close()

	names := map[string]string{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan domain name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

func (s *defaultStore) collect(ctx context.Context, q sq.SelectBuilder) ([]domain.UnifiedControl, error) {
	rows, err := s.db.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query controls: %w", err)
	}
	defer rows.Close()

	items := []domain.UnifiedControl{}
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan control: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (*domain.UnifiedControl, error) {
	var (
		c domain.UnifiedControl
		controlType, complexity, costImpact, status, implSts string
		deletedAt sql.NullTime
	)
	err := r.Scan(
		&c.ID, &c.ControlIdentifier, &c.Title, &c.Description, &controlType, &c.ControlCategory,
		&c.DomainID, &complexity, &costImpact, &status, &implSts, &c.ControlOwnerID,
		&c.ControlProcedures, &c.TestingProcedures, sqldb.JSONColumn(&c.Tags),
		&c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ControlType = domain.ControlType(controlType)
	c.Complexity = domain.Level(complexity)
	c.CostImpact = domain.Level(costImpact)
	c.Status = domain.ControlStatus(status)
	c.ImplementationStatus = domain.ImplementationStatus(implSts)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	c.DeletedAt = sqldb.TimePtr(deletedAt)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c, nil
}
