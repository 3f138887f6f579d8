package frameworks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb"
)

const (
	frameworksTable   = "compliance_frameworks"
	requirementsTable = "framework_requirements"
	mappingsTable     = "framework_control_mappings"
)

var frameworkColumns = []string{
	"id", "framework_code", "name", "COALESCE(version, '')", "COALESCE(issuing_authority, '')",
	"COALESCE(description, '')", "effective_date", "status", "tags", "COALESCE(created_by, '')",
	"COALESCE(updated_by, '')", "created_at", "updated_at", "deleted_at",
}

var requirementColumns = []string{
	"id", "framework_id", "requirement_identifier", "requirement_text", "COALESCE(domain, '')",
	"COALESCE(category, '')", "COALESCE(priority, '')", "display_order", "created_at", "updated_at",
}

var mappingColumns = []string{
	"id", "requirement_id", "control_id", "coverage_level", "COALESCE(mapping_notes, '')",
	"COALESCE(mapped_by, '')", "created_at", "updated_at",
}

type Store interface {
	Create(ctx context.Context, f *domain.Framework) error
	Get(ctx context.Context, id string) (*domain.Framework, error)
	ExistsCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, filter domain.FrameworkFilter) (domain.ListResult[domain.Framework], error)
	Update(ctx context.Context, id string, u domain.FrameworkUpdate) error
	Delete(ctx context.Context, id, deletedBy string) error

	CreateRequirement(ctx context.Context, r *domain.FrameworkRequirement) error
	GetRequirement(ctx context.Context, id string) (*domain.FrameworkRequirement, error)
	ExistsRequirement(ctx context.Context, frameworkID, identifier string) (bool, error)
	ListRequirements(ctx context.Context, frameworkID string) ([]domain.FrameworkRequirement, error)
	DeleteRequirement(ctx context.Context, frameworkID, requirementID string) error

	CreateMapping(ctx context.Context, m *domain.FrameworkControlMapping) error
	GetMapping(ctx context.Context, id string) (*domain.FrameworkControlMapping, error)
	MappedRequirementIDs(ctx context.Context, controlID string) (map[string]bool, error)
	UpdateMapping(ctx context.Context, id string, coverage *domain.CoverageLevel, notes *string) error
	DeleteMapping(ctx context.Context, id string) error
	ListMappingsForControl(ctx context.Context, controlID string) ([]domain.FrameworkControlMapping, error)
	RequirementMappings(ctx context.Context, frameworkID string) ([]domain.RequirementMapping, error)
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

func (s *defaultStore) Create(ctx context.Context, f *domain.Framework) error {
	tags, err := sqldb.EncodeJSON(f.Tags)
	if err != nil {
		return err
	}
	q := s.db.Builder().Insert(frameworksTable).
		Columns(
			"id", "framework_code", "name", "version", "issuing_authority", "description",
			"effective_date", "status", "tags", "created_by", "updated_by", "created_at", "updated_at",
		).
		Values(
			f.ID, f.FrameworkCode, f.Name, sqldb.NullString(f.Version), sqldb.NullString(f.IssuingAuthority),
			sqldb.NullString(f.Description), sqldb.NullTime(f.EffectiveDate), string(f.Status), tags,
			sqldb.NullString(f.CreatedBy), sqldb.NullString(f.UpdatedBy), f.CreatedAt, f.UpdatedAt,
		)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert framework: %w", err)
	}
	return nil
}

func (s *defaultStore) Get(ctx context.Context, id string) (*domain.Framework, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select(frameworkColumns...).From(frameworksTable).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return nil, err
	}
	f, err := scanFramework(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("framework", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get framework: %w", err)
	}
	return f, nil
}

func (s *defaultStore) ExistsCode(ctx context.Context, code string) (bool, error) {
	n, err := s.db.Count(ctx, s.db.Builder().Select("COUNT(*)").From(frameworksTable).
		Where(sq.Eq{"framework_code": code}))
	return n > 0, err
}

func applyFilter(b sq.SelectBuilder, f domain.FrameworkFilter) sq.SelectBuilder {
	b = b.Where(sqldb.NotDeleted)
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": string(f.Status)})
	}
	if f.Search != "" {
		b = b.Where(sqldb.Search(f.Search, "name", "framework_code", "description"))
	}
	return b
}

func (s *defaultStore) List(ctx context.Context, f domain.FrameworkFilter) (domain.ListResult[domain.Framework], error) {
	page := f.Page.Normalize()
	result := domain.ListResult[domain.Framework]{Page: page, Items: []domain.Framework{}}

	total, err := s.db.Count(ctx, applyFilter(s.db.Builder().Select("COUNT(*)").From(frameworksTable), f))
	if err != nil {
		return result, err
	}
	result.Total = total

	q := applyFilter(s.db.Builder().Select(frameworkColumns...).From(frameworksTable), f).OrderBy("name", "id")
	rows, err := s.db.Select(ctx, sqldb.Paginate(q, page))
	if err != nil {
		return result, fmt.Errorf("failed to query frameworks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		fw, err := scanFramework(rows)
		if err != nil {
			return result, fmt.Errorf("failed to scan framework: %w", err)
		}
		result.Items = append(result.Items, *fw)
	}
	return result, rows.Err()
}

func (s *defaultStore) Update(ctx context.Context, id string, u domain.FrameworkUpdate) error {
	set := map[string]any{"updated_at": domain.Now()}
	if u.UpdatedBy != "" {
		set["updated_by"] = u.UpdatedBy
	}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Version != nil {
		set["version"] = *u.Version
	}
	if u.IssuingAuthority != nil {
		set["issuing_authority"] = *u.IssuingAuthority
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.EffectiveDate != nil {
		set["effective_date"] = sqldb.NullTime(u.EffectiveDate)
	}
	if u.Status != nil {
		set["status"] = string(*u.Status)
	}
	if u.Tags != nil {
		tags, err := sqldb.EncodeJSON(u.Tags)
		if err != nil {
			return err
		}
		set["tags"] = tags
	}
	res, err := s.db.Execute(ctx, s.db.Builder().Update(frameworksTable).SetMap(set).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to update framework: %w", err)
	}
	return sqldb.RowsAffected(res, "framework", id)
}

func (s *defaultStore) Delete(ctx context.Context, id, deletedBy string) error {
	now := domain.Now()
	res, err := s.db.Execute(ctx, s.db.Builder().Update(frameworksTable).
		Set("deleted_at", now).Set("updated_at", now).Set("updated_by", sqldb.NullString(deletedBy)).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to delete framework: %w", err)
	}
	return sqldb.RowsAffected(res, "framework", id)
}

func (s *defaultStore) CreateRequirement(ctx context.Context, r *domain.FrameworkRequirement) error {
	q := s.db.Builder().Insert(requirementsTable).
		Columns(
			"id", "framework_id", "requirement_identifier", "requirement_text", "domain", "category",
			"priority", "display_order", "created_at", "updated_at",
		).
		Values(
			r.ID, r.FrameworkID, r.RequirementIdentifier, r.RequirementText, sqldb.NullString(r.Domain),
			sqldb.NullString(r.Category), sqldb.NullString(r.Priority), r.DisplayOrder, r.CreatedAt, r.UpdatedAt,
		)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert framework requirement: %w", err)
	}
	return nil
}

func (s *defaultStore) GetRequirement(ctx context.Context, id string) (*domain.FrameworkRequirement, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select(requirementColumns...).From(requirementsTable).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	r, err := scanRequirement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("framework requirement", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get framework requirement: %w", err)
	}
	return r, nil
}

func (s *defaultStore) ExistsRequirement(ctx context.Context, frameworkID, identifier string) (bool, error) {
	n, err := s.db.Count(ctx, s.db.Builder().Select("COUNT(*)").From(requirementsTable).
		Where(sq.Eq{"framework_id": frameworkID, "requirement_identifier": identifier}))
	return n > 0, err
}

func (s *defaultStore) ListRequirements(ctx context.Context, frameworkID string) ([]domain.FrameworkRequirement, error) {
	rows, err := s.db.Select(ctx, s.db.Builder().Select(requirementColumns...).From(requirementsTable).
		Where(sq.Eq{"framework_id": frameworkID}).
		OrderBy("display_order", "requirement_identifier"))
	if err != nil {
		return nil, fmt.Errorf("failed to query framework requirements: %w", err)
	}
	defer rows.Close()

	items := []domain.FrameworkRequirement{}
	for rows.Next() {
		r, err := scanRequirement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan framework requirement: %w", err)
		}
		items = append(items, *r)
	}
	return items, rows.Err()
}

// DeleteRequirement removes the requirement and its control mappings.
func (s *defaultStore) DeleteRequirement(ctx context.Context, frameworkID, requirementID string) error {
	return s.db.InTx(ctx, func(ctx context.Context) error {
		res, err := s.db.Execute(ctx, s.db.Builder().Delete(requirementsTable).
			Where(sq.Eq{"id": requirementID, "framework_id": frameworkID}))
		if err != nil {
			return fmt.Errorf("failed to delete framework requirement: %w", err)
		}
		if err := sqldb.RowsAffected(res, "framework requirement", requirementID); err != nil {
			return err
		}
		if _, err := s.db.Execute(ctx, s.db.Builder().Delete(mappingsTable).
			Where(sq.Eq{"requirement_id": requirementID})); err != nil {
			return fmt.Errorf("failed to delete requirement mappings: %w", err)
		}
		return nil
	})
}

func (s *defaultStore) CreateMapping(ctx context.Context, m *domain.FrameworkControlMapping) error {
	q := s.db.Builder().Insert(mappingsTable).
		Columns("id", "requirement_id", "control_id", "coverage_level", "mapping_notes", "mapped_by", "created_at", "updated_at").
		Values(
			m.ID, m.RequirementID, m.ControlID, string(m.CoverageLevel), sqldb.NullString(m.MappingNotes),
			sqldb.NullString(m.MappedBy), m.CreatedAt, m.UpdatedAt,
		)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert framework mapping: %w", err)
	}
	return nil
}

func (s *defaultStore) GetMapping(ctx context.Context, id string) (*domain.FrameworkControlMapping, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select(mappingColumns...).From(mappingsTable).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	m, err := scanMapping(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("framework mapping", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get framework mapping: %w", err)
	}
	return m, nil
}

func (s *defaultStore) MappedRequirementIDs(ctx context.Context, controlID string) (map[string]bool, error) {
	rows, err := s.db.Select(ctx, s.db.Builder().Select("requirement_id").From(mappingsTable).
		Where(sq.Eq{"control_id": controlID}))
	if err != nil {
		return nil, fmt.Errorf("failed to query mapped requirements: %w", err)
	}
	defer rows.Close()

	ids := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan mapped requirement: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (s *defaultStore) UpdateMapping(ctx context.Context, id string, coverage *domain.CoverageLevel, notes *string) error {
	set := map[string]any{"updated_at": domain.Now()}
	if coverage != nil {
		set["coverage_level"] = string(*coverage)
	}
	if notes != nil {
		set["mapping_notes"] = *notes
	}
	res, err := s.db.Execute(ctx, s.db.Builder().Update(mappingsTable).SetMap(set).Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to update framework mapping: %w", err)
	}
	return sqldb.RowsAffected(res, "framework mapping", id)
}

func (s *defaultStore) DeleteMapping(ctx context.Context, id string) error {
	res, err := s.db.Execute(ctx, s.db.Builder().Delete(mappingsTable).Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to delete framework mapping: %w", err)
	}
	return sqldb.RowsAffected(res, "framework mapping", id)
}

func (s *defaultStore) ListMappingsForControl(ctx context.Context, controlID string) ([]domain.FrameworkControlMapping, error) {
	rows, err := s.db.Select(ctx, s.db.Builder().Select(mappingColumns...).From(mappingsTable).
		Where(sq.Eq{"control_id": controlID}).
		OrderBy("created_at DESC", "id"))
	if err != nil {
		return nil, fmt.Errorf("failed to query framework mappings: %w", err)
	}
	defer rows.Close()

	items := []domain.FrameworkControlMapping{}
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan framework mapping: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

// RequirementMappings returns every mapping under the framework joined with its
// control's implementation status. Soft-deleted controls are excluded.
func (s *defaultStore) RequirementMappings(ctx context.Context, frameworkID string) ([]domain.RequirementMapping, error) {
	q := s.db.Builder().
		Select("m.requirement_id", "m.control_id", "c.control_identifier", "m.coverage_level", "c.implementation_status").
		From(mappingsTable + " m").
		Join(requirementsTable + " r ON r.id = m.requirement_id").
		Join("unified_controls c ON c.id = m.control_id").
		Where(sq.Eq{"r.framework_id": frameworkID, "c.deleted_at": nil}).
		OrderBy("c.control_identifier")

	rows, err := s.db.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query requirement mappings: %w", err)
	}
	defer rows.Close()

	items := []domain.RequirementMapping{}
	for rows.Next() {
		var (
			m domain.RequirementMapping
			coverage, status string
		)
		if err := rows.Scan(&m.RequirementID, &m.ControlID, &m.ControlIdentifier, &coverage, &status); err != nil {
			return nil, fmt.Errorf("failed to scan requirement mapping: %w", err)
		}
		m.CoverageLevel = domain.CoverageLevel(coverage)
		m.ImplementationStatus = domain.ImplementationStatus(status)
		items = append(items, m)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFramework(r scanner) (*domain.Framework, error) {
	var (
		f      domain.Framework
		status string
		effective, del sql.NullTime
	)
	err := r.Scan(
		&f.ID, &f.FrameworkCode, &f.Name, &f.Version, &f.IssuingAuthority, &f.Description, &effective,
		&status, sqldb.JSONColumn(&f.Tags), &f.CreatedBy, &f.UpdatedBy, &f.CreatedAt, &f.UpdatedAt, &del,
	)
	if err != nil {
		return nil, err
	}
	f.Status = domain.FrameworkStatus(status)
	f.EffectiveDate = sqldb.TimePtr(effective)
	f.DeletedAt = sqldb.TimePtr(del)
	f.CreatedAt = f.CreatedAt.UTC()
	f.UpdatedAt = f.UpdatedAt.UTC()
	if f.Tags == nil {
		f.Tags = []string{}
	}
	return &f, nil
}

func scanRequirement(r scanner) (*domain.FrameworkRequirement, error) {
	var req domain.FrameworkRequirement
	err := r.Scan(
		&req.ID, &req.FrameworkID, &req.RequirementIdentifier, &req.RequirementText, &req.Domain,
		&req.Category, &req.Priority, &req.DisplayOrder, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.CreatedAt = req.CreatedAt.UTC()
	req.UpdatedAt = req.UpdatedAt.UTC()
	return &req, nil
}

func scanMapping(r scanner) (*domain.FrameworkControlMapping, error) {
	var (
		m        domain.FrameworkControlMapping
		coverage string
	)
	err := r.Scan(&m.ID, &m.RequirementID, &m.ControlID, &coverage, &m.MappingNotes, &m.MappedBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.CoverageLevel = domain.CoverageLevel(coverage)
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return &m, nil
}
