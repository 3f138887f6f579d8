package sops

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

const (
	sopsTable        = "sops"
	controlsTable    = "sop_control_mappings"
	versionsTable    = "sop_versions"
	stepsTable       = "sop_steps"
	schedulesTable   = "sop_schedules"
	executionsTable  = "sop_executions"
	feedbackTable    = "sop_feedback"
	assignmentsTable = "sop_assignments"
)

var sopColumns = []string{
	"s.id", "s.sop_identifier", "s.title", "COALESCE(s.category, '')", "COALESCE(s.subcategory, '')",
	"COALESCE(s.purpose, '')", "COALESCE(s.scope, '')", "COALESCE(s.content, '')", "s.version",
	"s.version_number", "s.status", "COALESCE(s.owner_id, '')", "COALESCE(s.review_frequency, '')",
	"s.next_review_date", "s.approval_date", "s.published_date", "s.tags", "COALESCE(s.created_by, '')",
	"COALESCE(s.updated_by, '')", "s.created_at", "s.updated_at", "s.deleted_at",
}

var defaultSort = domain.Sort{Field: "created_at", Order: domain.SortDesc}

type Store interface {
	Create(ctx context.Context, sop *domain.SOP) error
	Get(ctx context.Context, id string) (*domain.SOP, error)
	ExistsIdentifier(ctx context.Context, identifier string) (bool, error)
	List(ctx context.Context, filter domain.SOPFilter) (domain.ListResult[domain.SOP], error)
	Update(ctx context.Context, id string, u domain.SOPUpdate) error
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
	SetVersion(ctx context.Context, id string, number int, version string) error
	SetControls(ctx context.Context, id string, controlIDs []string) error
	Publish(ctx context.Context, id string, at time.Time, publishedBy string) error
	Delete(ctx context.Context, id, deletedBy string) error
	CountPublished(ctx context.Context, since *time.Time) (int, error)

	CreateVersion(ctx context.Context, v *domain.SOPVersion) error
	ListVersions(ctx context.Context, sopID string) ([]domain.SOPVersion, error)

	CreateStep(ctx context.Context, step *domain.SOPStep) error
	GetStep(ctx context.Context, sopID, stepID string) (*domain.SOPStep, error)
	ListSteps(ctx context.Context, sopID string) ([]domain.SOPStep, error)
	MaxStepNumber(ctx context.Context, sopID string) (int, error)
	StepNumberTaken(ctx context.Context, sopID string, number int, exceptID string) (bool, error)
	UpdateStep(ctx context.Context, sopID, stepID string, u domain.SOPStepUpdate) error
	DeleteStep(ctx context.Context, sopID, stepID string) error

	CreateSchedule(ctx context.Context, sch *domain.SOPSchedule) error
	ListSchedules(ctx context.Context, sopID string) ([]domain.SOPSchedule, error)
	DeleteSchedule(ctx context.Context, sopID, scheduleID string) error
	DueSchedules(ctx context.Context, now time.Time) ([]domain.SOPSchedule, error)
	AdvanceSchedule(ctx context.Context, scheduleID string, next time.Time) error
	CreateExecution(ctx context.Context, e *domain.SOPExecution) error

	CreateFeedback(ctx context.Context, f *domain.SOPFeedback) error
	ListFeedback(ctx context.Context, sopID string) ([]domain.SOPFeedback, error)

	CreateAssignment(ctx context.Context, a *domain.SOPAssignment) (bool, error)
	GetAssignment(ctx context.Context, sopID, userID string) (*domain.SOPAssignment, error)
	Acknowledge(ctx context.Context, sopID, userID string, at time.Time) error
	ListAssigned(ctx context.Context, userID string) ([]domain.AssignedSOP, error)
	CountAssignments(ctx context.Context, acknowledgedOnly bool) (int, error)
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

func (s *defaultStore) Create(ctx context.Context, sop *domain.SOP) error {
	tags, err := sqldb.EncodeJSON(sop.Tags)
	if err != nil {
		return err
	}
	q := s.db.Builder().Insert(sopsTable).
		Columns(
			"id", "sop_identifier", "title", "category", "subcategory", "purpose", "scope", "content",
			"version", "version_number", "status", "owner_id", "review_frequency", "next_review_date",
			"approval_date", "published_date", "tags", "created_by", "updated_by", "created_at", "updated_at",
		).
		Values(
			sop.ID, sop.SOPIdentifier, sop.Title, sqldb.NullString(sop.Category), sqldb.NullString(sop.Subcategory),
			sqldb.NullString(sop.Purpose), sqldb.NullString(sop.Scope), sqldb.NullString(sop.Content),
			sop.Version, sop.VersionNumber, string(sop.Status), sqldb.NullString(sop.OwnerID),
			sqldb.NullString(sop.ReviewFrequency), sqldb.NullTime(sop.NextReviewDate),
			sqldb.NullTime(sop.ApprovalDate), sqldb.NullTime(sop.PublishedDate), tags,
			sqldb.NullString(sop.CreatedBy), sqldb.NullString(sop.UpdatedBy), sop.CreatedAt, sop.UpdatedAt,
		)

	return s.db.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.db.Execute(ctx, q); err != nil {
			return fmt.Errorf("failed to insert sop: %w", err)
		}
		return s.SetControls(ctx, sop.ID, sop.ControlIDs)
	})
}

func (s *defaultStore) Get(ctx context.Context, id string) (*domain.SOP, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select(sopColumns...).From(sopsTable+" s").
		Where(sq.Eq{"s.id": id, "s.deleted_at": nil}))
	if err != nil {
		return nil, err
	}
	sop, err := scanSOP(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("sop", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sop: %w", err)
	}
	if err := s.loadControls(ctx, []*domain.SOP{sop}); err != nil {
		return nil, err
	}
	return sop, nil
}

func (s *defaultStore) ExistsIdentifier(ctx context.Context, identifier string) (bool, error) {
	n, err := s.db.Count(ctx, s.db.Builder().Select("COUNT(*)").From(sopsTable).
		Where(sq.Eq{"sop_identifier": identifier}))
	return n > 0, err
}

func applyFilter(b sq.SelectBuilder, f domain.SOPFilter) sq.SelectBuilder {
	b = b.Where(sq.Eq{"s.deleted_at": nil})
	if f.Status != "" {
		b = b.Where(sq.Eq{"s.status": string(f.Status)})
	}
	if f.Category != "" {
		b = b.Where(sq.Eq{"s.category": f.Category})
	}
	if f.OwnerID != "" {
		b = b.Where(sq.Eq{"s.owner_id": f.OwnerID})
	}
	if f.Search != "" {
		b = b.Where(sqldb.Search(f.Search, "s.title", "s.purpose", "s.content"))
	}
	return b
}

func (s *defaultStore) List(ctx context.Context, f domain.SOPFilter) (domain.ListResult[domain.SOP], error) {
	page := f.Page.Normalize()
	result := domain.ListResult[domain.SOP]{Page: page, Items: []domain.SOP{}}

	total, err := s.db.Count(ctx, applyFilter(s.db.Builder().Select("COUNT(*)").From(sopsTable+" s"), f))
	if err != nil {
		return result, err
	}
	result.Total = total

	sort := f.Sort
	if sort.Field == "" {
		sort = defaultSort
	}
	q := applyFilter(s.db.Builder().Select(sopColumns...).From(sopsTable+" s"), f).
		OrderBy("s."+sort.SQL(), "s.id")
	rows, err := s.db.Select(ctx, sqldb.Paginate(q, page))
	if err != nil {
		return result, fmt.Errorf("failed to query sops: %w", err)
	}
	defer rows.Close()

	var items []*domain.SOP
	for rows.Next() {
		sop, err := scanSOP(rows)
		if err != nil {
			return result, fmt.Errorf("failed to scan sop: %w", err)
		}
		items = append(items, sop)
	}
	if err := rows.Err(); err != nil {
		return result, err
	}
	rows.Close()

	if err := s.loadControls(ctx, items); err != nil {
		return result, err
	}
	for _, sop := range items {
		result.Items = append(result.Items, *sop)
	}
	return result, nil
}

func (s *defaultStore) loadControls(ctx context.Context, items []*domain.SOP) error {
	if len(items) == 0 {
		return nil
	}
	byID := map[string]*domain.SOP{}
	ids := make([]string, 0, len(items))
	for _, sop := range items {
		sop.ControlIDs = []string{}
		byID[sop.ID] = sop
		ids = append(ids, sop.ID)
	}

	rows, err := s.db.Select(ctx, s.db.Builder().Select("sop_id", "control_id").From(controlsTable).
		Where(sq.Eq{"sop_id": ids}).OrderBy("sop_id", "control_id"))
	if err != nil {
		return fmt.Errorf("failed to query sop controls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sopID, controlID string
		if err := rows.Scan(&sopID, &controlID); err != nil {
			return fmt.Errorf("failed to scan sop control: %w", err)
		}
		if sop, ok := byID[sopID]; ok {
			sop.ControlIDs = append(sop.ControlIDs, controlID)
		}
	}
	return rows.Err()
}

func (s *defaultStore) Update(ctx context.Context, id string, u domain.SOPUpdate) error {
	set := map[string]any{"updated_at": domain.Now()}
	if u.UpdatedBy != "" {
		set["updated_by"] = u.UpdatedBy
	}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Subcategory != nil {
		set["subcategory"] = *u.Subcategory
	}
	if u.Purpose != nil {
		set["purpose"] = *u.Purpose
	}
	if u.Scope != nil {
		set["scope"] = *u.Scope
	}
	if u.Content != nil {
		set["content"] = *u.Content
	}
	if u.Version != nil {
		set["version"] = *u.Version
	}
	if u.Status != nil {
		set["status"] = string(*u.Status)
		if *u.Status == domain.SOPApproved {
			set["approval_date"] = domain.Now()
		}
	}
	if u.OwnerID != nil {
		set["owner_id"] = sqldb.NullString(*u.OwnerID)
	}
	if u.ReviewFrequency != nil {
		set["review_frequency"] = *u.ReviewFrequency
	}
	if u.NextReviewDate != nil {
		set["next_review_date"] = sqldb.NullTime(u.NextReviewDate)
	}
	if u.Tags != nil {
		tags, err := sqldb.EncodeJSON(u.Tags)
		if err != nil {
			return err
		}
		set["tags"] = tags
	}

	return s.db.InTx(ctx, func(ctx context.Context) error {
		res, err := s.db.Execute(ctx, s.db.Builder().Update(sopsTable).SetMap(set).
			Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
		if err != nil {
			return fmt.Errorf("failed to update sop: %w", err)
		}
		if err := sqldb.RowsAffected(res, "sop", id); err != nil {
			return err
		}
		if u.ControlIDs != nil {
			return s.SetControls(ctx, id, u.ControlIDs)
		}
		return nil
	})
}

func (s *defaultStore) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	if err := domain.EntitySOP.ValidateStatus(status); err != nil {
		return err
	}
	st := domain.SOPStatus(status)
	return s.Update(ctx, id, domain.SOPUpdate{Status: &st, UpdatedBy: updatedBy})
}

func (s *defaultStore) SetVersion(ctx context.Context, id string, number int, version string) error {
	res, err := s.db.Execute(ctx, s.db.Builder().Update(sopsTable).
		Set("version_number", number).Set("version", version).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to set sop version: %w", err)
	}
	return sqldb.RowsAffected(res, "sop", id)
}

// SetControls replaces the SOP's linked controls.
func (s *defaultStore) SetControls(ctx context.Context, id string, controlIDs []string) error {
	return s.db.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.db.Execute(ctx, s.db.Builder().Delete(controlsTable).Where(sq.Eq{"sop_id": id})); err != nil {
			return fmt.Errorf("failed to clear sop controls: %w", err)
		}
		if len(controlIDs) == 0 {
			return nil
		}
		now := domain.Now()
		seen := map[string]bool{}
		q := s.db.Builder().Insert(controlsTable).Columns("sop_id", "control_id", "created_at")
		for _, cid := range controlIDs {
			if seen[cid] {
				continue
			}
			seen[cid] = true
			q = q.Values(id, cid, now)
		}
		if _, err := s.db.Execute(ctx, q); err != nil {
			return fmt.Errorf("failed to link sop controls: %w", err)
		}
		return nil
	})
}

func (s *defaultStore) Publish(ctx context.Context, id string, at time.Time, publishedBy string) error {
	res, err := s.db.Execute(ctx, s.db.Builder().Update(sopsTable).
		Set("status", string(domain.SOPPublished)).
		Set("published_date", domain.NormalizeTime(at)).
		Set("updated_at", domain.NormalizeTime(at)).
		Set("updated_by", sqldb.NullString(publishedBy)).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to publish sop: %w", err)
	}
	return sqldb.RowsAffected(res, "sop", id)
}

func (s *defaultStore) Delete(ctx context.Context, id, deletedBy string) error {
	now := domain.Now()
	res, err := s.db.Execute(ctx, s.db.Builder().Update(sopsTable).
		Set("deleted_at", now).Set("updated_at", now).Set("updated_by", sqldb.NullString(deletedBy)).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to delete sop: %w", err)
	}
	return sqldb.RowsAffected(res, "sop", id)
}

// CountPublished counts live published SOPs, optionally published since the given time.
func (s *defaultStore) CountPublished(ctx context.Context, since *time.Time) (int, error) {
	q := s.db.Builder().Select("COUNT(*)").From(sopsTable).
		Where(sqldb.NotDeleted).
		Where(sq.Eq{"status": string(domain.SOPPublished)})
	if since != nil {
		q = q.Where(sq.GtOrEq{"published_date": domain.NormalizeTime(*since)})
	}
	return s.db.Count(ctx, q)
}

func (s *defaultStore) CreateVersion(ctx context.Context, v *domain.SOPVersion) error {
	q := s.db.Builder().Insert(versionsTable).
		Columns("id", "sop_id", "version_number", "version", "title", "content", "change_summary", "created_by", "created_at").
		Values(
			v.ID, v.SOPID, v.VersionNumber, v.Version, v.Title, sqldb.NullString(v.Content),
			sqldb.NullString(v.ChangeSummary), sqldb.NullString(v.CreatedBy), v.CreatedAt,
		)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert sop version: %w", err)
	}
	return nil
}

func (s *defaultStore) ListVersions(ctx context.Context, sopID string) ([]domain.SOPVersion, error) {
	rows, err := s.db.Select(ctx, s.db.Builder().
		Select(
			"id", "sop_id", "version_number", "version", "title", "COALESCE(content, '')",
			"COALESCE(change_summary, '')", "COALESCE(created_by, '')", "created_at",
		).
		From(versionsTable).
		Where(sq.Eq{"sop_id": sopID}).
		OrderBy("version_number DESC"))
	if err != nil {
		return nil, fmt.Errorf("failed to query sop versions: %w", err)
	}
	defer rows.Close()

	items := []domain.SOPVersion{}
	for rows.Next() {
		var v domain.SOPVersion
		if err := rows.Scan(
			&v.ID, &v.SOPID, &v.VersionNumber, &v.Version, &v.Title, &v.Content,
			&v.ChangeSummary, &v.CreatedBy, &v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sop version: %w", err)
		}
		v.CreatedAt = v.CreatedAt.UTC()
		items = append(items, v)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSOP(r scanner) (*domain.SOP, error) {
	var (
		sop    domain.SOP
		status string
		nextReview, approval, published, del sql.NullTime
	)
	err := r.Scan(
		&sop.ID, &sop.SOPIdentifier, &sop.Title, &sop.Category, &sop.Subcategory, &sop.Purpose,
		&sop.Scope, &sop.Content, &sop.Version, &sop.VersionNumber, &status, &sop.OwnerID,
		&sop.ReviewFrequency, &nextReview, &approval, &published, sqldb.JSONColumn(&sop.Tags),
		&sop.CreatedBy, &sop.UpdatedBy, &sop.CreatedAt, &sop.UpdatedAt, &del,
	)
	if err != nil {
		return nil, err
	}
	sop.Status = domain.SOPStatus(status)
	sop.NextReviewDate = sqldb.TimePtr(nextReview)
	sop.ApprovalDate = sqldb.TimePtr(approval)
	sop.PublishedDate = sqldb.TimePtr(published)
	sop.DeletedAt = sqldb.TimePtr(del)
	sop.CreatedAt = sop.CreatedAt.UTC()
	sop.UpdatedAt = sop.UpdatedAt.UTC()
	if sop.Tags == nil {
		sop.Tags = []string{}
	}
	return &sop, nil
}
