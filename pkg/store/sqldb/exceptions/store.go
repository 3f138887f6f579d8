package exceptions

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

const table = "policy_exceptions"

var columns = []string{
	"id", "exception_identifier", "policy_id", "title", "justification", "risk_level", "status",
	"COALESCE(requested_by, '')", "COALESCE(approved_by, '')", "approved_at", "COALESCE(decision_notes, '')",
	"start_date", "end_date", "COALESCE(created_by, '')", "COALESCE(updated_by, '')", "created_at",
	"updated_at", "deleted_at",
}

type Store interface {
	Create(ctx context.Context, e *domain.PolicyException) error
	Get(ctx context.Context, id string) (*domain.PolicyException, error)
	ExistsIdentifier(ctx context.Context, identifier string) (bool, error)
	List(ctx context.Context, filter domain.ExceptionFilter) (domain.ListResult[domain.PolicyException], error)
	Update(ctx context.Context, id string, u domain.ExceptionUpdate) error
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
	Decide(ctx context.Context, id string, status domain.ExceptionStatus, d domain.ExceptionDecision, at time.Time) error
	Delete(ctx context.Context, id, deletedBy string) error
	ExpireBefore(ctx context.Context, now time.Time) (int, error)
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

func (s *defaultStore) Create(ctx context.Context, e *domain.PolicyException) error {
	q := s.db.Builder().Insert(table).
		Columns(
			"id", "exception_identifier", "policy_id", "title", "justification", "risk_level", "status",
			"requested_by", "start_date", "end_date", "created_by", "updated_by", "created_at", "updated_at",
		).
		Values(
			e.ID, e.ExceptionIdentifier, e.PolicyID, e.Title, e.Justification, string(e.RiskLevel),
			string(e.Status), sqldb.NullString(e.RequestedBy), sqldb.NullTime(e.StartDate),
			sqldb.NullTime(e.EndDate), sqldb.NullString(e.CreatedBy), sqldb.NullString(e.UpdatedBy),
			e.CreatedAt, e.UpdatedAt,
		)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert policy exception: %w", err)
	}
	return nil
}

func (s *defaultStore) Get(ctx context.Context, id string) (*domain.PolicyException, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select(columns...).From(table).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return nil, err
	}
	e, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("policy exception", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get policy exception: %w", err)
	}
	return e, nil
}

func (s *defaultStore) ExistsIdentifier(ctx context.Context, identifier string) (bool, error) {
	n, err := s.db.Count(ctx, s.db.Builder().Select("COUNT(*)").From(table).
		Where(sq.Eq{"exception_identifier": identifier}))
	return n > 0, err
}

func applyFilter(b sq.SelectBuilder, f domain.ExceptionFilter) sq.SelectBuilder {
	b = b.Where(sqldb.NotDeleted)
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": string(f.Status)})
	}
	if f.PolicyID != "" {
		b = b.Where(sq.Eq{"policy_id": f.PolicyID})
	}
	if f.RiskLevel != "" {
		b = b.Where(sq.Eq{"risk_level": string(f.RiskLevel)})
	}
	if f.Search != "" {
		b = b.Where(sqldb.Search(f.Search, "title", "justification", "exception_identifier"))
	}
	return b
}

func (s *defaultStore) List(ctx context.Context, f domain.ExceptionFilter) (domain.ListResult[domain.PolicyException], error) {
	page := f.Page.Normalize()
	result := domain.ListResult[domain.PolicyException]{Page: page, Items: []domain.PolicyException{}}

	total, err := s.db.Count(ctx, applyFilter(s.db.Builder().Select("COUNT(*)").From(table), f))
	if err != nil {
		return result, err
	}
	result.Total = total

	q := applyFilter(s.db.Builder().Select(columns...).From(table), f).OrderBy("created_at DESC", "id")
	rows, err := s.db.Select(ctx, sqldb.Paginate(q, page))
	if err != nil {
		return result, fmt.Errorf("failed to query policy exceptions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return result, fmt.Errorf("failed to scan policy exception: %w", err)
		}
		result.Items = append(result.Items, *e)
	}
	return result, rows.Err()
}

func (s *defaultStore) Update(ctx context.Context, id string, u domain.ExceptionUpdate) error {
	set := map[string]any{"updated_at": domain.Now()}
	if u.UpdatedBy != "" {
		set["updated_by"] = u.UpdatedBy
	}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Justification != nil {
		set["justification"] = *u.Justification
	}
	if u.RiskLevel != nil {
		set["risk_level"] = string(*u.RiskLevel)
	}
	if u.StartDate != nil {
		set["start_date"] = sqldb.NullTime(u.StartDate)
	}
	if u.EndDate != nil {
		set["end_date"] = sqldb.NullTime(u.EndDate)
	}
	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).SetMap(set).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to update policy exception: %w", err)
	}
	return sqldb.RowsAffected(res, "policy exception", id)
}

func (s *defaultStore) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	if err := domain.EntityPolicyException.ValidateStatus(status); err != nil {
		return err
	}
	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).
		Set("status", status).
		Set("updated_at", domain.Now()).
		Set("updated_by", sqldb.NullString(updatedBy)).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to update policy exception status: %w", err)
	}
	return sqldb.RowsAffected(res, "policy exception", id)
}

// Decide applies an approval or rejection to a requested exception.
func (s *defaultStore) Decide(ctx context.Context, id string, status domain.ExceptionStatus, d domain.ExceptionDecision, at time.Time) error {
	at = domain.NormalizeTime(at)
	b := s.db.Builder().Update(table).
		Set("status", string(status)).
		Set("approved_by", sqldb.NullString(d.DecidedBy)).
		Set("approved_at", at).
		Set("decision_notes", sqldb.NullString(d.Notes)).
		Set("updated_at", at).
		Set("updated_by", sqldb.NullString(d.DecidedBy))
	if d.StartDate != nil {
		b = b.Set("start_date", sqldb.NullTime(d.StartDate))
	}
	if d.EndDate != nil {
		b = b.Set("end_date", sqldb.NullTime(d.EndDate))
	}
	res, err := s.db.Execute(ctx, b.Where(sq.Eq{"id": id, "status": string(domain.ExceptionRequested)}).
		Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to decide policy exception: %w", err)
	}
	return sqldb.RowsAffected(res, "policy exception", id)
}

func (s *defaultStore) Delete(ctx context.Context, id, deletedBy string) error {
	now := domain.Now()
	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).
		Set("deleted_at", now).Set("updated_at", now).Set("updated_by", sqldb.NullString(deletedBy)).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to delete policy exception: %w", err)
	}
	return sqldb.RowsAffected(res, "policy exception", id)
}

// ExpireBefore marks approved exceptions whose end date has passed as expired.
func (s *defaultStore) ExpireBefore(ctx context.Context, now time.Time) (int, error) {
	now = domain.NormalizeTime(now)
	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).
		Set("status", string(domain.ExceptionExpired)).
		Set("updated_at", now).
		Where(sq.Eq{"status": string(domain.ExceptionApproved)}).
		Where(sq.Lt{"end_date": now}).
		Where(sqldb.NotDeleted))
	if err != nil {
		return 0, fmt.Errorf("failed to expire policy exceptions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (*domain.PolicyException, error) {
	var (
		e domain.PolicyException
		risk, status                    string
		approvedAt, start, end, deleted sql.NullTime
	)
	err := r.Scan(
		&e.ID, &e.ExceptionIdentifier, &e.PolicyID, &e.Title, &e.Justification, &risk, &status,
		&e.RequestedBy, &e.ApprovedBy, &approvedAt, &e.DecisionNotes, &start, &end,
		&e.CreatedBy, &e.UpdatedBy, &e.CreatedAt, &e.UpdatedAt, &deleted,
	)
	if err != nil {
		return nil, err
	}
	e.RiskLevel = domain.RiskLevel(risk)
	e.Status = domain.ExceptionStatus(status)
	e.ApprovedAt = sqldb.TimePtr(approvedAt)
	e.StartDate = sqldb.TimePtr(start)
	e.EndDate = sqldb.TimePtr(end)
	e.DeletedAt = sqldb.TimePtr(deleted)
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}
