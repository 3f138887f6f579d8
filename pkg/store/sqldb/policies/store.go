package policies

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
	table     = "policies"
	ackTable  = "policy_acknowledgments"
	ackEntity = "policy acknowledgment"
)

var columns = []string{
	"id", "title", "COALESCE(policy_type, '')", "status", "COALESCE(owner_id, '')", "COALESCE(version, '')",
	"COALESCE(content, '')", "effective_date", "COALESCE(created_by, '')", "COALESCE(updated_by, '')",
	"created_at", "updated_at", "deleted_at",
}

type Store interface {
	Create(ctx context.Context, p *domain.Policy) error
	Get(ctx context.Context, id string) (*domain.Policy, error)
	List(ctx context.Context, filter domain.PolicyFilter) (domain.ListResult[domain.Policy], error)
	Update(ctx context.Context, id string, u domain.PolicyUpdate) error
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
	Delete(ctx context.Context, id, deletedBy string) error
	Acknowledge(ctx context.Context, ack *domain.PolicyAcknowledgment) (*domain.PolicyAcknowledgment, error)
	ListAcknowledgments(ctx context.Context, policyID string) ([]domain.PolicyAcknowledgment, error)
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

func (s *defaultStore) Create(ctx context.Context, p *domain.Policy) error {
	q := s.db.Builder().Insert(table).
		Columns(
			"id", "title", "policy_type", "status", "owner_id", "version", "content", "effective_date",
			"created_by", "updated_by", "created_at", "updated_at",
		).
		Values(
			p.ID, p.Title, sqldb.NullString(p.PolicyType), string(p.Status), sqldb.NullString(p.OwnerID),
			sqldb.NullString(p.Version), sqldb.NullString(p.Content), sqldb.NullTime(p.EffectiveDate),
			sqldb.NullString(p.CreatedBy), sqldb.NullString(p.UpdatedBy), p.CreatedAt, p.UpdatedAt,
		)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert policy: %w", err)
	}
	return nil
}

func (s *defaultStore) Get(ctx context.Context, id string) (*domain.Policy, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select(columns...).From(table).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return nil, err
	}
	p, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("policy", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}
	return p, nil
}

func applyFilter(b sq.SelectBuilder, f domain.PolicyFilter) sq.SelectBuilder {
	b = b.Where(sqldb.NotDeleted)
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": string(f.Status)})
	}
	if f.PolicyType != "" {
		b = b.Where(sq.Eq{"policy_type": f.PolicyType})
	}
	if f.OwnerID != "" {
		b = b.Where(sq.Eq{"owner_id": f.OwnerID})
	}
	if f.Search != "" {
		b = b.Where(sqldb.Search(f.Search, "title", "content"))
	}
	return b
}

func (s *defaultStore) List(ctx context.Context, f domain.PolicyFilter) (domain.ListResult[domain.Policy], error) {
	page := f.Page.Normalize()
	result := domain.ListResult[domain.Policy]{Page: page, Items: []domain.Policy{}}

	total, err := s.db.Count(ctx, applyFilter(s.db.Builder().Select("COUNT(*)").From(table), f))
	if err != nil {
		return result, err
	}
	result.Total = total

	q := applyFilter(s.db.Builder().Select(columns...).From(table), f).OrderBy("created_at DESC", "id")
	rows, err := s.db.Select(ctx, sqldb.Paginate(q, page))
	if err != nil {
		return result, fmt.Errorf("failed to query policies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return result, fmt.Errorf("failed to scan policy: %w", err)
		}
		result.Items = append(result.Items, *p)
	}
	return result, rows.Err()
}

func (s *defaultStore) Update(ctx context.Context, id string, u domain.PolicyUpdate) error {
	set := map[string]any{"updated_at": domain.Now()}
	if u.UpdatedBy != "" {
		set["updated_by"] = u.UpdatedBy
	}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.PolicyType != nil {
		set["policy_type"] = *u.PolicyType
	}
	if u.Status != nil {
		set["status"] = string(*u.Status)
	}
	if u.OwnerID != nil {
		set["owner_id"] = sqldb.NullString(*u.OwnerID)
	}
	if u.Version != nil {
		set["version"] = *u.Version
	}
	if u.Content != nil {
		set["content"] = *u.Content
	}
	if u.EffectiveDate != nil {
		set["effective_date"] = sqldb.NullTime(u.EffectiveDate)
	}
	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).SetMap(set).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to update policy: %w", err)
	}
	return sqldb.RowsAffected(res, "policy", id)
}

func (s *defaultStore) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	if err := domain.EntityPolicy.ValidateStatus(status); err != nil {
		return err
	}
	st := domain.PolicyStatus(status)
	return s.Update(ctx, id, domain.PolicyUpdate{Status: &st, UpdatedBy: updatedBy})
}

func (s *defaultStore) Delete(ctx context.Context, id, deletedBy string) error {
	now := domain.Now()
	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).
		Set("deleted_at", now).Set("updated_at", now).Set("updated_by", sqldb.NullString(deletedBy)).
		Where(sq.Eq{"id": id}).Where(sqldb.NotDeleted))
	if err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	return sqldb.RowsAffected(res, "policy", id)
}

// Acknowledge records the acknowledgment once and returns the stored row.
func (s *defaultStore) Acknowledge(ctx context.Context, ack *domain.PolicyAcknowledgment) (*domain.PolicyAcknowledgment, error) {
	var stored *domain.PolicyAcknowledgment
	err := s.db.InTx(ctx, func(ctx context.Context) error {
		existing, err := s.getAck(ctx, ack.PolicyID, ack.UserID)
		if err == nil {
			stored = existing
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		q := s.db.Builder().Insert(ackTable).
			Columns("policy_id", "user_id", "acknowledged_at").
			Values(ack.PolicyID, ack.UserID, domain.NormalizeTime(ack.AcknowledgedAt))
		if _, err := s.db.Execute(ctx, q); err != nil {
			return fmt.Errorf("failed to insert policy acknowledgment: %w", err)
		}
		stored = ack
		return nil
	})
	return stored, err
}

func (s *defaultStore) getAck(ctx context.Context, policyID, userID string) (*domain.PolicyAcknowledgment, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select("policy_id", "user_id", "acknowledged_at").
		From(ackTable).Where(sq.Eq{"policy_id": policyID, "user_id": userID}))
	if err != nil {
		return nil, err
	}
	var a domain.PolicyAcknowledgment
	err = row.Scan(&a.PolicyID, &a.UserID, &a.AcknowledgedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound(ackEntity, policyID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get policy acknowledgment: %w", err)
	}
	a.AcknowledgedAt = a.AcknowledgedAt.UTC()
	return &a, nil
}

func (s *defaultStore) ListAcknowledgments(ctx context.Context, policyID string) ([]domain.PolicyAcknowledgment, error) {
	rows, err := s.db.Select(ctx, s.db.Builder().Select("policy_id", "user_id", "acknowledged_at").
		From(ackTable).Where(sq.Eq{"policy_id": policyID}).OrderBy("acknowledged_at", "user_id"))
	if err != nil {
		return nil, fmt.Errorf("failed to query policy acknowledgments: %w", err)
	}
	defer rows.Close()

	items := []domain.PolicyAcknowledgment{}
	for rows.Next() {
		var (
			a  domain.PolicyAcknowledgment
			at time.Time
		)
		if err := rows.Scan(&a.PolicyID, &a.UserID, &at); err != nil {
			return nil, fmt.Errorf("failed to scan policy acknowledgment: %w", err)
		}
		a.AcknowledgedAt = at.UTC()
		items = append(items, a)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (*domain.Policy, error) {
	var (
		p      domain.Policy
		status string
		effective, del sql.NullTime
	)
	err := r.Scan(
		&p.ID, &p.Title, &p.PolicyType, &status, &p.OwnerID, &p.Version, &p.Content, &effective,
		&p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt, &del,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.PolicyStatus(status)
	p.EffectiveDate = sqldb.TimePtr(effective)
	p.DeletedAt = sqldb.TimePtr(del)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}
