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

func (s *defaultStore) CreateFeedback(ctx context.Context, f *domain.SOPFeedback) error {
	q := s.db.Builder().Insert(feedbackTable).
		Columns("id", "sop_id", "user_id", "rating", "comment", "created_at").
		Values(f.ID, f.SOPID, f.UserID, f.Rating, sqldb.NullString(f.Comment), f.CreatedAt)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return fmt.Errorf("failed to insert sop feedback: %w", err)
	}
	return nil
}

func (s *defaultStore) ListFeedback(ctx context.Context, sopID string) ([]domain.SOPFeedback, error) {
	rows, err := s.db.Select(ctx, s.db.Builder().
		Select("id", "sop_id", "user_id", "rating", "COALESCE(comment, '')", "created_at").
		From(feedbackTable).
		Where(sq.Eq{"sop_id": sopID}).
		OrderBy("created_at DESC", "id"))
	if err != nil {
		return nil, fmt.Errorf("failed to query sop feedback: %w", err)
	}
	defer rows.Close()

	items := []domain.SOPFeedback{}
	for rows.Next() {
		var f domain.SOPFeedback
		if err := rows.Scan(&f.ID, &f.SOPID, &f.UserID, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sop feedback: %w", err)
		}
		f.CreatedAt = f.CreatedAt.UTC()
		items = append(items, f)
	}
	return items, rows.Err()
}

// CreateAssignment reports false when the user is already assigned.
func (s *defaultStore) CreateAssignment(ctx context.Context, a *domain.SOPAssignment) (bool, error) {
	n, err := s.db.Count(ctx, s.db.Builder().Select("COUNT(*)").From(assignmentsTable).
		Where(sq.Eq{"sop_id": a.SOPID, "user_id": a.UserID}))
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	q := s.db.Builder().Insert(assignmentsTable).
		Columns("id", "sop_id", "user_id", "assigned_by", "assigned_at").
		Values(a.ID, a.SOPID, a.UserID, sqldb.NullString(a.AssignedBy), a.AssignedAt)
	if _, err := s.db.Execute(ctx, q); err != nil {
		return false, fmt.Errorf("failed to insert sop assignment: %w", err)
	}
	return true, nil
}

func (s *defaultStore) GetAssignment(ctx context.Context, sopID, userID string) (*domain.SOPAssignment, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().
		Select("id", "sop_id", "user_id", "COALESCE(assigned_by, '')", "assigned_at", "acknowledged_at").
		From(assignmentsTable).
		Where(sq.Eq{"sop_id": sopID, "user_id": userID}))
	if err != nil {
		return nil, err
	}
	var (
		a   domain.SOPAssignment
		ack sql.NullTime
	)
	err = row.Scan(&a.ID, &a.SOPID, &a.UserID, &a.AssignedBy, &a.AssignedAt, &ack)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("sop assignment", sopID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sop assignment: %w", err)
	}
	a.AssignedAt = a.AssignedAt.UTC()
	a.AcknowledgedAt = sqldb.TimePtr(ack)
	return &a, nil
}

func (s *defaultStore) Acknowledge(ctx context.Context, sopID, userID string, at time.Time) error {
	res, err := s.db.Execute(ctx, s.db.Builder().Update(assignmentsTable).
		Set("acknowledged_at", domain.NormalizeTime(at)).
		Where(sq.Eq{"sop_id": sopID, "user_id": userID}))
	if err != nil {
		return fmt.Errorf("failed to acknowledge sop: %w", err)
	}
	return sqldb.RowsAffected(res, "sop assignment", sopID)
}

func (s *defaultStore) ListAssigned(ctx context.Context, userID string) ([]domain.AssignedSOP, error) {
	cols := append(append([]string{}, sopColumns...),
		"a.id", "a.user_id", "COALESCE(a.assigned_by, '')", "a.assigned_at", "a.acknowledged_at")
	rows, err := s.db.Select(ctx, s.db.Builder().Select(cols...).
		From(assignmentsTable+" a").
		Join(sopsTable+" s ON s.id = a.sop_id").
		Where(sq.Eq{"a.user_id": userID, "s.deleted_at": nil}).
		OrderBy("a.assigned_at DESC", "a.id"))
	if err != nil {
		return nil, fmt.Errorf("failed to query assigned sops: %w", err)
	}
	defer rows.Close()

	items := []domain.AssignedSOP{}
	for rows.Next() {
		item, err := scanAssigned(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assigned sop: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *defaultStore) CountAssignments(ctx context.Context, acknowledgedOnly bool) (int, error) {
	q := s.db.Builder().Select("COUNT(*)").From(assignmentsTable + " a").
		Join(sopsTable + " s ON s.id = a.sop_id").
		Where(sq.Eq{"s.deleted_at": nil})
	if acknowledgedOnly {
		q = q.Where(sq.NotEq{"a.acknowledged_at": nil})
	}
	return s.db.Count(ctx, q)
}

type rowScanner struct {
	rows  *sql.Rows
	extra []any
}

// Scan appends the assignment destinations to the SOP destinations.
func (r rowScanner) Scan(dest ...any) error {
	return r.rows.Scan(append(dest, r.extra...)...)
}

func scanAssigned(rows *sql.Rows) (*domain.AssignedSOP, error) {
	var (
		a   domain.SOPAssignment
		ack sql.NullTime
	)
	sop, err := scanSOP(rowScanner{rows: rows, extra: []any{&a.ID, &a.UserID, &a.AssignedBy, &a.AssignedAt, &ack}})
	if err != nil {
		return nil, err
	}
	a.SOPID = sop.ID
	a.AssignedAt = a.AssignedAt.UTC()
	a.AcknowledgedAt = sqldb.TimePtr(ack)
	sop.ControlIDs = []string{}
	return &domain.AssignedSOP{SOP: *sop, Assignment: a}, nil
}
