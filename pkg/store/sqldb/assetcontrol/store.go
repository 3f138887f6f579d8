package assetcontrol

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb"
)

const table = "control_asset_mappings"

var columns = []string{
	"id", "control_id", "asset_id", "asset_type", "implementation_status",
	"COALESCE(implementation_notes, '')", "is_automated", "last_test_date",
	"COALESCE(last_test_result, '')", "effectiveness_score", "COALESCE(mapped_by, '')",
	"mapped_at", "updated_at",
}

type Store interface {
	Create(ctx context.Context, m *domain.ControlAssetMapping) error
	Get(ctx context.Context, controlID string, asset domain.AssetRef) (*domain.ControlAssetMapping, error)
	Exists(ctx context.Context, controlID string, asset domain.AssetRef) (bool, error)
	CountExisting(ctx context.Context, controlID string, assetType domain.AssetType, assetIDs []string) (int, error)
	ListByControl(ctx context.Context, controlID string, page domain.Page) (domain.ListResult[domain.ControlAssetMapping], error)
	ListByAsset(ctx context.Context, asset domain.AssetRef, page domain.Page) (domain.ListResult[domain.ControlAssetMapping], error)
	AllForControl(ctx context.Context, controlID string) ([]domain.ControlAssetMapping, error)
	AllForAsset(ctx context.Context, asset domain.AssetRef) ([]domain.ControlAssetMapping, error)
	Update(ctx context.Context, controlID string, asset domain.AssetRef, u domain.MappingUpdate) error
	Delete(ctx context.Context, controlID string, asset domain.AssetRef) error
	UpdateStatus(ctx context.Context, ids []string, status domain.ImplementationStatus) (int, error)
	Matrix(ctx context.Context, filter domain.MatrixFilter) ([]domain.MatrixRow, error)
	Stats(ctx context.Context) (domain.MatrixStats, error)
	CountByAssetType(ctx context.Context, status domain.ImplementationStatus) (map[string]int, error)
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

func assetEq(controlID string, asset domain.AssetRef) sq.Eq {
	return sq.Eq{"control_id": controlID, "asset_type": string(asset.Type), "asset_id": asset.ID}
}

func (s *defaultStore) Create(ctx context.Context, m *domain.ControlAssetMapping) error {
	q := s.db.Builder().Insert(table).
		Columns(
			"id", "control_id", "asset_id", "asset_type", "implementation_status", "implementation_notes",
			"is_automated", "last_test_date", "last_test_result", "effectiveness_score", "mapped_by",
			"mapped_at", "updated_at",
		).
		Values(
			m.ID, m.ControlID, m.AssetID, string(m.AssetType), string(m.ImplementationStatus),
			sqldb.NullString(m.ImplementationNotes), m.IsAutomated, sqldb.NullTime(m.LastTestDate),
			sqldb.NullString(m.LastTestResult), sqldb.NullFloat(m.EffectivenessScore),
			sqldb.NullString(m.MappedBy), m.MappedAt, m.UpdatedAt,
		)
	if _, err := s.db.Execute(ctx, q); err != nil {
		if sqldb.IsUniqueViolation(err) {
			return domain.NewConflict("control is already mapped to %s asset %s", m.AssetType, m.AssetID)
		}
		return fmt.Errorf("failed to insert control asset mapping: %w", err)
	}
	return nil
}

func (s *defaultStore) Get(ctx context.Context, controlID string, asset domain.AssetRef) (*domain.ControlAssetMapping, error) {
	row, err := s.db.SelectRow(ctx, s.db.Builder().Select(columns...).From(table).Where(assetEq(controlID, asset)))
	if err != nil {
		return nil, err
	}
	m, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("control asset mapping", string(asset.Type)+"/"+asset.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get control asset mapping: %w", err)
	}
	return m, nil
}

func (s *defaultStore) Exists(ctx context.Context, controlID string, asset domain.AssetRef) (bool, error) {
	n, err := s.db.Count(ctx, s.db.Builder().Select("COUNT(*)").From(table).Where(assetEq(controlID, asset)))
	return n > 0, err
}

func (s *defaultStore) CountExisting(ctx context.Context, controlID string, assetType domain.AssetType, assetIDs []string) (int, error) {
	if len(assetIDs) == 0 {
		return 0, nil
	}
	return s.db.Count(ctx, s.db.Builder().Select("COUNT(*)").From(table).
		Where(sq.Eq{"control_id": controlID, "asset_type": string(assetType), "asset_id": assetIDs}))
}

func (s *defaultStore) page(ctx context.Context, where sq.Eq, page domain.Page) (domain.ListResult[domain.ControlAssetMapping], error) {
	page = page.Normalize()
	result := domain.ListResult[domain.ControlAssetMapping]{Page: page, Items: []domain.ControlAssetMapping{}}

	total, err := s.db.Count(ctx, s.db.Builder().Select("COUNT(*)").From(table).Where(where))
	if err != nil {
		return result, err
	}
	result.Total = total

	q := s.db.Builder().Select(columns...).From(table).Where(where).OrderBy("mapped_at DESC", "id")
	result.Items, err = s.collect(ctx, sqldb.Paginate(q, page))
	return result, err
}

func (s *defaultStore) ListByControl(ctx context.Context, controlID string, page domain.Page) (domain.ListResult[domain.ControlAssetMapping], error) {
	return s.page(ctx, sq.Eq{"control_id": controlID}, page)
}

func (s *defaultStore) ListByAsset(ctx context.Context, asset domain.AssetRef, page domain.Page) (domain.ListResult[domain.ControlAssetMapping], error) {
	return s.page(ctx, sq.Eq{"asset_type": string(asset.Type), "asset_id": asset.ID}, page)
}

func (s *defaultStore) AllForControl(ctx context.Context, controlID string) ([]domain.ControlAssetMapping, error) {
	return s.collect(ctx, s.db.Builder().Select(columns...).From(table).
		Where(sq.Eq{"control_id": controlID}).OrderBy("mapped_at DESC", "id"))
}

func (s *defaultStore) AllForAsset(ctx context.Context, asset domain.AssetRef) ([]domain.ControlAssetMapping, error) {
	return s.collect(ctx, s.db.Builder().Select(columns...).From(table).
		Where(sq.Eq{"asset_type": string(asset.Type), "asset_id": asset.ID}).OrderBy("mapped_at DESC", "id"))
}

func (s *defaultStore) Update(ctx context.Context, controlID string, asset domain.AssetRef, u domain.MappingUpdate) error {
	set := map[string]any{"updated_at": domain.Now()}
	if u.ImplementationStatus != nil {
		set["implementation_status"] = string(*u.ImplementationStatus)
	}
	if u.ImplementationNotes != nil {
		set["implementation_notes"] = *u.ImplementationNotes
	}
	if u.IsAutomated != nil {
		set["is_automated"] = *u.IsAutomated
	}
	if u.LastTestDate != nil {
		set["last_test_date"] = sqldb.NullTime(u.LastTestDate)
	}
	if u.LastTestResult != nil {
		set["last_test_result"] = *u.LastTestResult
	}
	if u.EffectivenessScore != nil {
		set["effectiveness_score"] = *u.EffectivenessScore
	}

	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).SetMap(set).Where(assetEq(controlID, asset)))
	if err != nil {
		return fmt.Errorf("failed to update control asset mapping: %w", err)
	}
	return sqldb.RowsAffected(res, "control asset mapping", string(asset.Type)+"/"+asset.ID)
}

func (s *defaultStore) Delete(ctx context.Context, controlID string, asset domain.AssetRef) error {
	res, err := s.db.Execute(ctx, s.db.Builder().Delete(table).Where(assetEq(controlID, asset)))
	if err != nil {
		return fmt.Errorf("failed to delete control asset mapping: %w", err)
	}
	return sqldb.RowsAffected(res, "control asset mapping", string(asset.Type)+"/"+asset.ID)
}

func (s *defaultStore) UpdateStatus(ctx context.Context, ids []string, status domain.ImplementationStatus) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.Execute(ctx, s.db.Builder().Update(table).
		Set("implementation_status", string(status)).
		Set("updated_at", domain.Now()).
		Where(sq.Eq{"id": ids}))
	if err != nil {
		return 0, fmt.Errorf("failed to update mapping status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}

func (s *defaultStore) Matrix(ctx context.Context, f domain.MatrixFilter) ([]domain.MatrixRow, error) {
	q := s.db.Builder().
		Select("c.id", "c.control_identifier", "c.title", "m.asset_id", "m.implementation_status").
		From("unified_controls c").
		Join("control_asset_mappings m ON m.control_id = c.id").
		Where(sq.Eq{"c.deleted_at": nil}).
		OrderBy("c.control_identifier", "m.asset_id")
	if f.AssetType != "" {
		q = q.Where(sq.Eq{"m.asset_type": string(f.AssetType)})
	}
	if f.DomainID != "" {
		q = q.Where(sq.Eq{"c.domain_id": f.DomainID})
	}
	if f.ImplementationStatus != "" {
		q = q.Where(sq.Eq{"m.implementation_status": string(f.ImplementationStatus)})
	}

	rows, err := s.db.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query mapping matrix: %w", err)
	}
	defer rows.Close()

	matrix := []domain.MatrixRow{}
	for rows.Next() {
		var controlID, identifier, title, assetID, status string
		if err := rows.Scan(&controlID, &identifier, &title, &assetID, &status); err != nil {
			return nil, fmt.Errorf("failed to scan mapping matrix: %w", err)
		}
		if n := len(matrix); n == 0 || matrix[n-1].ControlID != controlID {
			matrix = append(matrix, domain.MatrixRow{
				ControlID:         controlID,
				ControlIdentifier: identifier,
				ControlTitle:      title,
				Assets:            map[string]domain.ImplementationStatus{},
			})
		}
		matrix[len(matrix)-1].Assets[assetID] = domain.ImplementationStatus(status)
	}
	return matrix, rows.Err()
}

func (s *defaultStore) Stats(ctx context.Context) (domain.MatrixStats, error) {
	stats := domain.MatrixStats{
		ByStatus:    map[domain.ImplementationStatus]int{},
		ByAssetType: map[domain.AssetType]int{},
	}
	for _, st := range domain.ImplementationStatuses {
		stats.ByStatus[st] = 0
	}
	for _, t := range domain.AssetTypes {
		stats.ByAssetType[t] = 0
	}

	base := s.db.Builder().Select().From(table)
	byStatus, err := s.db.CountBy(ctx, base, "implementation_status")
	if err != nil {
		return stats, err
	}
	for k, n := range byStatus {
		stats.ByStatus[domain.ImplementationStatus(k)] = n
		stats.TotalMappings += n
	}
	byType, err := s.db.CountBy(ctx, base, "asset_type")
	if err != nil {
		return stats, err
	}
	for k, n := range byType {
		stats.ByAssetType[domain.AssetType(k)] = n
	}

	row, err := s.db.SelectRow(ctx, s.db.Builder().Select("AVG(effectiveness_score)").From(table).
		Where(sq.NotEq{"effectiveness_score": nil}))
	if err != nil {
		return stats, err
	}
	var avg sql.NullFloat64
	if err := row.Scan(&avg); err != nil {
		return stats, fmt.Errorf("failed to read average effectiveness: %w", err)
	}
	stats.AverageEffectiveness = domain.Round2(avg.Float64)

	stats.UnmappedControls, err = s.db.Count(ctx, s.db.Builder().Select("COUNT(*)").From("unified_controls").
		Where(sqldb.NotDeleted).
		Where(sq.Expr("NOT EXISTS (SELECT 1 FROM control_asset_mappings m WHERE m.control_id = unified_controls.id)")))
	return stats, err
}

// CountByAssetType counts mappings per asset type, restricted to status when set.
func (s *defaultStore) CountByAssetType(ctx context.Context, status domain.ImplementationStatus) (map[string]int, error) {
	b := s.db.Builder().Select().From(table)
	if status != "" {
		b = b.Where(sq.Eq{"implementation_status": string(status)})
	}
	return s.db.CountBy(ctx, b, "asset_type")
}

func (s *defaultStore) collect(ctx context.Context, q sq.SelectBuilder) ([]domain.ControlAssetMapping, error) {
	rows, err := s.db.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query control asset mappings: %w", err)
	}
	defer rows.Close()

	items := []domain.ControlAssetMapping{}
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan control asset mapping: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (*domain.ControlAssetMapping, error) {
	var (
		m domain.ControlAssetMapping
		assetType, status string
		lastTest sql.NullTime
		score    sql.NullFloat64
	)
	err := r.Scan(
		&m.ID, &m.ControlID, &m.AssetID, &assetType, &status, &m.ImplementationNotes, &m.IsAutomated,
		&lastTest, &m.LastTestResult, &score, &m.MappedBy, &m.MappedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.AssetType = domain.AssetType(assetType)
	m.ImplementationStatus = domain.ImplementationStatus(status)
	m.LastTestDate = sqldb.TimePtr(lastTest)
	m.EffectivenessScore = sqldb.FloatPtr(score)
	m.MappedAt = m.MappedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return &m, nil
}
