package assetcontrol

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/assetcontrol"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/controls"
)

// Transactor runs fn inside one database transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type BulkMapRequest struct {
	AssetType            domain.AssetType
	AssetIDs             []string
	ImplementationStatus domain.ImplementationStatus
	ImplementationNotes  string
	MappedBy             string
}

type Service interface {
	Map(ctx context.Context, m *domain.ControlAssetMapping) (*domain.ControlAssetMapping, error)
	MapBulk(ctx context.Context, controlID string, req BulkMapRequest) ([]domain.ControlAssetMapping, error)
	ListByControl(ctx context.Context, controlID string, page domain.Page) (domain.ListResult[domain.ControlAssetMapping], error)
	ListByAsset(ctx context.Context, asset domain.AssetRef, page domain.Page) (domain.ListResult[domain.ControlAssetMapping], error)
	Update(ctx context.Context, controlID string, asset domain.AssetRef, u domain.MappingUpdate) (*domain.ControlAssetMapping, error)
	Delete(ctx context.Context, controlID string, asset domain.AssetRef) error
	BulkUpdateStatus(ctx context.Context, ids []string, status domain.ImplementationStatus) (int, error)

	AssetCompliance(ctx context.Context, asset domain.AssetRef) (domain.AssetCompliance, error)
	ControlEffectiveness(ctx context.Context, controlID string) (domain.ControlEffectiveness, error)
	Matrix(ctx context.Context, filter domain.MatrixFilter) ([]domain.MatrixRow, error)
	MatrixStats(ctx context.Context) (domain.MatrixStats, error)
	Unmapped(ctx context.Context, page domain.Page) (domain.ListResult[domain.UnifiedControl], error)
	ComplianceByAssetType(ctx context.Context) ([]domain.AssetTypeCompliance, error)
}

type service struct {
	store    assetcontrol.Store
	controls controls.Store
	tx       Transactor
}

func NewService(store assetcontrol.Store, controlStore controls.Store, tx Transactor) Service {
	return &service{store: store, controls: controlStore, tx: tx}
}

func (s *service) Map(ctx context.Context, m *domain.ControlAssetMapping) (*domain.ControlAssetMapping, error) {
	if _, err := s.controls.Get(ctx, m.ControlID); err != nil {
		return nil, err
	}
	asset := domain.AssetRef{Type: m.AssetType, ID: m.AssetID}
	exists, err := s.store.Exists(ctx, m.ControlID, asset)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewConflict("control is already mapped to %s asset %s", m.AssetType, m.AssetID)
	}

	now := domain.Now()
	m.ID = uuid.NewString()
	if m.ImplementationStatus == "" {
		m.ImplementationStatus = domain.ImplNotImplemented
	}
	m.MappedAt, m.UpdatedAt = now, now

	if err := s.store.Create(ctx, m); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, m.ControlID, asset)
}

// MapBulk maps the control to every requested asset or to none of them.
func (s *service) MapBulk(ctx context.Context, controlID string, req BulkMapRequest) ([]domain.ControlAssetMapping, error) {
	if len(req.AssetIDs) == 0 {
		return nil, domain.NewValidation("asset_ids", "at least one asset id is required")
	}
	seen := make(map[string]struct{}, len(req.AssetIDs))
	for _, id := range req.AssetIDs {
		if _, dup := seen[id]; dup {
			return nil, domain.NewValidation("asset_ids", fmt.Sprintf("asset %s is listed more than once", id))
		}
		seen[id] = struct{}{}
	}
	if _, err := s.controls.Get(ctx, controlID); err != nil {
		return nil, err
	}

	existing, err := s.store.CountExisting(ctx, controlID, req.AssetType, req.AssetIDs)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, domain.NewConflict("%d of the requested assets are already mapped to this control", existing)
	}

	if req.ImplementationStatus == "" {
		req.ImplementationStatus = domain.ImplNotImplemented
	}
	now := domain.Now()
	created := make([]domain.ControlAssetMapping, 0, len(req.AssetIDs))
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		for _, assetID := range req.AssetIDs {
			m := domain.ControlAssetMapping{
				ID:                   uuid.NewString(),
				ControlID:            controlID,
				AssetID:              assetID,
				AssetType:            req.AssetType,
				ImplementationStatus: req.ImplementationStatus,
				ImplementationNotes:  req.ImplementationNotes,
				MappedBy:             req.MappedBy,
				MappedAt:             now,
				UpdatedAt:            now,
			}
			if err := s.store.Create(ctx, &m); err != nil {
				return err
			}
			created = append(created, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("control_id", controlID).
		Str("asset_type", string(req.AssetType)).
		Int("mapped", len(created)).
		Msg("control mapped to assets")
	return created, nil
}

func (s *service) ListByControl(ctx context.Context, controlID string, page domain.Page) (domain.ListResult[domain.ControlAssetMapping], error) {
	return s.store.ListByControl(ctx, controlID, page)
}

func (s *service) ListByAsset(ctx context.Context, asset domain.AssetRef, page domain.Page) (domain.ListResult[domain.ControlAssetMapping], error) {
	return s.store.ListByAsset(ctx, asset, page)
}

func (s *service) Update(
	ctx context.Context,
	controlID string,
	asset domain.AssetRef,
	u domain.MappingUpdate,
) (*domain.ControlAssetMapping, error) {
	if err := s.store.Update(ctx, controlID, asset, u); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, controlID, asset)
}

func (s *service) Delete(ctx context.Context, controlID string, asset domain.AssetRef) error {
	return s.store.Delete(ctx, controlID, asset)
}

func (s *service) BulkUpdateStatus(ctx context.Context, ids []string, status domain.ImplementationStatus) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.store.UpdateStatus(ctx, ids, status)
}

func (s *service) AssetCompliance(ctx context.Context, asset domain.AssetRef) (domain.AssetCompliance, error) {
	mappings, err := s.store.AllForAsset(ctx, asset)
	if err != nil {
		return domain.AssetCompliance{}, err
	}
	return Compliance(asset, mappings), nil
}

func (s *service) ControlEffectiveness(ctx context.Context, controlID string) (domain.ControlEffectiveness, error) {
	if _, err := s.controls.Get(ctx, controlID); err != nil {
		return domain.ControlEffectiveness{}, err
	}
	mappings, err := s.store.AllForControl(ctx, controlID)
	if err != nil {
		return domain.ControlEffectiveness{}, err
	}
	return Effectiveness(controlID, mappings), nil
}

func (s *service) Matrix(ctx context.Context, filter domain.MatrixFilter) ([]domain.MatrixRow, error) {
	return s.store.Matrix(ctx, filter)
}

func (s *service) MatrixStats(ctx context.Context) (domain.MatrixStats, error) {
	return s.store.Stats(ctx)
}

func (s *service) Unmapped(ctx context.Context, page domain.Page) (domain.ListResult[domain.UnifiedControl], error) {
	return s.controls.ListUnmapped(ctx, page)
}

func (s *service) ComplianceByAssetType(ctx context.Context) ([]domain.AssetTypeCompliance, error) {
	totals, err := s.store.CountByAssetType(ctx, "")
	if err != nil {
		return nil, err
	}
	implemented, err := s.store.CountByAssetType(ctx, domain.ImplImplemented)
	if err != nil {
		return nil, err
	}
	return ByAssetType(totals, implemented), nil
}
