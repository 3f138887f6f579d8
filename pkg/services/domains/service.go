package domains

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/domains"
)

type Service interface {
	Create(ctx context.Context, d *domain.ControlDomain) (*domain.ControlDomain, error)
	Get(ctx context.Context, id string) (*domain.ControlDomain, error)
	List(ctx context.Context, activeOnly bool) ([]domain.ControlDomain, error)
	Update(ctx context.Context, id string, u domain.ControlDomainUpdate) (*domain.ControlDomain, error)
	Delete(ctx context.Context, id, deletedBy string) error
	Tree(ctx context.Context) ([]*domain.DomainNode, error)
}

type service struct {
	store domains.Store
}

func NewService(store domains.Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, d *domain.ControlDomain) (*domain.ControlDomain, error) {
	exists, err := s.store.ExistsCode(ctx, d.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewConflict("domain code %s already exists", d.Code)
	}
	if err := s.checkParent(ctx, d.ParentID); err != nil {
		return nil, err
	}

	now := domain.Now()
	d.ID = uuid.NewString()
	d.UpdatedBy = d.CreatedBy
	d.CreatedAt, d.UpdatedAt = now, now
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, d.ID)
}

func (s *service) checkParent(ctx context.Context, parentID string) error {
	if parentID == "" {
		return nil
	}
	if _, err := s.store.Get(ctx, parentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidation("parent_id", "parent domain does not exist")
		}
		return err
	}
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*domain.ControlDomain, error) {
	return s.store.Get(ctx, id)
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]domain.ControlDomain, error) {
	return s.store.List(ctx, activeOnly)
}

func (s *service) Update(ctx context.Context, id string, u domain.ControlDomainUpdate) (*domain.ControlDomain, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	if u.ParentID != nil && *u.ParentID != "" {
		if *u.ParentID == id {
			return nil, domain.NewValidation("parent_id", "a domain cannot be its own parent")
		}
		if err := s.checkParent(ctx, *u.ParentID); err != nil {
			return nil, err
		}
		all, err := s.store.List(ctx, false)
		if err != nil {
			return nil, err
		}
		parents := make(map[string]string, len(all))
		for _, d := range all {
			parents[d.ID] = d.ParentID
		}
		if createsCycle(id, *u.ParentID, parents) {
			return nil, domain.NewValidation("parent_id", "a domain cannot be its own ancestor")
		}
	}

	if err := s.store.Update(ctx, id, u); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id, deletedBy string) error {
	return s.store.Delete(ctx, id, deletedBy)
}

func (s *service) Tree(ctx context.Context) ([]*domain.DomainNode, error) {
	items, err := s.store.List(ctx, false)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.ControlCounts(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(items, counts), nil
}
