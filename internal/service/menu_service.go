package service

import (
	"context"
	"fmt"
	"strings"

	"cafe-order-service/internal/entity"
)

type CatalogStore interface {
	ListMenuItems(ctx context.Context) ([]*entity.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *entity.MenuItem) (*entity.MenuItem, error)
}

// MenuService owns the catalog that carts and orders read from.
type MenuService struct {
	repo CatalogStore
}

func NewMenuService(repo CatalogStore) *MenuService {
	return &MenuService{repo: repo}
}

func (s *MenuService) List(ctx context.Context) ([]*entity.MenuItem, error) {
	return s.repo.ListMenuItems(ctx)
}

// Create validates and stores a new catalog item. Items start available
// unless the caller says otherwise.
func (s *MenuService) Create(ctx context.Context, item *entity.MenuItem) (*entity.MenuItem, error) {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return nil, fmt.Errorf("%w: title is required", entity.ErrValidation)
	}
	if item.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", entity.ErrValidation)
	}
	switch item.Type {
	case entity.ItemVegetarian, entity.ItemNonVegetarian, entity.ItemDrink, entity.ItemOther:
	default:
		return nil, fmt.Errorf("%w: unknown item type %q", entity.ErrValidation, item.Type)
	}

	return s.repo.CreateMenuItem(ctx, item)
}
