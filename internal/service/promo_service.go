package service

import (
	"context"
	"fmt"
	"regexp"

	"cafe-order-service/internal/entity"
)

var promoCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)

type PromoAdminStore interface {
	CreatePromo(ctx context.Context, promo *entity.PromoCode) (*entity.PromoCode, error)
	ListPromos(ctx context.Context) ([]*entity.PromoCode, error)
}

type PromoService struct {
	store PromoAdminStore
}

func NewPromoService(store PromoAdminStore) *PromoService {
	return &PromoService{store: store}
}

func (s *PromoService) CreatePromo(ctx context.Context, promo *entity.PromoCode) (*entity.PromoCode, error) {
	if !promoCodePattern.MatchString(promo.Code) {
		return nil, fmt.Errorf("%w: promo code must be 3-32 alphanumeric characters", entity.ErrValidation)
	}

	switch promo.Type {
	case entity.PromoPercentage:
		if promo.Value < 1 || promo.Value > 100 {
			return nil, fmt.Errorf("%w: percentage must be between 1 and 100", entity.ErrValidation)
		}
	case entity.PromoFixed:
		if promo.Value <= 0 {
			return nil, fmt.Errorf("%w: fixed discount must be positive", entity.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown promo type %q", entity.ErrValidation, promo.Type)
	}

	if promo.ValidFrom != nil && promo.ValidUntil != nil && promo.ValidUntil.Before(*promo.ValidFrom) {
		return nil, fmt.Errorf("%w: validity window ends before it starts", entity.ErrValidation)
	}

	created, err := s.store.CreatePromo(ctx, promo)
	if err != nil {
		logger.Error().Err(err).Str("code", promo.Code).Msg("Error creating promo")
		return nil, err
	}
	return created, nil
}

func (s *PromoService) ListPromos(ctx context.Context) ([]*entity.PromoCode, error) {
	return s.store.ListPromos(ctx)
}
