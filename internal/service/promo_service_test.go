package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-order-service/internal/entity"
)

type fakePromoAdminStore struct {
	created []*entity.PromoCode
}

func (s *fakePromoAdminStore) CreatePromo(_ context.Context, promo *entity.PromoCode) (*entity.PromoCode, error) {
	promo.ID = len(s.created) + 1
	s.created = append(s.created, promo)
	return promo, nil
}

func (s *fakePromoAdminStore) ListPromos(_ context.Context) ([]*entity.PromoCode, error) {
	return s.created, nil
}

func TestCreatePromo(t *testing.T) {
	ctx := context.Background()

	t.Run("valid percentage promo", func(t *testing.T) {
		store := &fakePromoAdminStore{}
		svc := NewPromoService(store)

		created, err := svc.CreatePromo(ctx, &entity.PromoCode{
			Code: "save10", Type: entity.PromoPercentage, Value: 10, Active: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, created.ID)
	})

	t.Run("code shape is validated", func(t *testing.T) {
		svc := NewPromoService(&fakePromoAdminStore{})
		for _, code := range []string{"", "ab", "has space", "way-too-long-code-that-overruns-the-limit"} {
			_, err := svc.CreatePromo(ctx, &entity.PromoCode{Code: code, Type: entity.PromoPercentage, Value: 10})
			assert.ErrorIs(t, err, entity.ErrValidation, "code %q", code)
		}
	})

	t.Run("percentage must be 1-100", func(t *testing.T) {
		svc := NewPromoService(&fakePromoAdminStore{})
		for _, value := range []int64{0, 101, -5} {
			_, err := svc.CreatePromo(ctx, &entity.PromoCode{Code: "PCT", Type: entity.PromoPercentage, Value: value})
			assert.ErrorIs(t, err, entity.ErrValidation)
		}
	})

	t.Run("fixed discount must be positive", func(t *testing.T) {
		svc := NewPromoService(&fakePromoAdminStore{})
		_, err := svc.CreatePromo(ctx, &entity.PromoCode{Code: "FLAT", Type: entity.PromoFixed, Value: 0})
		assert.ErrorIs(t, err, entity.ErrValidation)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		svc := NewPromoService(&fakePromoAdminStore{})
		_, err := svc.CreatePromo(ctx, &entity.PromoCode{Code: "ODD", Type: "bogo", Value: 1})
		assert.ErrorIs(t, err, entity.ErrValidation)
	})

	t.Run("validity window must not be inverted", func(t *testing.T) {
		svc := NewPromoService(&fakePromoAdminStore{})
		from := time.Now()
		until := from.Add(-time.Hour)
		_, err := svc.CreatePromo(ctx, &entity.PromoCode{
			Code: "WINDOW", Type: entity.PromoFixed, Value: 10,
			ValidFrom: &from, ValidUntil: &until,
		})
		assert.ErrorIs(t, err, entity.ErrValidation)
	})
}
