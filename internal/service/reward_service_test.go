package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-order-service/internal/entity"
)

func TestRewardService(t *testing.T) {
	ctx := context.Background()

	t.Run("credit then debit", func(t *testing.T) {
		svc := NewRewardService(newFakeLedger())

		require.NoError(t, svc.Credit(ctx, 1, 100))
		require.NoError(t, svc.Debit(ctx, 1, 60))

		balance, err := svc.Balance(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 40, balance)
	})

	t.Run("overdraft fails closed", func(t *testing.T) {
		svc := NewRewardService(newFakeLedger())
		require.NoError(t, svc.Credit(ctx, 1, 30))

		err := svc.Debit(ctx, 1, 50)
		assert.ErrorIs(t, err, entity.ErrInsufficientPoints)

		balance, _ := svc.Balance(ctx, 1)
		assert.Equal(t, 30, balance, "failed debit must leave the balance unchanged")
	})

	t.Run("non-positive amounts are invalid", func(t *testing.T) {
		svc := NewRewardService(newFakeLedger())
		assert.ErrorIs(t, svc.Credit(ctx, 1, 0), entity.ErrValidation)
		assert.ErrorIs(t, svc.Debit(ctx, 1, -5), entity.ErrValidation)
	})

	t.Run("unknown user has an empty account", func(t *testing.T) {
		svc := NewRewardService(newFakeLedger())
		account, err := svc.Account(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, 42, account.UserID)
		assert.Equal(t, 0, account.Balance)
	})
}
