package service

import (
	"context"

	"cafe-order-service/internal/entity"
)

// RewardLedger is the full ledger surface; credits and debits are atomic per
// account at the storage layer.
type RewardLedger interface {
	GetBalance(ctx context.Context, userID int) (int, error)
	Credit(ctx context.Context, userID, points int) error
	Debit(ctx context.Context, userID, points int) error
}

type RewardService struct {
	ledger RewardLedger
}

func NewRewardService(ledger RewardLedger) *RewardService {
	return &RewardService{ledger: ledger}
}

func (s *RewardService) Balance(ctx context.Context, userID int) (int, error) {
	return s.ledger.GetBalance(ctx, userID)
}

// Account returns the user's reward account; a user who never earned a
// point has an account with a zero balance.
func (s *RewardService) Account(ctx context.Context, userID int) (*entity.RewardAccount, error) {
	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &entity.RewardAccount{UserID: userID, Balance: balance}, nil
}

func (s *RewardService) Credit(ctx context.Context, userID, points int) error {
	if points <= 0 {
		return entity.ErrValidation
	}
	return s.ledger.Credit(ctx, userID, points)
}

// Debit fails closed: asking for more points than the balance returns
// ErrInsufficientPoints and leaves the balance unchanged.
func (s *RewardService) Debit(ctx context.Context, userID, points int) error {
	if points <= 0 {
		return entity.ErrValidation
	}
	return s.ledger.Debit(ctx, userID, points)
}
