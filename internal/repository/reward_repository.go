package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cafe-order-service/internal/entity"
)

var nowFunc = time.Now

type RewardRepository struct {
	db *sql.DB
}

func NewRewardRepository(db *sql.DB) *RewardRepository {
	return &RewardRepository{db}
}

func (r *RewardRepository) GetBalance(ctx context.Context, userID int) (int, error) {
	var balance int
	query := `SELECT balance FROM reward_accounts WHERE user_id = ?`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *RewardRepository) Credit(ctx context.Context, userID, points int) error {
	return creditPoints(ctx, r.db, userID, points)
}

func (r *RewardRepository) Debit(ctx context.Context, userID, points int) error {
	return debitPoints(ctx, r.db, userID, points)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func creditPoints(ctx context.Context, db execer, userID, points int) error {
	query := `INSERT INTO reward_accounts (user_id, balance) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE balance = balance + VALUES(balance)`
	_, err := db.ExecContext(ctx, query, userID, points)
	return err
}

// debitPoints is a conditional decrement: the balance check and the write
// happen in one statement, so concurrent debits against the same account
// cannot both observe the pre-debit balance.
func debitPoints(ctx context.Context, db execer, userID, points int) error {
	query := `UPDATE reward_accounts SET balance = balance - ? WHERE user_id = ? AND balance >= ?`
	res, err := db.ExecContext(ctx, query, points, userID, points)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrInsufficientPoints
	}
	return nil
}
