package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"cafe-order-service/internal/entity"
)

type PromoRepository struct {
	db *sql.DB
}

func NewPromoRepository(db *sql.DB) *PromoRepository {
	return &PromoRepository{db}
}

func (r *PromoRepository) CreatePromo(ctx context.Context, promo *entity.PromoCode) (*entity.PromoCode, error) {
	query := `INSERT INTO promo_codes (code, type, value, valid_from, valid_until, active) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		strings.ToUpper(promo.Code), promo.Type, promo.Value, promo.ValidFrom, promo.ValidUntil, promo.Active)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	promo.ID = int(id)
	promo.Code = strings.ToUpper(promo.Code)
	return promo, nil
}

// GetByCode looks a promo up case-insensitively; codes are stored upper-cased.
func (r *PromoRepository) GetByCode(ctx context.Context, code string) (*entity.PromoCode, error) {
	promo := &entity.PromoCode{}
	query := `SELECT id, code, type, value, valid_from, valid_until, active FROM promo_codes WHERE code = ?`
	err := r.db.QueryRowContext(ctx, query, strings.ToUpper(code)).Scan(
		&promo.ID, &promo.Code, &promo.Type, &promo.Value, &promo.ValidFrom, &promo.ValidUntil, &promo.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrInvalidPromo
	}
	if err != nil {
		return nil, err
	}
	return promo, nil
}

func (r *PromoRepository) ListPromos(ctx context.Context) ([]*entity.PromoCode, error) {
	query := `SELECT id, code, type, value, valid_from, valid_until, active FROM promo_codes ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promos []*entity.PromoCode
	for rows.Next() {
		promo := &entity.PromoCode{}
		err := rows.Scan(&promo.ID, &promo.Code, &promo.Type, &promo.Value, &promo.ValidFrom, &promo.ValidUntil, &promo.Active)
		if err != nil {
			return nil, err
		}
		promos = append(promos, promo)
	}
	return promos, rows.Err()
}
