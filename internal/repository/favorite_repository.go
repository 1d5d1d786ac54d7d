package repository

import (
	"context"
	"database/sql"
)

type FavoriteRepository struct {
	db *sql.DB
}

func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db}
}

// Toggle flips membership of (userID, itemID) in the favorites set and
// reports the resulting state. The primary key on (user_id, item_id) keeps
// the set free of duplicates.
func (r *FavoriteRepository) Toggle(ctx context.Context, userID, itemID int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND item_id = ?`, userID, itemID)
	if err != nil {
		tx.Rollback()
		return false, err
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return false, err
	}

	isFavorite := false
	if deleted == 0 {
		_, err = tx.ExecContext(ctx, `INSERT INTO favorites (user_id, item_id) VALUES (?, ?)`, userID, itemID)
		if err != nil {
			tx.Rollback()
			return false, err
		}
		isFavorite = true
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return isFavorite, nil
}

// Add inserts without toggling; used when merging an anonymous local set
// into the remote one on login.
func (r *FavoriteRepository) Add(ctx context.Context, userID, itemID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT IGNORE INTO favorites (user_id, item_id) VALUES (?, ?)`, userID, itemID)
	return err
}

// Remove is idempotent; deleting an absent pair affects nothing.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, itemID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND item_id = ?`, userID, itemID)
	return err
}

func (r *FavoriteRepository) List(ctx context.Context, userID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT item_id FROM favorites WHERE user_id = ? ORDER BY item_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []int
	for rows.Next() {
		var itemID int
		if err := rows.Scan(&itemID); err != nil {
			return nil, err
		}
		items = append(items, itemID)
	}
	return items, rows.Err()
}
