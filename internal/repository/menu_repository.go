package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"cafe-order-service/internal/entity"
)

type MenuRepository struct {
	db *sql.DB
}

func NewMenuRepository(db *sql.DB) *MenuRepository {
	return &MenuRepository{db}
}

func (r *MenuRepository) GetMenuItemByID(ctx context.Context, id int) (*entity.MenuItem, error) {
	item := &entity.MenuItem{}
	var categories string
	query := `SELECT id, title, price, categories, type, available FROM menu_items WHERE id = ?`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.Title, &item.Price, &categories, &item.Type, &item.Available)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrValidation
	}
	if err != nil {
		return nil, err
	}
	item.Categories = splitCategories(categories)
	return item, nil
}

func (r *MenuRepository) ListMenuItems(ctx context.Context) ([]*entity.MenuItem, error) {
	query := `SELECT id, title, price, categories, type, available FROM menu_items ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*entity.MenuItem
	for rows.Next() {
		item := &entity.MenuItem{}
		var categories string
		err := rows.Scan(&item.ID, &item.Title, &item.Price, &categories, &item.Type, &item.Available)
		if err != nil {
			return nil, err
		}
		item.Categories = splitCategories(categories)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *MenuRepository) CreateMenuItem(ctx context.Context, item *entity.MenuItem) (*entity.MenuItem, error) {
	query := `INSERT INTO menu_items (title, price, categories, type, available) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		item.Title, item.Price, strings.Join(item.Categories, ","), item.Type, item.Available)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	item.ID = int(id)
	return item, nil
}

func splitCategories(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
