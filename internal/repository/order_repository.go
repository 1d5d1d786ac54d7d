package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"cafe-order-service/internal/entity"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db}
}

// CreateOrder writes the order, its line snapshot, the initial history row
// and the reward-point debit in one transaction. A failed debit rolls back
// the whole creation.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *entity.Order, idempotentKey string) (*entity.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	if order.PointsRedeemed > 0 {
		if err := debitPoints(ctx, tx, order.UserID, order.PointsRedeemed); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// Keyless checkouts insert NULL so they never collide on the unique
	// index; MySQL permits any number of NULLs there.
	var key interface{}
	if idempotentKey != "" {
		key = idempotentKey
	}

	orderQuery := `INSERT INTO orders (user_id, promo_code, points_redeemed, order_total, discount_amount, final_total, status, method, idempotent_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, orderQuery,
		order.UserID, order.PromoCode, order.PointsRedeemed,
		order.OrderTotal, order.DiscountAmount, order.FinalTotal,
		order.Status, order.Method, key, order.CreatedAt)
	if err != nil {
		tx.Rollback()
		// The unique index outlives the Redis claim, so a key reused
		// after the claim's TTL still surfaces as a duplicate here.
		if isDuplicateKey(err) {
			return nil, entity.ErrDuplicateCheckout
		}
		return nil, err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Insert line snapshot with batch
	lineQuery := `INSERT INTO order_items (order_id, item_id, title, quantity, unit_price) VALUES `
	var values []interface{}
	for _, line := range order.Lines {
		lineQuery += "(?, ?, ?, ?, ?),"
		values = append(values, orderID, line.ItemID, line.Title, line.Quantity, line.UnitPrice)
	}
	lineQuery = strings.TrimSuffix(lineQuery, ",")

	_, err = tx.ExecContext(ctx, lineQuery, values...)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	historyQuery := `INSERT INTO order_status_history (order_id, status, changed_by, changed_at) VALUES (?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, historyQuery, orderID, order.Status, entity.RoleCustomer, order.CreatedAt)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	order.ID = int(orderID)
	order.StatusHistory = []entity.StatusChange{
		{Status: order.Status, ChangedBy: entity.RoleCustomer, ChangedAt: order.CreatedAt},
	}
	return order, nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id int) (*entity.Order, error) {
	orderQuery := `SELECT id, user_id, promo_code, points_redeemed, order_total, discount_amount, final_total, status, method, hidden, created_at
		FROM orders WHERE id = ?`

	order := &entity.Order{}
	err := r.db.QueryRowContext(ctx, orderQuery, id).Scan(
		&order.ID, &order.UserID, &order.PromoCode, &order.PointsRedeemed,
		&order.OrderTotal, &order.DiscountAmount, &order.FinalTotal,
		&order.Status, &order.Method, &order.Hidden, &order.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	order.Lines, err = r.loadLines(ctx, id)
	if err != nil {
		return nil, err
	}

	order.StatusHistory, err = r.loadHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	return order, nil
}

// ListUserOrders returns a user's orders, newest first. Rows the user removed
// from history stay in the table; includeHidden controls whether they show,
// so staff views still see the full record.
func (r *OrderRepository) ListUserOrders(ctx context.Context, userID int, includeHidden bool) ([]*entity.Order, error) {
	query := `SELECT id, user_id, promo_code, points_redeemed, order_total, discount_amount, final_total, status, method, hidden, created_at
		FROM orders WHERE user_id = ? ORDER BY created_at DESC`
	if !includeHidden {
		query = `SELECT id, user_id, promo_code, points_redeemed, order_total, discount_amount, final_total, status, method, hidden, created_at
		FROM orders WHERE user_id = ? AND hidden = FALSE ORDER BY created_at DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		order := &entity.Order{}
		err := rows.Scan(
			&order.ID, &order.UserID, &order.PromoCode, &order.PointsRedeemed,
			&order.OrderTotal, &order.DiscountAmount, &order.FinalTotal,
			&order.Status, &order.Method, &order.Hidden, &order.CreatedAt)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		order.Lines, err = r.loadLines(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.StatusHistory, err = r.loadHistory(ctx, order.ID)
		if err != nil {
			return nil, err
		}
	}

	return orders, nil
}

// UpdateStatus moves an order along the state machine. The current status is
// read under a row lock and the edge is checked inside the same transaction,
// so two racing transitions resolve to exactly one winner. Moving into
// completed credits the earned points from the frozen final total.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int, target entity.OrderStatus, actor entity.ActorRole, actorUserID int) (*entity.Order, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}

	order := &entity.Order{ID: orderID}
	selectQuery := `SELECT user_id, status, final_total FROM orders WHERE id = ? FOR UPDATE`
	err = tx.QueryRowContext(ctx, selectQuery, orderID).Scan(&order.UserID, &order.Status, &order.FinalTotal)
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return nil, 0, entity.ErrOrderNotFound
	}
	if err != nil {
		tx.Rollback()
		return nil, 0, err
	}

	if actor == entity.RoleCustomer && order.UserID != actorUserID {
		tx.Rollback()
		return nil, 0, entity.ErrNotOrderOwner
	}

	if !entity.CanTransition(order.Status, target, actor) {
		tx.Rollback()
		return nil, 0, entity.ErrInvalidTransition
	}

	now := nowFunc()
	_, err = tx.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, target, orderID)
	if err != nil {
		tx.Rollback()
		return nil, 0, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO order_status_history (order_id, status, changed_by, changed_at) VALUES (?, ?, ?, ?)`,
		orderID, target, actor, now)
	if err != nil {
		tx.Rollback()
		return nil, 0, err
	}

	credited := 0
	if target == entity.StatusCompleted {
		credited = entity.RewardPointsForTotal(order.FinalTotal)
		if credited > 0 {
			if err := creditPoints(ctx, tx, order.UserID, credited); err != nil {
				tx.Rollback()
				return nil, 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	// Reload the full record so callers get lines and history, not just the
	// columns the lock read touched.
	updated, err := r.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, 0, err
	}
	return updated, credited, nil
}

// RemoveFromHistory hides an order from the owner's list view. The canonical
// record and its status history are untouched.
func (r *OrderRepository) RemoveFromHistory(ctx context.Context, orderID, userID int) error {
	var ownerID int
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM orders WHERE id = ?`, orderID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != userID {
		return entity.ErrNotOrderOwner
	}

	_, err = r.db.ExecContext(ctx, `UPDATE orders SET hidden = TRUE WHERE id = ? AND user_id = ?`, orderID, userID)
	return err
}

func (r *OrderRepository) loadLines(ctx context.Context, orderID int) ([]entity.CartLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT item_id, title, quantity, unit_price FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []entity.CartLine
	for rows.Next() {
		line := entity.CartLine{}
		if err := rows.Scan(&line.ItemID, &line.Title, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *OrderRepository) loadHistory(ctx context.Context, orderID int) ([]entity.StatusChange, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, changed_by, changed_at FROM order_status_history WHERE order_id = ? ORDER BY changed_at, id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []entity.StatusChange
	for rows.Next() {
		change := entity.StatusChange{}
		if err := rows.Scan(&change.Status, &change.ChangedBy, &change.ChangedAt); err != nil {
			return nil, err
		}
		history = append(history, change)
	}
	return history, rows.Err()
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
