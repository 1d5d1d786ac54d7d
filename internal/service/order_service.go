package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"cafe-order-service/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Narrow store interfaces satisfied by the repository types; kept small for
// testability.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *entity.Order, idempotentKey string) (*entity.Order, error)
	GetOrderByID(ctx context.Context, id int) (*entity.Order, error)
	ListUserOrders(ctx context.Context, userID int, includeHidden bool) ([]*entity.Order, error)
	UpdateStatus(ctx context.Context, orderID int, target entity.OrderStatus, actor entity.ActorRole, actorUserID int) (*entity.Order, int, error)
	RemoveFromHistory(ctx context.Context, orderID, userID int) error
}

type PromoStore interface {
	GetByCode(ctx context.Context, code string) (*entity.PromoCode, error)
}

type MenuStore interface {
	GetMenuItemByID(ctx context.Context, id int) (*entity.MenuItem, error)
}

type RewardStore interface {
	GetBalance(ctx context.Context, userID int) (int, error)
}

// EventPublisher is satisfied by *kafka.Writer.
type EventPublisher interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// OrderService owns the order lifecycle: checkout, status transitions and
// the user-visible history.
type OrderService struct {
	orders      OrderStore
	promos      PromoStore
	menu        MenuStore
	rewards     RewardStore
	carts       *CartStore
	idempotency IdempotencyStore
	publisher   EventPublisher
	pricing     PricingConfig
}

func NewOrderService(orders OrderStore, promos PromoStore, menu MenuStore, rewards RewardStore, carts *CartStore, idempotency IdempotencyStore, publisher EventPublisher, pricing PricingConfig) *OrderService {
	return &OrderService{
		orders:      orders,
		promos:      promos,
		menu:        menu,
		rewards:     rewards,
		carts:       carts,
		idempotency: idempotency,
		publisher:   publisher,
		pricing:     pricing,
	}
}

type CheckoutRequest struct {
	PaymentMethod  entity.PaymentMethod `json:"payment_method"`
	PromoCode      string               `json:"promo_code"`
	PointsToRedeem int                  `json:"points_to_redeem"`
	IdempotentKey  string               `json:"-"`
}

// Checkout freezes the user's cart, prices it and writes the order in
// pending status. The reward-point debit happens inside the same database
// transaction as the order insert, so a failed debit aborts the whole
// creation. The cart is cleared only after the order is committed.
func (s *OrderService) Checkout(ctx context.Context, userID int, req CheckoutRequest) (*entity.Order, error) {
	switch req.PaymentMethod {
	case entity.PaymentCashOnDelivery, entity.PaymentDigitalWallet:
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", entity.ErrValidation, req.PaymentMethod)
	}

	if req.IdempotentKey != "" {
		claimed, err := s.idempotency.Claim(ctx, req.IdempotentKey)
		if err != nil {
			return nil, err
		}
		if !claimed {
			return nil, entity.ErrDuplicateCheckout
		}
	}

	snapshot := s.carts.Snapshot(userID)
	if len(snapshot.Lines) == 0 {
		return nil, entity.ErrEmptyCart
	}

	if err := s.checkAvailability(ctx, snapshot); err != nil {
		return nil, err
	}

	var promo *entity.PromoCode
	if req.PromoCode != "" {
		var err error
		promo, err = s.promos.GetByCode(ctx, req.PromoCode)
		if err != nil {
			return nil, err
		}
	}

	balance, err := s.rewards.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals, err := ComputeTotals(s.pricing, snapshot, promo, req.PointsToRedeem, balance, time.Now())
	if err != nil {
		return nil, err
	}

	order := &entity.Order{
		UserID:         userID,
		Lines:          snapshot.Lines,
		PromoCode:      req.PromoCode,
		PointsRedeemed: req.PointsToRedeem,
		OrderTotal:     totals.OrderTotal,
		DiscountAmount: totals.DiscountAmount,
		FinalTotal:     totals.FinalTotal,
		Status:         entity.StatusPending,
		Method:         req.PaymentMethod,
		CreatedAt:      time.Now(),
	}

	created, err := s.orders.CreateOrder(ctx, order, req.IdempotentKey)
	if err != nil {
		logger.Error().Err(err).Int("user_id", userID).Msg("Error creating order")
		return nil, err
	}

	s.carts.Clear(userID)
	s.publishOrderEvent(ctx, created, "created")

	return created, nil
}

// Transition moves an order to target on behalf of actor. The edge check
// runs under the same row lock as the write, so a staff verify and a
// customer cancel racing on one pending order resolve to exactly one winner;
// the loser gets ErrInvalidTransition.
func (s *OrderService) Transition(ctx context.Context, orderID int, target entity.OrderStatus, actor entity.ActorRole, actorUserID int) (*entity.Order, error) {
	switch target {
	case entity.StatusVerified, entity.StatusCompleted, entity.StatusCancelled:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", entity.ErrValidation, target)
	}

	order, credited, err := s.orders.UpdateStatus(ctx, orderID, target, actor, actorUserID)
	if err != nil {
		return nil, err
	}

	if credited > 0 {
		logger.Info().Int("order_id", orderID).Int("points", credited).Msg("Credited reward points on completion")
	}

	s.publishOrderEvent(ctx, order, string(target))
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID, userID int, role entity.ActorRole) (*entity.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if role == entity.RoleCustomer && order.UserID != userID {
		return nil, entity.ErrNotOrderOwner
	}
	return order, nil
}

// ListUserOrders returns a user's order history. Orders the owner removed
// from their view stay visible to staff and admin.
func (s *OrderService) ListUserOrders(ctx context.Context, userID int, role entity.ActorRole) ([]*entity.Order, error) {
	includeHidden := role == entity.RoleStaff || role == entity.RoleAdmin
	return s.orders.ListUserOrders(ctx, userID, includeHidden)
}

// RemoveFromHistory hides the order from the owner's listing. It is not a
// status change: the canonical record and its history stay intact for
// staff and admin.
func (s *OrderService) RemoveFromHistory(ctx context.Context, orderID, userID int) error {
	return s.orders.RemoveFromHistory(ctx, orderID, userID)
}

func (s *OrderService) checkAvailability(ctx context.Context, snapshot entity.CartSnapshot) error {
	var blocked []int
	for _, line := range snapshot.Lines {
		item, err := s.menu.GetMenuItemByID(ctx, line.ItemID)
		if err != nil {
			return err
		}
		if !item.Available {
			blocked = append(blocked, item.ID)
		}
	}
	if len(blocked) > 0 {
		return fmt.Errorf("%w: %v", entity.ErrUnavailableItems, blocked)
	}
	return nil
}

func (s *OrderService) publishOrderEvent(ctx context.Context, order *entity.Order, key string) {
	if s.publisher == nil {
		return
	}

	orderJSON, err := json.Marshal(order)
	if err != nil {
		logger.Error().Err(err).Int("order_id", order.ID).Msg("Error marshalling order event")
		return
	}

	// order-created-1, order-completed-1, ...
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%s-%d", key, order.ID)),
		Value: orderJSON,
	}

	// The order is already committed; a publish failure is logged, not
	// surfaced to the caller.
	if err := s.publisher.WriteMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Int("order_id", order.ID).Msg("Error publishing order event")
	}
}
