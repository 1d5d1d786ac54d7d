package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-order-service/internal/entity"
)

// --- in-memory fakes; the fake order store mirrors the repository's
// locking discipline: ownership and edge checks run under the same lock as
// the write.

type fakeLedger struct {
	mu       sync.Mutex
	balances map[int]int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[int]int)}
}

func (l *fakeLedger) GetBalance(_ context.Context, userID int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID], nil
}

func (l *fakeLedger) Credit(_ context.Context, userID, points int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID] += points
	return nil
}

func (l *fakeLedger) Debit(_ context.Context, userID, points int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[userID] < points {
		return entity.ErrInsufficientPoints
	}
	l.balances[userID] -= points
	return nil
}

type fakeOrderStore struct {
	mu     sync.Mutex
	nextID int
	orders map[int]*entity.Order
	keys   map[string]bool
	ledger *fakeLedger
}

func newFakeOrderStore(ledger *fakeLedger) *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[int]*entity.Order), keys: make(map[string]bool), ledger: ledger}
}

func (s *fakeOrderStore) CreateOrder(ctx context.Context, order *entity.Order, idempotentKey string) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Mirrors the unique index on idempotent_key: keyless orders never
	// collide, reused keys do.
	if idempotentKey != "" {
		if s.keys[idempotentKey] {
			return nil, entity.ErrDuplicateCheckout
		}
		s.keys[idempotentKey] = true
	}

	if order.PointsRedeemed > 0 {
		if err := s.ledger.Debit(ctx, order.UserID, order.PointsRedeemed); err != nil {
			return nil, err
		}
	}

	s.nextID++
	order.ID = s.nextID
	order.StatusHistory = []entity.StatusChange{
		{Status: order.Status, ChangedBy: entity.RoleCustomer, ChangedAt: order.CreatedAt},
	}
	stored := *order
	s.orders[order.ID] = &stored
	return order, nil
}

func (s *fakeOrderStore) GetOrderByID(_ context.Context, id int) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, entity.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *fakeOrderStore) ListUserOrders(_ context.Context, userID int, includeHidden bool) ([]*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orders []*entity.Order
	for _, order := range s.orders {
		if order.UserID != userID {
			continue
		}
		if order.Hidden && !includeHidden {
			continue
		}
		copied := *order
		orders = append(orders, &copied)
	}
	return orders, nil
}

func (s *fakeOrderStore) UpdateStatus(ctx context.Context, orderID int, target entity.OrderStatus, actor entity.ActorRole, actorUserID int) (*entity.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, 0, entity.ErrOrderNotFound
	}
	if actor == entity.RoleCustomer && order.UserID != actorUserID {
		return nil, 0, entity.ErrNotOrderOwner
	}
	if !entity.CanTransition(order.Status, target, actor) {
		return nil, 0, entity.ErrInvalidTransition
	}

	order.Status = target

	credited := 0
	if target == entity.StatusCompleted {
		credited = entity.RewardPointsForTotal(order.FinalTotal)
		if credited > 0 {
			if err := s.ledger.Credit(ctx, order.UserID, credited); err != nil {
				return nil, 0, err
			}
		}
	}

	copied := *order
	return &copied, credited, nil
}

func (s *fakeOrderStore) RemoveFromHistory(_ context.Context, orderID, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return entity.ErrOrderNotFound
	}
	if order.UserID != userID {
		return entity.ErrNotOrderOwner
	}
	order.Hidden = true
	return nil
}

type fakePromoStore struct {
	promos map[string]*entity.PromoCode
}

func (s *fakePromoStore) GetByCode(_ context.Context, code string) (*entity.PromoCode, error) {
	promo, ok := s.promos[code]
	if !ok {
		return nil, entity.ErrInvalidPromo
	}
	return promo, nil
}

type fakeMenuStore struct {
	items map[int]*entity.MenuItem
}

func (s *fakeMenuStore) GetMenuItemByID(_ context.Context, id int) (*entity.MenuItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, entity.ErrValidation
	}
	copied := *item
	return &copied, nil
}

type fakeIdempotency struct {
	mu      sync.Mutex
	claimed map[string]bool
}

func (s *fakeIdempotency) Claim(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimed[key] {
		return false, nil
	}
	s.claimed[key] = true
	return true, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (p *fakePublisher) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msgs...)
	return nil
}

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var keys []string
	for _, m := range p.messages {
		keys = append(keys, string(m.Key))
	}
	return keys
}

type testEnv struct {
	svc         *OrderService
	carts       *CartStore
	ledger      *fakeLedger
	store       *fakeOrderStore
	idempotency *fakeIdempotency
	publisher   *fakePublisher
}

func newTestEnv() *testEnv {
	ledger := newFakeLedger()
	store := newFakeOrderStore(ledger)
	publisher := &fakePublisher{}
	carts := NewCartStore()

	promos := &fakePromoStore{promos: map[string]*entity.PromoCode{
		"SAVE10": {Code: "SAVE10", Type: entity.PromoPercentage, Value: 10, Active: true},
	}}
	menu := &fakeMenuStore{items: map[int]*entity.MenuItem{
		1: {ID: 1, Title: "Latte", Price: 100, Available: true},
		2: {ID: 2, Title: "Croissant", Price: 50, Available: true},
		3: {ID: 3, Title: "Seasonal Special", Price: 80, Available: false},
	}}

	idempotency := &fakeIdempotency{claimed: make(map[string]bool)}
	svc := NewOrderService(store, promos, menu, ledger, carts, idempotency, publisher, DefaultPricingConfig())
	return &testEnv{svc: svc, carts: carts, ledger: ledger, store: store, idempotency: idempotency, publisher: publisher}
}

func (e *testEnv) fillCart(userID int) {
	e.carts.AddItem(userID, &entity.MenuItem{ID: 1, Title: "Latte", Price: 100}, 2)
	e.carts.AddItem(userID, &entity.MenuItem{ID: 2, Title: "Croissant", Price: 50}, 1)
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("prices the snapshot and writes a pending order", func(t *testing.T) {
		env := newTestEnv()
		env.fillCart(1)

		order, err := env.svc.Checkout(ctx, 1, CheckoutRequest{
			PaymentMethod: entity.PaymentCashOnDelivery,
			PromoCode:     "SAVE10",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(250), order.OrderTotal)
		assert.Equal(t, int64(25), order.DiscountAmount)
		assert.Equal(t, int64(225), order.FinalTotal)
		assert.Equal(t, entity.StatusPending, order.Status)
		require.Len(t, order.StatusHistory, 1)
		assert.Equal(t, entity.StatusPending, order.StatusHistory[0].Status)

		assert.Empty(t, env.carts.Snapshot(1).Lines, "cart should be cleared after checkout")
		assert.Contains(t, env.publisher.keys(), fmt.Sprintf("order-created-%d", order.ID))
	})

	t.Run("order snapshot survives later cart mutation", func(t *testing.T) {
		env := newTestEnv()
		env.fillCart(1)

		order, err := env.svc.Checkout(ctx, 1, CheckoutRequest{PaymentMethod: entity.PaymentDigitalWallet})
		require.NoError(t, err)

		env.carts.AddItem(1, &entity.MenuItem{ID: 1, Title: "Latte", Price: 100}, 10)

		stored, err := env.svc.GetOrder(ctx, order.ID, 1, entity.RoleCustomer)
		require.NoError(t, err)
		require.Len(t, stored.Lines, 2)
		assert.Equal(t, 2, stored.Lines[0].Quantity)
	})

	t.Run("redeemed points are debited with the order", func(t *testing.T) {
		env := newTestEnv()
		env.ledger.balances[1] = 100
		env.fillCart(1)

		order, err := env.svc.Checkout(ctx, 1, CheckoutRequest{
			PaymentMethod:  entity.PaymentDigitalWallet,
			PointsToRedeem: 30,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(30), order.DiscountAmount)
		assert.Equal(t, int64(220), order.FinalTotal)

		balance, _ := env.ledger.GetBalance(ctx, 1)
		assert.Equal(t, 70, balance)
	})

	t.Run("insufficient points abort the whole checkout", func(t *testing.T) {
		env := newTestEnv()
		env.ledger.balances[1] = 30
		env.fillCart(1)

		_, err := env.svc.Checkout(ctx, 1, CheckoutRequest{
			PaymentMethod:  entity.PaymentCashOnDelivery,
			PointsToRedeem: 50,
		})
		assert.ErrorIs(t, err, entity.ErrInsufficientPoints)

		balance, _ := env.ledger.GetBalance(ctx, 1)
		assert.Equal(t, 30, balance, "balance must be unchanged")
		assert.Empty(t, env.store.orders, "no order may be created")
		assert.NotEmpty(t, env.carts.Snapshot(1).Lines, "cart must survive a failed checkout")
	})

	t.Run("unknown promo is rejected", func(t *testing.T) {
		env := newTestEnv()
		env.fillCart(1)

		_, err := env.svc.Checkout(ctx, 1, CheckoutRequest{
			PaymentMethod: entity.PaymentCashOnDelivery,
			PromoCode:     "NOPE",
		})
		assert.ErrorIs(t, err, entity.ErrInvalidPromo)
		assert.Empty(t, env.store.orders)
	})

	t.Run("unavailable lines block checkout and are named", func(t *testing.T) {
		env := newTestEnv()
		env.fillCart(1)
		env.carts.AddItem(1, &entity.MenuItem{ID: 3, Title: "Seasonal Special", Price: 80}, 1)

		_, err := env.svc.Checkout(ctx, 1, CheckoutRequest{PaymentMethod: entity.PaymentCashOnDelivery})
		require.ErrorIs(t, err, entity.ErrUnavailableItems)
		assert.Contains(t, err.Error(), "3")
	})

	t.Run("empty cart cannot check out", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.svc.Checkout(ctx, 1, CheckoutRequest{PaymentMethod: entity.PaymentCashOnDelivery})
		assert.ErrorIs(t, err, entity.ErrEmptyCart)
	})

	t.Run("unknown payment method is invalid", func(t *testing.T) {
		env := newTestEnv()
		env.fillCart(1)
		_, err := env.svc.Checkout(ctx, 1, CheckoutRequest{PaymentMethod: "barter"})
		assert.ErrorIs(t, err, entity.ErrValidation)
	})

	t.Run("duplicate idempotency key is rejected", func(t *testing.T) {
		env := newTestEnv()
		env.fillCart(1)

		_, err := env.svc.Checkout(ctx, 1, CheckoutRequest{
			PaymentMethod: entity.PaymentCashOnDelivery,
			IdempotentKey: "attempt-1",
		})
		require.NoError(t, err)

		env.fillCart(1)
		_, err = env.svc.Checkout(ctx, 1, CheckoutRequest{
			PaymentMethod: entity.PaymentCashOnDelivery,
			IdempotentKey: "attempt-1",
		})
		assert.ErrorIs(t, err, entity.ErrDuplicateCheckout)
		assert.Len(t, env.store.orders, 1)
	})

	t.Run("consecutive keyless checkouts all succeed", func(t *testing.T) {
		env := newTestEnv()

		for i := 0; i < 3; i++ {
			env.fillCart(1)
			_, err := env.svc.Checkout(ctx, 1, CheckoutRequest{PaymentMethod: entity.PaymentCashOnDelivery})
			require.NoError(t, err)
		}
		assert.Len(t, env.store.orders, 3)
	})

	t.Run("key replayed after the claim lapses is still rejected by the store", func(t *testing.T) {
		env := newTestEnv()
		env.fillCart(1)

		_, err := env.svc.Checkout(ctx, 1, CheckoutRequest{
			PaymentMethod: entity.PaymentCashOnDelivery,
			IdempotentKey: "attempt-1",
		})
		require.NoError(t, err)

		// The Redis claim has a TTL, the unique index does not; a replay
		// past the TTL must hit the index.
		env.idempotency.claimed = make(map[string]bool)

		env.fillCart(1)
		_, err = env.svc.Checkout(ctx, 1, CheckoutRequest{
			PaymentMethod: entity.PaymentCashOnDelivery,
			IdempotentKey: "attempt-1",
		})
		assert.ErrorIs(t, err, entity.ErrDuplicateCheckout)
		assert.Len(t, env.store.orders, 1)
	})
}

func TestTransition(t *testing.T) {
	ctx := context.Background()

	checkout := func(t *testing.T, env *testEnv, userID int) *entity.Order {
		t.Helper()
		env.fillCart(userID)
		order, err := env.svc.Checkout(ctx, userID, CheckoutRequest{
			PaymentMethod: entity.PaymentCashOnDelivery,
			PromoCode:     "SAVE10",
		})
		require.NoError(t, err)
		return order
	}

	t.Run("staff verifies then completes, completion credits points", func(t *testing.T) {
		env := newTestEnv()
		order := checkout(t, env, 1)

		verified, err := env.svc.Transition(ctx, order.ID, entity.StatusVerified, entity.RoleStaff, 99)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusVerified, verified.Status)

		// the transition returns the full record, not just the columns it
		// touched
		assert.Len(t, verified.Lines, 2)
		assert.Equal(t, int64(250), verified.OrderTotal)
		assert.Equal(t, int64(225), verified.FinalTotal)
		assert.Equal(t, entity.PaymentCashOnDelivery, verified.Method)

		completed, err := env.svc.Transition(ctx, order.ID, entity.StatusCompleted, entity.RoleStaff, 99)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusCompleted, completed.Status)

		// tier for 225 is 2% -> 4 points
		balance, _ := env.ledger.GetBalance(ctx, 1)
		assert.Equal(t, 4, balance)

		keys := env.publisher.keys()
		assert.Contains(t, keys, fmt.Sprintf("order-verified-%d", order.ID))
		assert.Contains(t, keys, fmt.Sprintf("order-completed-%d", order.ID))
	})

	t.Run("customer cannot cancel a verified order", func(t *testing.T) {
		env := newTestEnv()
		order := checkout(t, env, 1)

		_, err := env.svc.Transition(ctx, order.ID, entity.StatusVerified, entity.RoleStaff, 99)
		require.NoError(t, err)

		_, err = env.svc.Transition(ctx, order.ID, entity.StatusCancelled, entity.RoleCustomer, 1)
		assert.ErrorIs(t, err, entity.ErrInvalidTransition)

		stored, _ := env.svc.GetOrder(ctx, order.ID, 1, entity.RoleCustomer)
		assert.Equal(t, entity.StatusVerified, stored.Status)
	})

	t.Run("customer cancels own pending order", func(t *testing.T) {
		env := newTestEnv()
		order := checkout(t, env, 1)

		cancelled, err := env.svc.Transition(ctx, order.ID, entity.StatusCancelled, entity.RoleCustomer, 1)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusCancelled, cancelled.Status)
	})

	t.Run("customer cannot cancel another user's order", func(t *testing.T) {
		env := newTestEnv()
		order := checkout(t, env, 1)

		_, err := env.svc.Transition(ctx, order.ID, entity.StatusCancelled, entity.RoleCustomer, 2)
		assert.ErrorIs(t, err, entity.ErrNotOrderOwner)
	})

	t.Run("terminal orders reject every transition", func(t *testing.T) {
		env := newTestEnv()
		order := checkout(t, env, 1)

		_, err := env.svc.Transition(ctx, order.ID, entity.StatusCancelled, entity.RoleAdmin, 99)
		require.NoError(t, err)

		for _, target := range []entity.OrderStatus{entity.StatusVerified, entity.StatusCompleted, entity.StatusCancelled} {
			_, err := env.svc.Transition(ctx, order.ID, target, entity.RoleAdmin, 99)
			assert.ErrorIs(t, err, entity.ErrInvalidTransition)
		}
	})

	t.Run("unknown status is invalid input", func(t *testing.T) {
		env := newTestEnv()
		order := checkout(t, env, 1)
		_, err := env.svc.Transition(ctx, order.ID, "shipped", entity.RoleStaff, 99)
		assert.ErrorIs(t, err, entity.ErrValidation)
	})

	t.Run("racing verify and cancel resolve to one winner", func(t *testing.T) {
		env := newTestEnv()
		order := checkout(t, env, 1)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = env.svc.Transition(ctx, order.ID, entity.StatusVerified, entity.RoleStaff, 99)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = env.svc.Transition(ctx, order.ID, entity.StatusCancelled, entity.RoleCustomer, 1)
		}()
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			} else {
				assert.ErrorIs(t, err, entity.ErrInvalidTransition)
			}
		}
		assert.Equal(t, 1, winners)
	})
}

func TestRemoveFromHistory(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv()
	env.fillCart(1)
	order, err := env.svc.Checkout(ctx, 1, CheckoutRequest{PaymentMethod: entity.PaymentCashOnDelivery})
	require.NoError(t, err)

	t.Run("non-owner is rejected", func(t *testing.T) {
		err := env.svc.RemoveFromHistory(ctx, order.ID, 2)
		assert.ErrorIs(t, err, entity.ErrNotOrderOwner)
	})

	t.Run("owner hides the order from their listing only", func(t *testing.T) {
		require.NoError(t, env.svc.RemoveFromHistory(ctx, order.ID, 1))

		orders, err := env.svc.ListUserOrders(ctx, 1, entity.RoleCustomer)
		require.NoError(t, err)
		assert.Empty(t, orders)

		// canonical record and its status untouched
		stored, err := env.svc.GetOrder(ctx, order.ID, 0, entity.RoleStaff)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusPending, stored.Status)
	})

	t.Run("hidden orders stay visible to staff and admin listings", func(t *testing.T) {
		for _, role := range []entity.ActorRole{entity.RoleStaff, entity.RoleAdmin} {
			orders, err := env.svc.ListUserOrders(ctx, 1, role)
			require.NoError(t, err)
			require.Len(t, orders, 1)
			assert.Equal(t, order.ID, orders[0].ID)
			assert.True(t, orders[0].Hidden)
		}
	})

	t.Run("listing carries the status history", func(t *testing.T) {
		orders, err := env.svc.ListUserOrders(ctx, 1, entity.RoleStaff)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		require.Len(t, orders[0].StatusHistory, 1)
		assert.Equal(t, entity.StatusPending, orders[0].StatusHistory[0].Status)
	})
}

func TestDoubleRedemption(t *testing.T) {
	// Two checkouts spending from the same account must not both get the
	// pre-debit balance: the second redemption sees the debited account
	// and fails closed.
	ctx := context.Background()
	env := newTestEnv()
	env.ledger.balances[1] = 50

	env.fillCart(1)
	_, err := env.svc.Checkout(ctx, 1, CheckoutRequest{
		PaymentMethod:  entity.PaymentCashOnDelivery,
		PointsToRedeem: 40,
	})
	require.NoError(t, err)

	env.fillCart(1)
	_, err = env.svc.Checkout(ctx, 1, CheckoutRequest{
		PaymentMethod:  entity.PaymentCashOnDelivery,
		PointsToRedeem: 40,
	})
	assert.ErrorIs(t, err, entity.ErrInsufficientPoints)

	balance, _ := env.ledger.GetBalance(ctx, 1)
	assert.Equal(t, 10, balance, "exactly one 40-point redemption fits a 50-point balance")
}
