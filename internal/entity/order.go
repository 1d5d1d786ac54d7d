package entity

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusVerified  OrderStatus = "verified"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

type ActorRole string

const (
	RoleCustomer ActorRole = "customer"
	RoleStaff    ActorRole = "staff"
	RoleAdmin    ActorRole = "admin"
)

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash-on-delivery"
	PaymentDigitalWallet  PaymentMethod = "digital-wallet"
)

type Order struct {
	ID             int            `json:"id"`
	UserID         int            `json:"user_id"`
	Lines          []CartLine     `json:"lines"`
	PromoCode      string         `json:"promo_code,omitempty"`
	PointsRedeemed int            `json:"points_redeemed"`
	OrderTotal     int64          `json:"order_total"`
	DiscountAmount int64          `json:"discount_amount"`
	FinalTotal     int64          `json:"final_total"`
	Status         OrderStatus    `json:"order_status"`
	Method         PaymentMethod  `json:"order_method"`
	Hidden         bool           `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	StatusHistory  []StatusChange `json:"status_history,omitempty"`
}

type StatusChange struct {
	Status    OrderStatus `json:"status"`
	ChangedBy ActorRole   `json:"changed_by"`
	ChangedAt time.Time   `json:"changed_at"`
}

// transitions holds the only legal status edges. Everything else is rejected.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:  {StatusVerified, StatusCancelled},
	StatusVerified: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether actor may move an order from one status to
// another. Customers get a single self-service edge: cancelling while the
// order is still pending. Staff and admin share the full table.
func CanTransition(from, to OrderStatus, actor ActorRole) bool {
	allowed := false
	for _, next := range transitions[from] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}
	if actor == RoleCustomer {
		return from == StatusPending && to == StatusCancelled
	}
	return actor == RoleStaff || actor == RoleAdmin
}

// RewardPointsForTotal converts a frozen final total into earned points using
// the tiered accrual rule: up to 300 earns 2%, up to 700 earns 4%, above that
// 5%. Result is floored to whole points.
func RewardPointsForTotal(finalTotal int64) int {
	if finalTotal <= 0 {
		return 0
	}
	var pct int64
	switch {
	case finalTotal <= 300:
		pct = 2
	case finalTotal <= 700:
		pct = 4
	default:
		pct = 5
	}
	return int(finalTotal * pct / 100)
}
