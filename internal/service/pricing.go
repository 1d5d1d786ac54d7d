package service

import (
	"time"

	"cafe-order-service/internal/entity"
)

// PricingConfig carries the knobs of the pricing engine. PointValue is the
// currency value (minor units) of one redeemed reward point.
type PricingConfig struct {
	PointValue int64
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{PointValue: 1}
}

// Totals is the outcome of pricing a cart snapshot.
type Totals struct {
	OrderTotal     int64 `json:"order_total"`
	DiscountAmount int64 `json:"discount_amount"`
	FinalTotal     int64 `json:"final_total"`
}

// ComputeTotals prices a cart snapshot. The promo, if any, must already be
// resolved from storage; passing nil means no code was supplied. Promo and
// point discounts are additive, never compounding, and the combined discount
// is clamped at the order total so the final total cannot go negative.
//
// The function has no side effects and is deterministic for a given now, so
// a total can always be re-derived for verification.
func ComputeTotals(cfg PricingConfig, snapshot entity.CartSnapshot, promo *entity.PromoCode, pointsToRedeem, balance int, now time.Time) (Totals, error) {
	if pointsToRedeem < 0 {
		return Totals{}, entity.ErrValidation
	}

	var orderTotal int64
	for _, line := range snapshot.Lines {
		orderTotal += line.Subtotal()
	}

	var promoDiscount int64
	if promo != nil {
		if !promo.IsActive(now) {
			return Totals{}, entity.ErrInvalidPromo
		}
		switch promo.Type {
		case entity.PromoPercentage:
			promoDiscount = orderTotal * promo.Value / 100
		case entity.PromoFixed:
			promoDiscount = promo.Value
		default:
			return Totals{}, entity.ErrInvalidPromo
		}
	}

	if pointsToRedeem > balance {
		return Totals{}, entity.ErrInsufficientPoints
	}
	pointsDiscount := int64(pointsToRedeem) * cfg.PointValue

	discount := promoDiscount + pointsDiscount
	if discount > orderTotal {
		discount = orderTotal
	}

	return Totals{
		OrderTotal:     orderTotal,
		DiscountAmount: discount,
		FinalTotal:     orderTotal - discount,
	}, nil
}
