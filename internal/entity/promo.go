package entity

import "time"

type PromoType string

const (
	PromoPercentage PromoType = "percentage"
	PromoFixed      PromoType = "fixed"
)

// PromoCode values are stored upper-cased so lookups are case-insensitive.
// A nil ValidFrom/ValidUntil leaves that end of the window open.
type PromoCode struct {
	ID         int        `json:"id"`
	Code       string     `json:"code"`
	Type       PromoType  `json:"type"`
	Value      int64      `json:"value"`
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	Active     bool       `json:"active"`
}

func (p *PromoCode) IsActive(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return false
	}
	return true
}
