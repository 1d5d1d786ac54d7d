package entity

import "errors"

var (
	// ErrValidation covers malformed input that never reaches the stores.
	ErrValidation = errors.New("invalid input")

	// ErrInvalidPromo means the promo code is unknown or outside its
	// validity window. It is never silently ignored at checkout.
	ErrInvalidPromo = errors.New("promo code is invalid or inactive")

	// ErrInsufficientPoints means a redemption asked for more points than
	// the account holds. The balance is left untouched.
	ErrInsufficientPoints = errors.New("insufficient reward points")

	// ErrInvalidTransition means the requested status change is not an
	// edge of the order state machine, or the actor may not take it.
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrSessionExpired distinguishes an expired or revoked session from a
	// generic failure; callers re-authenticate instead of retrying.
	ErrSessionExpired = errors.New("session expired")

	// ErrUnavailableItems blocks checkout while the cart still references
	// unavailable menu items.
	ErrUnavailableItems = errors.New("cart contains unavailable items")

	ErrNotOrderOwner     = errors.New("order belongs to another user")
	ErrDuplicateCheckout = errors.New("checkout already submitted")
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
)
