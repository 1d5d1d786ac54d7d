package entity

import "time"

// CartLine references a menu item with the unit price captured at add time,
// so a later catalog price change never alters an open cart or a placed order.
type CartLine struct {
	ItemID    int    `json:"item_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

func (l CartLine) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// CartSnapshot is the full cart state frozen at checkout time.
type CartSnapshot struct {
	UserID     int        `json:"user_id"`
	Lines      []CartLine `json:"lines"`
	CapturedAt time.Time  `json:"captured_at"`
}
