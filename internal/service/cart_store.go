package service

import (
	"sync"
	"time"

	"cafe-order-service/internal/entity"
)

// CartStore holds every open cart, one per user. Carts are session-local
// state; the mutex only guards the map against concurrent requests from the
// same user's tabs, there is no cross-user coordination to do.
type CartStore struct {
	mu    sync.Mutex
	carts map[int][]entity.CartLine
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[int][]entity.CartLine)}
}

// AddItem puts qty units of item into the user's cart, capturing the unit
// price as of now. Adding an item already in the cart increments its
// quantity instead of creating a second line.
func (s *CartStore) AddItem(userID int, item *entity.MenuItem, qty int) []entity.CartLine {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ItemID == item.ID {
			lines[i].Quantity += qty
			return copyLines(lines)
		}
	}

	lines = append(lines, entity.CartLine{
		ItemID:    item.ID,
		Title:     item.Title,
		Quantity:  qty,
		UnitPrice: item.Price,
	})
	s.carts[userID] = lines
	return copyLines(lines)
}

func (s *CartStore) RemoveItem(userID, itemID int) []entity.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.dropLine(userID, itemID))
}

// SetQuantity updates a line's quantity; zero or less removes the line.
func (s *CartStore) SetQuantity(userID, itemID, qty int) []entity.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		return copyLines(s.dropLine(userID, itemID))
	}

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ItemID == itemID {
			lines[i].Quantity = qty
			break
		}
	}
	return copyLines(lines)
}

func (s *CartStore) Clear(userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}

// Snapshot returns a deep copy of the cart frozen at the current instant.
// Later cart mutations never show through a snapshot, which is what keeps a
// placed order equal to what the user saw at checkout.
func (s *CartStore) Snapshot(userID int) entity.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return entity.CartSnapshot{
		UserID:     userID,
		Lines:      copyLines(s.carts[userID]),
		CapturedAt: time.Now(),
	}
}

func (s *CartStore) dropLine(userID, itemID int) []entity.CartLine {
	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ItemID == itemID {
			lines = append(lines[:i], lines[i+1:]...)
			break
		}
	}
	if len(lines) == 0 {
		delete(s.carts, userID)
		return nil
	}
	s.carts[userID] = lines
	return lines
}

func copyLines(lines []entity.CartLine) []entity.CartLine {
	if lines == nil {
		return nil
	}
	out := make([]entity.CartLine, len(lines))
	copy(out, lines)
	return out
}
