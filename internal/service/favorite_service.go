package service

import (
	"context"
	"sync"

	"cafe-order-service/internal/entity"
)

type FavoriteStore interface {
	Toggle(ctx context.Context, userID, itemID int) (bool, error)
	Add(ctx context.Context, userID, itemID int) error
	Remove(ctx context.Context, userID, itemID int) error
	List(ctx context.Context, userID int) ([]int, error)
}

// LocalFavorites is the anonymous, offline favorites set. Operations on it
// never fail; it degrades to local-only persistence until the user logs in.
type LocalFavorites struct {
	mu    sync.Mutex
	items map[int]struct{}
}

func NewLocalFavorites() *LocalFavorites {
	return &LocalFavorites{items: make(map[int]struct{})}
}

// Toggle flips membership and reports the resulting state.
func (l *LocalFavorites) Toggle(itemID int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.items[itemID]; ok {
		delete(l.items, itemID)
		return false
	}
	l.items[itemID] = struct{}{}
	return true
}

func (l *LocalFavorites) Contains(itemID int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.items[itemID]
	return ok
}

func (l *LocalFavorites) Items() []int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]int, 0, len(l.items))
	for id := range l.items {
		out = append(out, id)
	}
	return out
}

// FavoriteService routes toggles to the remote set for authenticated users
// and to the local set for anonymous ones.
type FavoriteService struct {
	store FavoriteStore
}

func NewFavoriteService(store FavoriteStore) *FavoriteService {
	return &FavoriteService{store: store}
}

// Toggle flips the favorite state of itemID. A userID of zero means the
// session is anonymous and only local state moves. For authenticated users
// the operation is remote-first: a remote failure leaves local state exactly
// as it was, so the caller never shows an optimistic flip it has to roll
// back.
func (s *FavoriteService) Toggle(ctx context.Context, userID, itemID int, local *LocalFavorites) (bool, error) {
	if itemID <= 0 {
		return false, entity.ErrValidation
	}

	if userID == 0 {
		if local == nil {
			return false, entity.ErrValidation
		}
		return local.Toggle(itemID), nil
	}

	isFavorite, err := s.store.Toggle(ctx, userID, itemID)
	if err != nil {
		logger.Error().Err(err).Int("user_id", userID).Int("item_id", itemID).Msg("Error toggling favorite")
		return false, err
	}
	return isFavorite, nil
}

// Remove deletes itemID from the user's remote set; removing an item that
// is not in the set is a no-op.
func (s *FavoriteService) Remove(ctx context.Context, userID, itemID int) error {
	if itemID <= 0 {
		return entity.ErrValidation
	}
	return s.store.Remove(ctx, userID, itemID)
}

// MergeOnLogin unions the anonymous local set into the user's remote set.
// Union, not overwrite: nothing already favorited on either side is lost.
func (s *FavoriteService) MergeOnLogin(ctx context.Context, userID int, local *LocalFavorites) error {
	if local == nil {
		return nil
	}
	for _, itemID := range local.Items() {
		if err := s.store.Add(ctx, userID, itemID); err != nil {
			return err
		}
	}
	return nil
}

func (s *FavoriteService) List(ctx context.Context, userID int) ([]int, error) {
	return s.store.List(ctx, userID)
}
