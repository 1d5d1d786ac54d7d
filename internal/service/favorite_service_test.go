package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-order-service/internal/entity"
)

type fakeFavoriteStore struct {
	mu   sync.Mutex
	sets map[int]map[int]struct{}
	err  error
}

func newFakeFavoriteStore() *fakeFavoriteStore {
	return &fakeFavoriteStore{sets: make(map[int]map[int]struct{})}
}

func (s *fakeFavoriteStore) set(userID int) map[int]struct{} {
	if s.sets[userID] == nil {
		s.sets[userID] = make(map[int]struct{})
	}
	return s.sets[userID]
}

func (s *fakeFavoriteStore) Toggle(_ context.Context, userID, itemID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}

	set := s.set(userID)
	if _, ok := set[itemID]; ok {
		delete(set, itemID)
		return false, nil
	}
	set[itemID] = struct{}{}
	return true, nil
}

func (s *fakeFavoriteStore) Add(_ context.Context, userID, itemID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.set(userID)[itemID] = struct{}{}
	return nil
}

func (s *fakeFavoriteStore) Remove(_ context.Context, userID, itemID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	delete(s.set(userID), itemID)
	return nil
}

func (s *fakeFavoriteStore) List(_ context.Context, userID int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	var items []int
	for id := range s.set(userID) {
		items = append(items, id)
	}
	sort.Ints(items)
	return items, nil
}

func TestFavoriteToggle(t *testing.T) {
	ctx := context.Background()

	t.Run("toggle twice returns to the original state", func(t *testing.T) {
		store := newFakeFavoriteStore()
		svc := NewFavoriteService(store)

		first, err := svc.Toggle(ctx, 1, 7, nil)
		require.NoError(t, err)
		assert.True(t, first)

		second, err := svc.Toggle(ctx, 1, 7, nil)
		require.NoError(t, err)
		assert.False(t, second)

		items, _ := svc.List(ctx, 1)
		assert.Empty(t, items)
	})

	t.Run("the set never holds duplicates", func(t *testing.T) {
		store := newFakeFavoriteStore()
		svc := NewFavoriteService(store)

		svc.Toggle(ctx, 1, 7, nil)
		svc.Toggle(ctx, 1, 7, nil)
		svc.Toggle(ctx, 1, 7, nil)

		items, _ := svc.List(ctx, 1)
		assert.Equal(t, []int{7}, items)
	})

	t.Run("anonymous toggle is local and never errors", func(t *testing.T) {
		svc := NewFavoriteService(newFakeFavoriteStore())
		local := NewLocalFavorites()

		on, err := svc.Toggle(ctx, 0, 7, local)
		require.NoError(t, err)
		assert.True(t, on)
		assert.True(t, local.Contains(7))

		off, err := svc.Toggle(ctx, 0, 7, local)
		require.NoError(t, err)
		assert.False(t, off)
		assert.False(t, local.Contains(7))
	})

	t.Run("remote failure does not flip local state", func(t *testing.T) {
		store := newFakeFavoriteStore()
		store.err = entity.ErrSessionExpired
		svc := NewFavoriteService(store)
		local := NewLocalFavorites()
		local.Toggle(7)

		_, err := svc.Toggle(ctx, 1, 7, local)
		assert.ErrorIs(t, err, entity.ErrSessionExpired, "session expiry must stay distinguishable")
		assert.True(t, local.Contains(7), "local state must be untouched")
	})

	t.Run("invalid item id", func(t *testing.T) {
		svc := NewFavoriteService(newFakeFavoriteStore())
		_, err := svc.Toggle(ctx, 1, 0, nil)
		assert.ErrorIs(t, err, entity.ErrValidation)
	})
}

func TestFavoriteMergeOnLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("union keeps both sides", func(t *testing.T) {
		store := newFakeFavoriteStore()
		svc := NewFavoriteService(store)

		// remote already has 1 and 2
		store.Add(ctx, 1, 1)
		store.Add(ctx, 1, 2)

		local := NewLocalFavorites()
		local.Toggle(2)
		local.Toggle(3)

		require.NoError(t, svc.MergeOnLogin(ctx, 1, local))

		items, _ := svc.List(ctx, 1)
		assert.Equal(t, []int{1, 2, 3}, items)
	})

	t.Run("nil local set is a no-op", func(t *testing.T) {
		svc := NewFavoriteService(newFakeFavoriteStore())
		assert.NoError(t, svc.MergeOnLogin(ctx, 1, nil))
	})
}

func TestFavoriteRemove(t *testing.T) {
	ctx := context.Background()
	store := newFakeFavoriteStore()
	svc := NewFavoriteService(store)

	store.Add(ctx, 1, 7)
	require.NoError(t, svc.Remove(ctx, 1, 7))
	require.NoError(t, svc.Remove(ctx, 1, 7), "removing an absent item is a no-op")

	items, _ := svc.List(ctx, 1)
	assert.Empty(t, items)
}
