package store

import (
	"context"
	"sync"

	"wishlist/internal/catalog/models"
	"wishlist/pkg/platform/sentinel"
)

// InMemoryStore serves collaborator reads from maps. Put* methods exist for
// seeding and tests.
type InMemoryStore struct {
	mu          sync.RWMutex
	users       map[int64]models.User
	wishlists   map[int64]models.Wishlist
	shareTokens map[string]int64
	friendships []models.Friendship
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		users:       make(map[int64]models.User),
		wishlists:   make(map[int64]models.Wishlist),
		shareTokens: make(map[string]int64),
	}
}

func (s *InMemoryStore) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// PutWishlist stores w, resolving its owner profile from the stored users.
func (s *InMemoryStore) PutWishlist(w models.Wishlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.users[w.Owner.ID]; ok {
		w.Owner = owner
	}
	s.wishlists[w.ID] = w
	if w.ShareToken != "" {
		s.shareTokens[w.ShareToken] = w.ID
	}
}

func (s *InMemoryStore) PutFriendship(f models.Friendship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friendships = append(s.friendships, f)
}

func (s *InMemoryStore) UserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

func (s *InMemoryStore) WishlistByID(_ context.Context, id int64) (*models.Wishlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wishlists[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &w, nil
}

func (s *InMemoryStore) WishlistByShareToken(_ context.Context, token string) (*models.Wishlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.shareTokens[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	w := s.wishlists[id]
	return &w, nil
}

// AcceptedFriendIDs returns the other side of every accepted edge touching
// userID. Duplicate edges yield duplicate ids; callers dedupe.
func (s *InMemoryStore) AcceptedFriendIDs(_ context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []int64
	for _, f := range s.friendships {
		if f.Status != models.FriendshipAccepted {
			continue
		}
		switch userID {
		case f.UserID:
			ids = append(ids, f.FriendID)
		case f.FriendID:
			ids = append(ids, f.UserID)
		}
	}
	return ids, nil
}
