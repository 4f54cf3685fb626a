package store

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/google/uuid"

	"wishlist/internal/identity/models"
	"wishlist/pkg/platform/sentinel"
)

// InMemoryGuestSessionStore keeps guest sessions in maps keyed by id and token digest.
type InMemoryGuestSessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]models.GuestSession
	byHash   map[string]uuid.UUID
}

func NewInMemory() *InMemoryGuestSessionStore {
	return &InMemoryGuestSessionStore{
		sessions: make(map[uuid.UUID]models.GuestSession),
		byHash:   make(map[string]uuid.UUID),
	}
}

func (s *InMemoryGuestSessionStore) Create(_ context.Context, session *models.GuestSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := hex.EncodeToString(session.TokenHash)
	if _, exists := s.byHash[key]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.sessions[session.ID]; exists {
		return sentinel.ErrConflict
	}
	s.sessions[session.ID] = *session
	s.byHash[key] = session.ID
	return nil
}

func (s *InMemoryGuestSessionStore) FindByTokenHash(_ context.Context, hash []byte) (*models.GuestSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHash[hex.EncodeToString(hash)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	session := s.sessions[id]
	return &session, nil
}

func (s *InMemoryGuestSessionStore) FindByID(_ context.Context, id uuid.UUID) (*models.GuestSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &session, nil
}
