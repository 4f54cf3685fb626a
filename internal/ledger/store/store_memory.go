package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	identity "wishlist/internal/identity/models"
	"wishlist/internal/ledger/models"
	"wishlist/pkg/platform/sentinel"
)

// SessionCreator persists guest sessions minted during a reservation.
type SessionCreator interface {
	Create(ctx context.Context, session *identity.GuestSession) error
}

// InMemoryStore keeps items and reservations in maps. Writes made with a Txn
// in the context are staged and applied together on Commit; writes without
// one apply immediately.
type InMemoryStore struct {
	mu           sync.RWMutex
	items        map[int64]*models.Item
	reservations map[uuid.UUID]*models.Reservation
	sessions     SessionCreator
}

func NewInMemory(sessions SessionCreator) *InMemoryStore {
	return &InMemoryStore{
		items:        make(map[int64]*models.Item),
		reservations: make(map[uuid.UUID]*models.Reservation),
		sessions:     sessions,
	}
}

// PutItem seeds an item.
func (s *InMemoryStore) PutItem(item *models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item.Clone()
}

func (s *InMemoryStore) ItemByID(_ context.Context, id int64) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return item.Clone(), nil
}

// LockItem reads the item as seen by the unit of work in ctx. Exclusion
// itself comes from the caller's keyed lock.
func (s *InMemoryStore) LockItem(ctx context.Context, id int64) (*models.Item, error) {
	if t := txnFrom(ctx); t != nil {
		if item, ok := t.items[id]; ok {
			return item.Clone(), nil
		}
	}
	return s.ItemByID(ctx, id)
}

func (s *InMemoryStore) SaveItem(ctx context.Context, item *models.Item) error {
	if t := txnFrom(ctx); t != nil {
		t.items[item.ID] = item.Clone()
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.items[item.ID] = item.Clone()
	return nil
}

func (s *InMemoryStore) ItemsByWishlist(_ context.Context, wishlistID int64) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []*models.Item
	for _, item := range s.items {
		if item.WishlistID == wishlistID {
			items = append(items, item.Clone())
		}
	}
	slices.SortFunc(items, func(a, b *models.Item) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return items, nil
}

func (s *InMemoryStore) FindActiveReservation(ctx context.Context, itemID int64, ref models.ContributorRef) (*models.Reservation, error) {
	match := func(r *models.Reservation) bool {
		return r.ItemID == itemID && r.Actor == ref && r.IsActive()
	}
	t := txnFrom(ctx)
	if t != nil {
		for _, r := range t.reservations {
			if match(r) {
				cp := *r
				return &cp, nil
			}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, r := range s.reservations {
		if t != nil {
			if _, staged := t.reservations[id]; staged {
				continue
			}
		}
		if match(r) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) SaveReservation(ctx context.Context, r *models.Reservation) error {
	cp := *r
	if t := txnFrom(ctx); t != nil {
		t.reservations[r.ID] = &cp
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[r.ID] = &cp
	return nil
}

// ActiveReservationsByActor lists ref's active reservations, newest first.
func (s *InMemoryStore) ActiveReservationsByActor(_ context.Context, ref models.ContributorRef) ([]*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Reservation
	for _, r := range s.reservations {
		if r.IsActive() && r.Actor == ref {
			cp := *r
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *models.Reservation) int {
		return b.ReservedAt.Compare(a.ReservedAt)
	})
	return out, nil
}

// ReservationsByItem returns every reservation row for itemID, oldest first.
func (s *InMemoryStore) ReservationsByItem(_ context.Context, itemID int64) ([]*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Reservation
	for _, r := range s.reservations {
		if r.ItemID == itemID {
			cp := *r
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *models.Reservation) int {
		return a.ReservedAt.Compare(b.ReservedAt)
	})
	return out, nil
}

func (s *InMemoryStore) CreateGuestSession(ctx context.Context, session *identity.GuestSession) error {
	if t := txnFrom(ctx); t != nil {
		t.sessions = append(t.sessions, session)
		return nil
	}
	return s.sessions.Create(ctx, session)
}

// Begin opens a unit of work. Callers hold the item lock for its lifetime.
func (s *InMemoryStore) Begin() *Txn {
	return &Txn{
		store:        s,
		items:        make(map[int64]*models.Item),
		reservations: make(map[uuid.UUID]*models.Reservation),
	}
}

// Txn buffers writes until Commit. Dropping it without committing is a
// rollback.
type Txn struct {
	store        *InMemoryStore
	items        map[int64]*models.Item
	reservations map[uuid.UUID]*models.Reservation
	sessions     []*identity.GuestSession
}

// Commit persists staged sessions first, then applies item and reservation
// writes in one critical section. A session failure leaves the store
// untouched.
func (t *Txn) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, session := range t.sessions {
		if err := t.store.sessions.Create(ctx, session); err != nil {
			return err
		}
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for id, item := range t.items {
		t.store.items[id] = item
	}
	for id, r := range t.reservations {
		t.store.reservations[id] = r
	}
	return nil
}

type txnKey struct{}

// WithTxn carries t so store calls made with the returned context are staged.
func WithTxn(ctx context.Context, t *Txn) context.Context {
	return context.WithValue(ctx, txnKey{}, t)
}

func txnFrom(ctx context.Context) *Txn {
	t, _ := ctx.Value(txnKey{}).(*Txn)
	return t
}
