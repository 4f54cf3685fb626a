package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	identity "wishlist/internal/identity/models"
	"wishlist/internal/ledger/models"
	"wishlist/pkg/platform/sentinel"
)

type fakeSessions struct {
	created []*identity.GuestSession
	err     error
}

func (f *fakeSessions) Create(_ context.Context, session *identity.GuestSession) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, session)
	return nil
}

type InMemoryStoreSuite struct {
	suite.Suite
	sessions *fakeSessions
	store    *InMemoryStore
	now      time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.sessions = &fakeSessions{}
	s.store = NewInMemory(s.sessions)
	price := decimal.NewFromInt(100)
	s.store.PutItem(&models.Item{ID: 2, WishlistID: 7, Title: "Lamp", Price: &price})
	s.store.PutItem(&models.Item{ID: 1, WishlistID: 7, Title: "Book"})
	s.store.PutItem(&models.Item{ID: 3, WishlistID: 8, Title: "Other"})
}

func (s *InMemoryStoreSuite) guestSession() *identity.GuestSession {
	session, err := identity.NewGuestSession(uuid.New(), []byte("hash"), "Gina", "", "", "", s.now, time.Hour)
	s.Require().NoError(err)
	return session
}

func (s *InMemoryStoreSuite) TestItems() {
	ctx := context.Background()

	s.Run("reads return copies", func() {
		item, err := s.store.ItemByID(ctx, 2)
		s.Require().NoError(err)
		item.Title = "changed"

		again, err := s.store.ItemByID(ctx, 2)
		s.Require().NoError(err)
		s.Equal("Lamp", again.Title)
	})

	s.Run("missing item", func() {
		_, err := s.store.ItemByID(ctx, 99)
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.ErrorIs(s.store.SaveItem(ctx, &models.Item{ID: 99}), sentinel.ErrNotFound)
	})

	s.Run("wishlist items are ordered by id", func() {
		items, err := s.store.ItemsByWishlist(ctx, 7)
		s.Require().NoError(err)
		s.Require().Len(items, 2)
		s.Equal(int64(1), items[0].ID)
		s.Equal(int64(2), items[1].ID)
	})
}

func (s *InMemoryStoreSuite) TestTxnCommit() {
	ctx := context.Background()
	txn := s.store.Begin()
	tctx := WithTxn(ctx, txn)

	item, err := s.store.LockItem(tctx, 2)
	s.Require().NoError(err)
	item.CollectedAmount = decimal.NewFromInt(40)
	s.Require().NoError(s.store.SaveItem(tctx, item))

	actor := identity.UserActor(5, "Fedor", "fedor")
	r := models.NewReservation(2, actor, s.now)
	s.Require().NoError(s.store.SaveReservation(tctx, r))
	session := s.guestSession()
	s.Require().NoError(s.store.CreateGuestSession(tctx, session))

	s.Run("staged writes are visible inside the unit of work only", func() {
		staged, err := s.store.LockItem(tctx, 2)
		s.Require().NoError(err)
		s.True(staged.CollectedAmount.Equal(decimal.NewFromInt(40)))
		_, err = s.store.FindActiveReservation(tctx, 2, models.UserRef(5))
		s.NoError(err)

		outside, err := s.store.ItemByID(ctx, 2)
		s.Require().NoError(err)
		s.True(outside.CollectedAmount.IsZero())
		_, err = s.store.FindActiveReservation(ctx, 2, models.UserRef(5))
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.Empty(s.sessions.created)
	})

	s.Require().NoError(txn.Commit(ctx))

	s.Run("commit applies everything", func() {
		stored, err := s.store.ItemByID(ctx, 2)
		s.Require().NoError(err)
		s.True(stored.CollectedAmount.Equal(decimal.NewFromInt(40)))
		found, err := s.store.FindActiveReservation(ctx, 2, models.UserRef(5))
		s.Require().NoError(err)
		s.Equal(r.ID, found.ID)
		s.Len(s.sessions.created, 1)
	})
}

func (s *InMemoryStoreSuite) TestTxnDiscardedIsRollback() {
	ctx := context.Background()
	tctx := WithTxn(ctx, s.store.Begin())

	item, err := s.store.LockItem(tctx, 1)
	s.Require().NoError(err)
	item.IsReserved = true
	s.Require().NoError(s.store.SaveItem(tctx, item))

	stored, err := s.store.ItemByID(ctx, 1)
	s.Require().NoError(err)
	s.False(stored.IsReserved)
}

func (s *InMemoryStoreSuite) TestSessionFailureLeavesStoreUntouched() {
	ctx := context.Background()
	s.sessions.err = errors.New("session store down")
	txn := s.store.Begin()
	tctx := WithTxn(ctx, txn)

	item, err := s.store.LockItem(tctx, 2)
	s.Require().NoError(err)
	item.IsReserved = true
	s.Require().NoError(s.store.SaveItem(tctx, item))
	s.Require().NoError(s.store.CreateGuestSession(tctx, s.guestSession()))

	s.Error(txn.Commit(ctx))
	stored, err := s.store.ItemByID(ctx, 2)
	s.Require().NoError(err)
	s.False(stored.IsReserved)
}

func (s *InMemoryStoreSuite) TestReservations() {
	ctx := context.Background()
	guest := s.guestSession()
	actor := identity.GuestActor(guest)

	older := models.NewReservation(1, actor, s.now)
	newer := models.NewReservation(2, actor, s.now.Add(time.Minute))
	cancelled := models.NewReservation(3, actor, s.now.Add(2*time.Minute))
	cancelled.Cancel(s.now.Add(3 * time.Minute))
	for _, r := range []*models.Reservation{older, newer, cancelled} {
		s.Require().NoError(s.store.SaveReservation(ctx, r))
	}

	active, err := s.store.ActiveReservationsByActor(ctx, models.RefFor(actor))
	s.Require().NoError(err)
	s.Require().Len(active, 2)
	s.Equal(newer.ID, active[0].ID)
	s.Equal(older.ID, active[1].ID)

	_, err = s.store.FindActiveReservation(ctx, 3, models.RefFor(actor))
	s.ErrorIs(err, sentinel.ErrNotFound)

	rows, err := s.store.ReservationsByItem(ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(models.ReservationCancelled, rows[0].Status)
}
