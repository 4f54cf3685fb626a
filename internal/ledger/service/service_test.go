package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"wishlist/internal/audit"
	catalog "wishlist/internal/catalog/models"
	catalogstore "wishlist/internal/catalog/store"
	identity "wishlist/internal/identity/models"
	identitysvc "wishlist/internal/identity/service"
	identitystore "wishlist/internal/identity/store"
	"wishlist/internal/identity/token"
	"wishlist/internal/ledger/lock"
	"wishlist/internal/ledger/metrics"
	"wishlist/internal/ledger/models"
	"wishlist/internal/ledger/store"
	notify "wishlist/internal/notify/models"
	dErrors "wishlist/pkg/domain-errors"
	"wishlist/pkg/requestcontext"
)

// =============================================================================
// Ledger Service Test Suite
// =============================================================================
// Runs the ledger against the in-memory stores and keyed lock so concurrency
// and all-or-nothing behaviour are exercised end to end below the HTTP layer.

const (
	ownerID    int64 = 1
	friendID   int64 = 2
	friend2ID  int64 = 3
	strangerID int64 = 4

	wishlistID  int64 = 10
	archivedID  int64 = 11
	pricedID    int64 = 100
	pricelessID int64 = 101
	shareToken        = "share-token"
)

type LedgerServiceSuite struct {
	suite.Suite
	catalog  *catalogstore.InMemoryStore
	sessions *identitystore.InMemoryGuestSessionStore
	items    *store.InMemoryStore
	locks    *lock.Keyed
	audit    *audit.InMemoryStore
	notifier *recordingNotifier
	service  *Service
	now      time.Time
	ctx      context.Context
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *recordingNotifier) Enqueue(n notify.Notification) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return true
}

func (r *recordingNotifier) all() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.sent...)
}

func (s *LedgerServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.catalog = catalogstore.NewInMemory()
	s.catalog.PutUser(catalog.User{ID: ownerID, Username: "olga", FullName: "Olga Owner"})
	s.catalog.PutUser(catalog.User{ID: friendID, Username: "fedor", FullName: "Fedor Friend"})
	s.catalog.PutUser(catalog.User{ID: friend2ID, Username: "fiona"})
	s.catalog.PutUser(catalog.User{ID: strangerID, Username: "sam"})
	s.catalog.PutWishlist(catalog.Wishlist{
		ID: wishlistID, Owner: catalog.User{ID: ownerID}, Title: "Birthday",
		ShareToken: shareToken, Visibility: catalog.VisibilityByLink,
	})
	s.catalog.PutWishlist(catalog.Wishlist{
		ID: archivedID, Owner: catalog.User{ID: ownerID}, Title: "Old",
		ShareToken: "archived-token", IsArchived: true,
	})
	s.catalog.PutFriendship(catalog.Friendship{UserID: ownerID, FriendID: friendID, Status: catalog.FriendshipAccepted})
	s.catalog.PutFriendship(catalog.Friendship{UserID: ownerID, FriendID: friend2ID, Status: catalog.FriendshipAccepted})

	s.sessions = identitystore.NewInMemory()
	s.items = store.NewInMemory(s.sessions)
	price := decimal.RequireFromString("100")
	target := decimal.RequireFromString("50")
	s.items.PutItem(&models.Item{ID: pricedID, WishlistID: wishlistID, Title: "Kettle", Price: &price, Currency: "RUB"})
	s.items.PutItem(&models.Item{ID: pricelessID, WishlistID: wishlistID, Title: "Surprise", TargetAmount: &target, Currency: "RUB"})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := identitysvc.New(s.catalog, s.sessions, identitysvc.WithLogger(logger))
	s.locks = lock.NewKeyed()
	s.audit = audit.NewInMemoryStore()
	s.notifier = &recordingNotifier{}

	var err error
	s.service, err = New(
		s.items,
		NewInMemoryItemTx(s.items, s.locks, 2*time.Second, 5*time.Second),
		s.catalog,
		resolver,
		WithLogger(logger),
		WithMetrics(metrics.New(prometheus.NewRegistry())),
		WithNotifier(s.notifier),
		WithAuditor(audit.NewPublisher(s.audit, audit.WithLogger(logger))),
	)
	s.Require().NoError(err)
}

func amount(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func (s *LedgerServiceSuite) user(id int64) identity.Claim {
	return identity.Claim{UserID: id}
}

func (s *LedgerServiceSuite) guest(name string) identity.Claim {
	return identity.Claim{Name: name, ClientIP: "203.0.113.7"}
}

func (s *LedgerServiceSuite) stored(id int64) *models.Item {
	item, err := s.items.ItemByID(s.ctx, id)
	s.Require().NoError(err)
	return item
}

// =============================================================================
// Constructor
// =============================================================================

func (s *LedgerServiceSuite) TestNew() {
	tx := NewInMemoryItemTx(s.items, s.locks, 0, 0)
	resolver := identitysvc.New(s.catalog, s.sessions)

	_, err := New(nil, tx, s.catalog, resolver)
	s.ErrorContains(err, "ledger store is required")
	_, err = New(s.items, nil, s.catalog, resolver)
	s.ErrorContains(err, "transaction runner is required")
	_, err = New(s.items, tx, nil, resolver)
	s.ErrorContains(err, "wishlist reader is required")
	_, err = New(s.items, tx, s.catalog, nil)
	s.ErrorContains(err, "identity resolver is required")
}

// =============================================================================
// Reserve
// =============================================================================

func (s *LedgerServiceSuite) TestFullReservation() {
	s.Run("first full reservation succeeds", func() {
		res, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: s.user(friendID)})
		s.Require().NoError(err)
		s.True(res.Item.IsReserved)
		s.True(res.Item.CollectedAmount.Equal(decimal.NewFromInt(100)))
		s.Equal("Fedor Friend", *res.Item.ReservedByName)
		s.Empty(res.GuestToken)
	})

	s.Run("second full reservation by someone else conflicts", func() {
		_, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: s.user(friend2ID)})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Len(s.stored(pricedID).Contributors, 1)
	})

	s.Run("unknown item is not found", func() {
		_, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: 999, Claim: s.user(friendID)})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *LedgerServiceSuite) TestContributionOverflowLeavesLedgerUnchanged() {
	_, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: s.user(friendID), Amount: amount("80")})
	s.Require().NoError(err)

	_, err = s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: s.user(friend2ID), Amount: amount("20.01")})
	s.Require().True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Contains(err.Error(), "20.00")

	item := s.stored(pricedID)
	s.True(item.CollectedAmount.Equal(decimal.NewFromInt(80)))
	s.Len(item.Contributors, 1)
}

func (s *LedgerServiceSuite) TestSelfReservationGuard() {
	cases := []struct {
		name  string
		claim identity.Claim
	}{
		{"owner account", s.user(ownerID)},
		{"guest using the owner's full name", s.guest("olga owner")},
		{"guest using the owner's username", s.guest("  OLGA ")},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: tc.claim})
			s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		})
	}
	s.False(s.stored(pricedID).IsReserved)
}

// price=100: A contributes 40, B contributes 60, A withdraws.
func (s *LedgerServiceSuite) TestSplitFundingScenario() {
	a, b := s.user(friendID), s.user(friend2ID)

	res, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: a, Amount: amount("40")})
	s.Require().NoError(err)
	s.True(res.Item.CollectedAmount.Equal(decimal.NewFromInt(40)))
	s.False(res.Item.IsReserved)

	res, err = s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: b, Amount: amount("60")})
	s.Require().NoError(err)
	s.True(res.Item.CollectedAmount.Equal(decimal.NewFromInt(100)))
	s.True(res.Item.IsReserved)

	res, err = s.service.Unreserve(s.ctx, UnreserveRequest{ItemID: pricedID, Claim: a})
	s.Require().NoError(err)
	s.True(res.Item.CollectedAmount.Equal(decimal.NewFromInt(60)))
	s.False(res.Item.IsReserved)
	s.Require().Len(res.Item.Contributors, 1)
	s.Equal("fiona", res.Item.Contributors[0].Name)
	s.True(res.Item.Contributors[0].Amount.Equal(decimal.NewFromInt(60)))
}

// price=null, target=50: full reservation at zero, contributions refused.
func (s *LedgerServiceSuite) TestPricelessScenario() {
	res, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricelessID, Claim: s.user(friendID)})
	s.Require().NoError(err)
	s.True(res.Item.IsReserved)
	s.True(res.Item.CollectedAmount.IsZero())

	_, err = s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricelessID, Claim: s.user(friend2ID), Amount: amount("10")})
	s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
}

func (s *LedgerServiceSuite) TestReservationRows() {
	claim := s.user(friendID)
	for _, v := range []string{"10", "15"} {
		_, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: claim, Amount: amount(v)})
		s.Require().NoError(err)
	}

	rows, err := s.items.ReservationsByItem(s.ctx, pricedID)
	s.Require().NoError(err)
	s.Require().Len(rows, 1, "contributions by one actor share an active row")
	s.Equal(models.ReservationActive, rows[0].Status)

	_, err = s.service.Unreserve(s.ctx, UnreserveRequest{ItemID: pricedID, Claim: claim})
	s.Require().NoError(err)

	rows, err = s.items.ReservationsByItem(s.ctx, pricedID)
	s.Require().NoError(err)
	s.Require().Len(rows, 1, "cancelled rows are kept")
	s.Equal(models.ReservationCancelled, rows[0].Status)
	s.Require().NotNil(rows[0].CancelledAt)
	s.Equal(s.now, *rows[0].CancelledAt)

	_, err = s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: claim, Amount: amount("5")})
	s.Require().NoError(err)
	rows, err = s.items.ReservationsByItem(s.ctx, pricedID)
	s.Require().NoError(err)
	s.Len(rows, 2)
}

// =============================================================================
// Guests
// =============================================================================

func (s *LedgerServiceSuite) TestGuestFlow() {
	first, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: s.guest("Gina"), Amount: amount("30")})
	s.Require().NoError(err)
	s.Require().NotEmpty(first.GuestToken)
	s.True(first.Actor.IsGuest())

	session, err := s.sessions.FindByTokenHash(s.ctx, token.Hash(first.GuestToken))
	s.Require().NoError(err, "minted session commits with the reservation")
	s.Equal("Gina", session.DisplayName)

	claim := identity.Claim{GuestToken: first.GuestToken, Name: "Gina"}
	second, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: claim, Amount: amount("20")})
	s.Require().NoError(err)
	s.Equal(first.GuestToken, second.GuestToken)
	s.Equal(first.Actor.SessionID, second.Actor.SessionID)
	s.True(second.Item.CollectedAmount.Equal(decimal.NewFromInt(50)))

	s.Run("another guest with the same name cannot withdraw", func() {
		other, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricelessID, Claim: s.guest("Gina")})
		s.Require().NoError(err)
		_, err = s.service.Unreserve(s.ctx, UnreserveRequest{ItemID: pricedID, Claim: identity.Claim{GuestToken: other.GuestToken}})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("token holder withdraws both entries", func() {
		res, err := s.service.Unreserve(s.ctx, UnreserveRequest{ItemID: pricedID, Claim: claim})
		s.Require().NoError(err)
		s.Empty(res.Item.Contributors)
		s.True(res.Item.CollectedAmount.IsZero())
	})
}

func (s *LedgerServiceSuite) TestRejectedReservationDoesNotPersistGuestSession() {
	_, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: s.user(friendID)})
	s.Require().NoError(err)

	_, err = s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: s.guest("Late Guest"), Amount: amount("1")})
	s.Require().True(dErrors.HasCode(err, dErrors.CodeConflict))

	rows, err := s.items.ReservationsByItem(s.ctx, pricedID)
	s.Require().NoError(err)
	s.Len(rows, 1)
	all, err := s.audit.ListAll(s.ctx)
	s.Require().NoError(err)
	for _, e := range all {
		s.NotEqual(audit.ActionGuestSessionMade, e.Action)
	}
}

func (s *LedgerServiceSuite) TestExpiredGuestSession() {
	plain, err := token.Generate()
	s.Require().NoError(err)
	session, err := identity.NewGuestSession(uuid.New(), token.Hash(plain), "Ex", "", "", "", s.now.Add(-48*time.Hour), 24*time.Hour)
	s.Require().NoError(err)
	s.Require().NoError(s.sessions.Create(s.ctx, session))

	s.Run("withdrawal reports the expiry", func() {
		_, err := s.service.Unreserve(s.ctx, UnreserveRequest{ItemID: pricedID, Claim: identity.Claim{GuestToken: plain}})
		s.True(dErrors.HasCode(err, dErrors.CodeSessionExpired))
	})

	s.Run("reservation mints a replacement session", func() {
		res, err := s.service.Reserve(s.ctx, ReserveRequest{
			ItemID: pricedID,
			Claim:  identity.Claim{GuestToken: plain, Name: "Ex"},
			Amount: amount("5"),
		})
		s.Require().NoError(err)
		s.NotEqual(plain, res.GuestToken)
		s.NotEqual(session.ID, res.Actor.SessionID)
	})
}

// =============================================================================
// Concurrency
// =============================================================================

func (s *LedgerServiceSuite) TestConcurrentContributionsSumExactly() {
	const workers = 20
	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := range workers {
		wg.Go(func() {
			claim := s.guest(fmt.Sprintf("Guest %d", i))
			_, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: claim, Amount: amount("4.99")})
			if err != nil {
				failures.Add(1)
			}
		})
	}
	wg.Wait()

	s.Zero(failures.Load())
	item := s.stored(pricedID)
	s.Equal("99.80", item.CollectedAmount.StringFixed(2))
	s.Len(item.Contributors, workers)
	s.False(item.IsReserved)
}

func (s *LedgerServiceSuite) TestConcurrentOversubscription() {
	const workers = 30
	var wg sync.WaitGroup
	var ok, conflicts atomic.Int32
	for i := range workers {
		wg.Go(func() {
			claim := s.guest(fmt.Sprintf("Guest %d", i))
			_, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: claim, Amount: amount("5")})
			switch {
			case err == nil:
				ok.Add(1)
			case dErrors.HasCode(err, dErrors.CodeConflict):
				conflicts.Add(1)
			}
		})
	}
	wg.Wait()

	s.Equal(int32(20), ok.Load())
	s.Equal(int32(10), conflicts.Load())
	item := s.stored(pricedID)
	s.True(item.CollectedAmount.Equal(decimal.NewFromInt(100)))
	s.True(item.IsReserved)
	s.Len(item.Contributors, 20)
}

func (s *LedgerServiceSuite) TestLockWaitExhaustionIsRetryable() {
	tx := NewInMemoryItemTx(s.items, s.locks, 20*time.Millisecond, time.Second)
	svc, err := New(s.items, tx, s.catalog, identitysvc.New(s.catalog, s.sessions))
	s.Require().NoError(err)

	release, err := s.locks.Acquire(context.Background(), pricedID)
	s.Require().NoError(err)
	defer release()

	_, err = svc.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: s.user(friendID)})
	s.Require().True(dErrors.HasCode(err, dErrors.CodeConflict))
	de, _ := dErrors.As(err)
	s.True(de.Retryable)

	_, err = svc.Reserve(s.ctx, ReserveRequest{ItemID: pricelessID, Claim: s.user(friendID)})
	s.NoError(err, "other items are not blocked")
}

func (s *LedgerServiceSuite) TestCancelledContextWritesNothing() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.service.Reserve(ctx, ReserveRequest{ItemID: pricedID, Claim: s.user(friendID)})
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	s.False(s.stored(pricedID).IsReserved)
	s.Empty(s.notifier.all())
}

// =============================================================================
// Side effects
// =============================================================================

func (s *LedgerServiceSuite) TestNotificationsAndAudit() {
	_, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: s.user(friendID), Amount: amount("25")})
	s.Require().NoError(err)
	_, err = s.service.Unreserve(s.ctx, UnreserveRequest{ItemID: pricedID, Claim: s.user(friendID)})
	s.Require().NoError(err)
	_, err = s.service.Unreserve(s.ctx, UnreserveRequest{ItemID: pricedID, Claim: s.user(friendID)})
	s.Require().Error(err)

	sent := s.notifier.all()
	s.Require().Len(sent, 2)
	s.Equal(notify.ActionItemReserved, sent[0].Action)
	s.Equal(notify.ActionItemUnreserved, sent[1].Action)
	s.Equal(wishlistID, sent[0].Wishlist.ID)
	s.Equal(friendID, sent[0].Actor.UserID)
	s.Equal("Kettle", sent[0].Title)

	events, err := s.audit.ListByItem(s.ctx, pricedID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.ActionContributionMade, events[0].Action)
	s.Equal("25.00", events[0].Amount)
	s.Equal(audit.ActionItemUnreserved, events[1].Action)
	s.Equal("25.00", events[1].Amount)
	s.Equal("0.00", events[1].Collected)
}

// =============================================================================
// Reads
// =============================================================================

func (s *LedgerServiceSuite) TestOwnerViewHidesReservations() {
	_, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: s.user(friendID)})
	s.Require().NoError(err)

	view, err := s.service.GetItem(s.ctx, pricedID, ownerID)
	s.Require().NoError(err)
	s.False(view.IsReserved)
	s.True(view.CollectedAmount.IsZero())
	s.Empty(view.Contributors)

	views, err := s.service.ListWishlistItems(s.ctx, wishlistID, ownerID)
	s.Require().NoError(err)
	for _, v := range views {
		s.False(v.IsReserved)
	}

	view, err = s.service.GetItem(s.ctx, pricedID, friend2ID)
	s.Require().NoError(err)
	s.True(view.IsReserved)
}

func (s *LedgerServiceSuite) TestListWishlistItemsAccess() {
	s.Run("friend sees the items in id order", func() {
		views, err := s.service.ListWishlistItems(s.ctx, wishlistID, friendID)
		s.Require().NoError(err)
		s.Require().Len(views, 2)
		s.Equal(pricedID, views[0].ID)
	})

	s.Run("stranger is forbidden", func() {
		_, err := s.service.ListWishlistItems(s.ctx, wishlistID, strangerID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("anonymous caller must authenticate", func() {
		_, err := s.service.ListWishlistItems(s.ctx, wishlistID, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown wishlist is not found", func() {
		_, err := s.service.ListWishlistItems(s.ctx, 999, friendID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *LedgerServiceSuite) TestListSharedItems() {
	s.Run("link holders see the items", func() {
		wl, views, err := s.service.ListSharedItems(s.ctx, shareToken, 0)
		s.Require().NoError(err)
		s.Equal(wishlistID, wl.ID)
		s.Len(views, 2)
	})

	s.Run("archived wishlist is gone", func() {
		_, _, err := s.service.ListSharedItems(s.ctx, "archived-token", 0)
		s.True(dErrors.HasCode(err, dErrors.CodeGone))
	})

	s.Run("unknown token is not found", func() {
		_, _, err := s.service.ListSharedItems(s.ctx, "nope", 0)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *LedgerServiceSuite) TestListMyReservations() {
	claim := s.user(friendID)
	_, err := s.service.Reserve(s.ctx, ReserveRequest{ItemID: pricedID, Claim: claim, Amount: amount("10")})
	s.Require().NoError(err)
	later := requestcontext.WithTime(s.ctx, s.now.Add(time.Minute))
	_, err = s.service.Reserve(later, ReserveRequest{ItemID: pricelessID, Claim: claim})
	s.Require().NoError(err)

	mine, err := s.service.ListMyReservations(s.ctx, claim)
	s.Require().NoError(err)
	s.Require().Len(mine, 2)
	s.Equal(pricelessID, mine[0].Item.ID)
	s.Equal(pricedID, mine[1].Item.ID)
	s.Equal("Birthday", mine[1].Wishlist.Title)

	_, err = s.service.Unreserve(s.ctx, UnreserveRequest{ItemID: pricedID, Claim: claim})
	s.Require().NoError(err)
	mine, err = s.service.ListMyReservations(s.ctx, claim)
	s.Require().NoError(err)
	s.Len(mine, 1)

	_, err = s.service.ListMyReservations(s.ctx, identity.Claim{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
