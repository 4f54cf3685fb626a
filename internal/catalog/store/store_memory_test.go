package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"wishlist/internal/catalog/models"
	"wishlist/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
	s.store.PutUser(models.User{ID: 1, Username: "olga", FullName: "Olga Petrova"})
	s.store.PutUser(models.User{ID: 2, Username: "bob"})
	s.store.PutWishlist(models.Wishlist{ID: 10, Owner: models.User{ID: 1}, Title: "Birthday", ShareToken: "tok"})
}

func (s *InMemoryStoreSuite) TestWishlistLookups() {
	s.Run("by id resolves owner profile", func() {
		w, err := s.store.WishlistByID(s.ctx, 10)
		s.Require().NoError(err)
		s.Equal("olga", w.Owner.Username)
		s.Equal("Olga Petrova", w.Owner.DisplayName())
		s.True(w.IsOwner(1))
		s.False(w.IsOwner(2))
	})

	s.Run("by share token", func() {
		w, err := s.store.WishlistByShareToken(s.ctx, "tok")
		s.Require().NoError(err)
		s.Equal(int64(10), w.ID)
	})

	s.Run("missing returns sentinel", func() {
		_, err := s.store.WishlistByID(s.ctx, 99)
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.WishlistByShareToken(s.ctx, "nope")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestAcceptedFriendIDs() {
	s.store.PutFriendship(models.Friendship{UserID: 1, FriendID: 2, Status: models.FriendshipAccepted})
	s.store.PutFriendship(models.Friendship{UserID: 1, FriendID: 3, Status: models.FriendshipPending})
	s.store.PutFriendship(models.Friendship{UserID: 4, FriendID: 1, Status: models.FriendshipAccepted})

	ids, err := s.store.AcceptedFriendIDs(s.ctx, 1)
	s.Require().NoError(err)
	s.ElementsMatch([]int64{2, 4}, ids)
}

func (s *InMemoryStoreSuite) TestUserDisplayNameFallsBackToUsername() {
	u, err := s.store.UserByID(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal("bob", u.DisplayName())
}
