package service

import (
	"context"
	"errors"
	"slices"
	"time"

	catalog "wishlist/internal/catalog/models"
	identity "wishlist/internal/identity/models"
	"wishlist/internal/ledger/models"
	dErrors "wishlist/pkg/domain-errors"
	"wishlist/pkg/platform/sentinel"
)

// GetItem returns one item as viewerID sees it. viewerID is zero for
// anonymous callers.
func (s *Service) GetItem(ctx context.Context, itemID, viewerID int64) (models.ItemView, error) {
	item, err := s.store.ItemByID(ctx, itemID)
	if err != nil {
		return models.ItemView{}, translateStoreError(err, "item not found")
	}
	wishlist, err := s.wishlists.WishlistByID(ctx, item.WishlistID)
	if err != nil {
		return models.ItemView{}, translateStoreError(err, "wishlist not found")
	}
	return models.ViewFor(item, viewerID, wishlist.OwnerID()), nil
}

// ListWishlistItems lists a wishlist for its owner, the owner's accepted
// friends, or anyone signed in when the wishlist is public.
func (s *Service) ListWishlistItems(ctx context.Context, wishlistID, viewerID int64) ([]models.ItemView, error) {
	wishlist, err := s.wishlists.WishlistByID(ctx, wishlistID)
	if err != nil {
		return nil, translateStoreError(err, "wishlist not found")
	}
	if err := s.checkWishlistAccess(ctx, wishlist, viewerID); err != nil {
		return nil, err
	}
	return s.itemViews(ctx, wishlist, viewerID)
}

// ListSharedItems lists a wishlist reached through its share link. Archived
// wishlists are gone for link holders.
func (s *Service) ListSharedItems(ctx context.Context, shareToken string, viewerID int64) (*catalog.Wishlist, []models.ItemView, error) {
	wishlist, err := s.wishlists.WishlistByShareToken(ctx, shareToken)
	if err != nil {
		return nil, nil, translateStoreError(err, "wishlist not found")
	}
	if wishlist.IsArchived {
		return nil, nil, dErrors.New(dErrors.CodeGone, "this wishlist is archived")
	}
	views, err := s.itemViews(ctx, wishlist, viewerID)
	if err != nil {
		return nil, nil, err
	}
	return wishlist, views, nil
}

// ReservedItem is one entry of an actor's reservation list.
type ReservedItem struct {
	Item       models.ItemView
	Wishlist   catalog.Wishlist
	ReservedAt time.Time
}

// ListMyReservations lists the items the caller holds an active reservation
// on, newest first.
func (s *Service) ListMyReservations(ctx context.Context, claim identity.Claim) ([]ReservedItem, error) {
	actor, err := s.resolver.ResolveExisting(ctx, claim)
	if err != nil {
		return nil, err
	}
	reservations, err := s.store.ActiveReservationsByActor(ctx, models.RefFor(actor))
	if err != nil {
		return nil, translateStoreError(err, "reservations not found")
	}

	out := make([]ReservedItem, 0, len(reservations))
	for _, r := range reservations {
		item, err := s.store.ItemByID(ctx, r.ItemID)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, translateStoreError(err, "item not found")
		}
		wishlist, err := s.wishlists.WishlistByID(ctx, item.WishlistID)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, translateStoreError(err, "wishlist not found")
		}
		out = append(out, ReservedItem{
			Item:       models.ViewFor(item, actor.UserID, wishlist.OwnerID()),
			Wishlist:   *wishlist,
			ReservedAt: r.ReservedAt,
		})
	}
	return out, nil
}

func (s *Service) itemViews(ctx context.Context, wishlist *catalog.Wishlist, viewerID int64) ([]models.ItemView, error) {
	items, err := s.store.ItemsByWishlist(ctx, wishlist.ID)
	if err != nil {
		return nil, translateStoreError(err, "wishlist not found")
	}
	views := make([]models.ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, models.ViewFor(item, viewerID, wishlist.OwnerID()))
	}
	return views, nil
}

func (s *Service) checkWishlistAccess(ctx context.Context, wishlist *catalog.Wishlist, viewerID int64) error {
	if viewerID == 0 {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if wishlist.IsOwner(viewerID) || wishlist.Visibility == catalog.VisibilityPublic {
		return nil
	}
	friends, err := s.wishlists.AcceptedFriendIDs(ctx, wishlist.OwnerID())
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load friends")
	}
	if slices.Contains(friends, viewerID) {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "access denied")
}
