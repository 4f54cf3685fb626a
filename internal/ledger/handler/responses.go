package handler

import (
	"time"

	catalog "wishlist/internal/catalog/models"
	"wishlist/internal/ledger/models"
)

type WishlistSummary struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	OwnerID       int64  `json:"owner_id"`
	OwnerUsername string `json:"owner_username"`
	OwnerName     string `json:"owner_name"`
}

type SharedWishlistResponse struct {
	Wishlist WishlistSummary   `json:"wishlist"`
	Items    []models.ItemView `json:"items"`
}

type ReservationResponse struct {
	Item       models.ItemView `json:"item"`
	Wishlist   WishlistSummary `json:"wishlist"`
	ReservedAt time.Time       `json:"reserved_at"`
}

func toWishlistSummary(w *catalog.Wishlist) WishlistSummary {
	return WishlistSummary{
		ID:            w.ID,
		Title:         w.Title,
		OwnerID:       w.OwnerID(),
		OwnerUsername: w.Owner.Username,
		OwnerName:     w.Owner.DisplayName(),
	}
}
