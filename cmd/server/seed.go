package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	catalog "wishlist/internal/catalog/models"
	catalogstore "wishlist/internal/catalog/store"
	ledger "wishlist/internal/ledger/models"
	ledgerstore "wishlist/internal/ledger/store"
)

// Demo data: Olga owns a birthday list shared with her friend Fedor.
// Share token "demo-birthday" opens it to anonymous guests.
const demoShareToken = "demo-birthday"

func seedMemory(c *catalogstore.InMemoryStore, items *ledgerstore.InMemoryStore) {
	c.PutUser(catalog.User{ID: 1, Username: "olga", FullName: "Olga Owner"})
	c.PutUser(catalog.User{ID: 2, Username: "fedor", FullName: "Fedor Friend"})
	c.PutUser(catalog.User{ID: 3, Username: "sam"})
	c.PutFriendship(catalog.Friendship{UserID: 1, FriendID: 2, Status: catalog.FriendshipAccepted})
	c.PutWishlist(catalog.Wishlist{
		ID:         1,
		Owner:      catalog.User{ID: 1},
		Title:      "Birthday",
		ShareToken: demoShareToken,
		Visibility: catalog.VisibilityByLink,
	})

	kettle := decimal.RequireFromString("4990.00")
	bike := decimal.RequireFromString("35000.00")
	trip := decimal.RequireFromString("20000.00")
	items.PutItem(&ledger.Item{ID: 1, WishlistID: 1, Title: "Electric kettle", Price: &kettle, Currency: "RUB"})
	items.PutItem(&ledger.Item{ID: 2, WishlistID: 1, Title: "Bicycle", Price: &bike, Currency: "RUB"})
	items.PutItem(&ledger.Item{ID: 3, WishlistID: 1, Title: "Weekend trip", TargetAmount: &trip, Currency: "RUB"})
	items.PutItem(&ledger.Item{ID: 4, WishlistID: 1, Title: "Surprise me", Currency: "RUB"})
}

var demoStatements = []string{
	`INSERT INTO users (id, username, full_name) VALUES
		(1, 'olga', 'Olga Owner'), (2, 'fedor', 'Fedor Friend'), (3, 'sam', '')
		ON CONFLICT DO NOTHING`,
	`INSERT INTO friendships (user_id, friend_id, status) VALUES (1, 2, 'accepted')
		ON CONFLICT DO NOTHING`,
	`INSERT INTO wishlists (id, owner_id, title, share_token, visibility) VALUES
		(1, 1, 'Birthday', '` + demoShareToken + `', 'by_link')
		ON CONFLICT DO NOTHING`,
	`INSERT INTO items (id, wishlist_id, title, price, target_amount, currency) VALUES
		(1, 1, 'Electric kettle', 4990.00, NULL, 'RUB'),
		(2, 1, 'Bicycle', 35000.00, NULL, 'RUB'),
		(3, 1, 'Weekend trip', NULL, 20000.00, 'RUB'),
		(4, 1, 'Surprise me', NULL, NULL, 'RUB')
		ON CONFLICT DO NOTHING`,
	`SELECT setval(pg_get_serial_sequence('users', 'id'), GREATEST((SELECT MAX(id) FROM users), 1))`,
	`SELECT setval(pg_get_serial_sequence('wishlists', 'id'), GREATEST((SELECT MAX(id) FROM wishlists), 1))`,
	`SELECT setval(pg_get_serial_sequence('items', 'id'), GREATEST((SELECT MAX(id) FROM items), 1))`,
}

func seedPostgres(ctx context.Context, db *sql.DB) error {
	for _, stmt := range demoStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}
	return nil
}
