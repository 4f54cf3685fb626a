package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wishlist/internal/catalog/models"
	"wishlist/pkg/platform/sentinel"
	txcontext "wishlist/pkg/platform/tx"
)

// PostgresStore reads collaborator tables. It joins the caller's transaction
// when one is carried in the context.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const wishlistColumns = `
	w.id, w.title, w.share_token, w.visibility, w.is_archived,
	u.id, u.username, u.full_name`

func scanWishlist(row *sql.Row) (*models.Wishlist, error) {
	var w models.Wishlist
	var visibility string
	err := row.Scan(&w.ID, &w.Title, &w.ShareToken, &visibility, &w.IsArchived,
		&w.Owner.ID, &w.Owner.Username, &w.Owner.FullName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	w.Visibility = models.Visibility(visibility)
	return &w, nil
}

func (s *PostgresStore) WishlistByID(ctx context.Context, id int64) (*models.Wishlist, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	w, err := scanWishlist(q.QueryRowContext(ctx, `SELECT`+wishlistColumns+`
		FROM wishlists w JOIN users u ON u.id = w.owner_id
		WHERE w.id = $1`, id))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("find wishlist by id: %w", err)
	}
	return w, err
}

func (s *PostgresStore) WishlistByShareToken(ctx context.Context, token string) (*models.Wishlist, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	w, err := scanWishlist(q.QueryRowContext(ctx, `SELECT`+wishlistColumns+`
		FROM wishlists w JOIN users u ON u.id = w.owner_id
		WHERE w.share_token = $1`, token))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("find wishlist by share token: %w", err)
	}
	return w, err
}

func (s *PostgresStore) UserByID(ctx context.Context, id int64) (*models.User, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	var u models.User
	err := q.QueryRowContext(ctx, `SELECT id, username, full_name FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Username, &u.FullName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) AcceptedFriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT CASE WHEN user_id = $1 THEN friend_id ELSE user_id END
		FROM friendships
		WHERE (user_id = $1 OR friend_id = $1) AND status = $2`,
		userID, string(models.FriendshipAccepted))
	if err != nil {
		return nil, fmt.Errorf("list accepted friends: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan friend id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
