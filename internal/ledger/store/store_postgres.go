package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	identity "wishlist/internal/identity/models"
	"wishlist/internal/ledger/models"
	"wishlist/internal/platform/postgres"
	"wishlist/pkg/platform/sentinel"
	txcontext "wishlist/pkg/platform/tx"
)

// PostgresStore persists items and reservations. Every method joins the
// transaction carried in ctx, so LockItem's row lock holds until the caller's
// unit of work ends.
type PostgresStore struct {
	db       *sql.DB
	sessions SessionCreator
}

func NewPostgres(db *sql.DB, sessions SessionCreator) *PostgresStore {
	return &PostgresStore{db: db, sessions: sessions}
}

const itemColumns = `id, wishlist_id, title, price, currency, target_amount, collected_amount,
	is_reserved, is_purchased, reserved_by, reserved_by_name, contributors, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item           models.Item
		price, target  decimal.NullDecimal
		reservedBy     sql.NullInt64
		reservedByName sql.NullString
		contributors   []byte
	)
	err := row.Scan(&item.ID, &item.WishlistID, &item.Title, &price, &item.Currency, &target,
		&item.CollectedAmount, &item.IsReserved, &item.IsPurchased, &reservedBy, &reservedByName,
		&contributors, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		item.Price = &price.Decimal
	}
	if target.Valid {
		item.TargetAmount = &target.Decimal
	}
	if reservedBy.Valid {
		item.ReservedBy = &reservedBy.Int64
	}
	if reservedByName.Valid {
		item.ReservedByName = &reservedByName.String
	}
	item.Contributors = []models.Contributor{}
	if len(contributors) > 0 {
		if err := json.Unmarshal(contributors, &item.Contributors); err != nil {
			return nil, fmt.Errorf("decode contributors for item %d: %w", item.ID, err)
		}
	}
	return &item, nil
}

func (s *PostgresStore) ItemByID(ctx context.Context, id int64) (*models.Item, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	item, err := scanItem(q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find item by id: %w", err)
	}
	return item, nil
}

// LockItem reads the item with FOR UPDATE. A lock_timeout expiry surfaces as
// sentinel.ErrLockTimeout.
func (s *PostgresStore) LockItem(ctx context.Context, id int64) (*models.Item, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	item, err := scanItem(q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, sentinel.ErrNotFound
		case postgres.IsLockNotAvailable(err):
			return nil, sentinel.ErrLockTimeout
		}
		return nil, fmt.Errorf("lock item: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) ItemsByWishlist(ctx context.Context, wishlistID int64) ([]*models.Item, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `SELECT `+itemColumns+` FROM items WHERE wishlist_id = $1 ORDER BY id`, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) SaveItem(ctx context.Context, item *models.Item) error {
	contributors := item.Contributors
	if contributors == nil {
		contributors = []models.Contributor{}
	}
	payload, err := json.Marshal(contributors)
	if err != nil {
		return fmt.Errorf("encode contributors: %w", err)
	}

	q := txcontext.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		UPDATE items
		SET collected_amount = $2, is_reserved = $3, reserved_by = $4, reserved_by_name = $5,
		    contributors = $6, updated_at = $7
		WHERE id = $1`,
		item.ID, item.CollectedAmount, item.IsReserved, item.ReservedBy, item.ReservedByName,
		string(payload), item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

const reservationColumns = `id, item_id, user_id, guest_session_id, status, reserved_at, cancelled_at, purchased_at`

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var (
		r           models.Reservation
		userID      sql.NullInt64
		sessionID   uuid.NullUUID
		status      string
		cancelledAt sql.NullTime
		purchasedAt sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.ItemID, &userID, &sessionID, &status, &r.ReservedAt, &cancelledAt, &purchasedAt); err != nil {
		return nil, err
	}
	switch {
	case userID.Valid:
		r.Actor = models.UserRef(userID.Int64)
	case sessionID.Valid:
		r.Actor = models.GuestRef(sessionID.UUID)
	}
	r.Status = models.ReservationStatus(status)
	if cancelledAt.Valid {
		r.CancelledAt = &cancelledAt.Time
	}
	if purchasedAt.Valid {
		r.PurchasedAt = &purchasedAt.Time
	}
	return &r, nil
}

// actorFilter renders the WHERE fragment and argument selecting ref's rows.
func actorFilter(ref models.ContributorRef, placeholder string) (string, any) {
	if ref.Kind == models.RefUser {
		return "user_id = " + placeholder, ref.UserID
	}
	return "guest_session_id = " + placeholder, ref.SessionID
}

func (s *PostgresStore) FindActiveReservation(ctx context.Context, itemID int64, ref models.ContributorRef) (*models.Reservation, error) {
	filter, arg := actorFilter(ref, "$2")
	q := txcontext.QuerierFrom(ctx, s.db)
	r, err := scanReservation(q.QueryRowContext(ctx, `SELECT `+reservationColumns+`
		FROM reservations WHERE item_id = $1 AND status = 'active' AND `+filter, itemID, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find active reservation: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ActiveReservationsByActor(ctx context.Context, ref models.ContributorRef) ([]*models.Reservation, error) {
	filter, arg := actorFilter(ref, "$1")
	q := txcontext.QuerierFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `SELECT `+reservationColumns+`
		FROM reservations WHERE status = 'active' AND `+filter+` ORDER BY reserved_at DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []*models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return out, nil
}

// SaveReservation inserts r or updates its status fields. A second active row
// for the same actor and item violates a partial unique index and maps to
// sentinel.ErrConflict.
func (s *PostgresStore) SaveReservation(ctx context.Context, r *models.Reservation) error {
	var (
		userID    *int64
		sessionID *uuid.UUID
	)
	switch r.Actor.Kind {
	case models.RefUser:
		userID = &r.Actor.UserID
	case models.RefGuest:
		sessionID = &r.Actor.SessionID
	default:
		return fmt.Errorf("reservation %s has no actor", r.ID)
	}

	q := txcontext.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO reservations (`+reservationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, cancelled_at = EXCLUDED.cancelled_at, purchased_at = EXCLUDED.purchased_at`,
		r.ID, r.ItemID, userID, sessionID, string(r.Status), r.ReservedAt, r.CancelledAt, r.PurchasedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save reservation: %w", err)
	}
	return nil
}

// CreateGuestSession inserts through the session store inside the same
// transaction.
func (s *PostgresStore) CreateGuestSession(ctx context.Context, session *identity.GuestSession) error {
	return s.sessions.Create(ctx, session)
}
