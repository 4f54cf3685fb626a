package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"wishlist/internal/identity/models"
	"wishlist/internal/platform/postgres"
	"wishlist/pkg/platform/sentinel"
	txcontext "wishlist/pkg/platform/tx"
)

// PostgresGuestSessionStore persists guest sessions. Create joins the
// caller's transaction when one is carried in the context, so a session
// minted during a reservation commits or rolls back with it.
type PostgresGuestSessionStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresGuestSessionStore {
	return &PostgresGuestSessionStore{db: db}
}

func (s *PostgresGuestSessionStore) Create(ctx context.Context, session *models.GuestSession) error {
	q := txcontext.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO guest_sessions (id, token_hash, display_name, ip_address, user_agent, device, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID, session.TokenHash, session.DisplayName, session.IPAddress,
		session.UserAgent, session.Device, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert guest session: %w", err)
	}
	return nil
}

const sessionColumns = `id, token_hash, display_name, ip_address, user_agent, device, created_at, expires_at`

func scanSession(row *sql.Row) (*models.GuestSession, error) {
	var g models.GuestSession
	err := row.Scan(&g.ID, &g.TokenHash, &g.DisplayName, &g.IPAddress, &g.UserAgent, &g.Device, &g.CreatedAt, &g.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan guest session: %w", err)
	}
	return &g, nil
}

func (s *PostgresGuestSessionStore) FindByTokenHash(ctx context.Context, hash []byte) (*models.GuestSession, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	return scanSession(q.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM guest_sessions WHERE token_hash = $1`, hash))
}

func (s *PostgresGuestSessionStore) FindByID(ctx context.Context, id uuid.UUID) (*models.GuestSession, error) {
	q := txcontext.QuerierFrom(ctx, s.db)
	return scanSession(q.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM guest_sessions WHERE id = $1`, id))
}
