package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "wishlist/pkg/domain-errors"
)

// ActorKind discriminates who is acting on the ledger.
type ActorKind string

const (
	ActorUser  ActorKind = "user"
	ActorGuest ActorKind = "guest"
)

// Actor is the resolved identity of a reserving party. Exactly one of UserID
// and SessionID is meaningful, selected by Kind.
type Actor struct {
	Kind        ActorKind
	UserID      int64
	SessionID   uuid.UUID
	DisplayName string
	// Username is empty for guests.
	Username string
}

// UserActor builds the actor for an authenticated account.
func UserActor(userID int64, displayName, username string) Actor {
	return Actor{Kind: ActorUser, UserID: userID, DisplayName: displayName, Username: username}
}

// GuestActor builds the actor for a guest session.
func GuestActor(session *GuestSession) Actor {
	return Actor{Kind: ActorGuest, SessionID: session.ID, DisplayName: session.DisplayName}
}

func (a Actor) IsUser() bool  { return a.Kind == ActorUser }
func (a Actor) IsGuest() bool { return a.Kind == ActorGuest }

// ID renders the actor's identifier for logs and audit records.
func (a Actor) ID() string {
	if a.IsUser() {
		return strconv.FormatInt(a.UserID, 10)
	}
	return a.SessionID.String()
}

// GuestSession is an anonymous, time-boxed identity. The token itself is
// never stored, only its digest.
type GuestSession struct {
	ID          uuid.UUID
	TokenHash   []byte
	DisplayName string
	IPAddress   string
	UserAgent   string
	Device      string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// NewGuestSession validates and builds a session expiring ttl after now.
func NewGuestSession(id uuid.UUID, tokenHash []byte, displayName, ip, userAgent, device string, now time.Time, ttl time.Duration) (*GuestSession, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "guest display name is required")
	}
	if len(tokenHash) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "guest token hash is required")
	}
	if ttl <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "guest session ttl must be positive")
	}
	return &GuestSession{
		ID:          id,
		TokenHash:   tokenHash,
		DisplayName: displayName,
		IPAddress:   ip,
		UserAgent:   userAgent,
		Device:      device,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}, nil
}

// IsExpired reports whether the session can no longer act at now.
func (g *GuestSession) IsExpired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}

// Claim is everything a request presents about who is acting.
type Claim struct {
	// UserID is zero for anonymous requests.
	UserID     int64
	GuestToken string
	Name       string
	ClientIP   string
	UserAgent  string
}

// Authenticated reports whether the claim carries a verified account.
func (c Claim) Authenticated() bool {
	return c.UserID != 0
}

// Resolution is the outcome of resolving a Claim. NewSession is set when a
// guest session was minted and still has to be persisted by the caller's unit
// of work; Token is the plaintext guest token to hand back to the client.
type Resolution struct {
	Actor      Actor
	NewSession *GuestSession
	Token      string
}
