package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	catalogmodels "wishlist/internal/catalog/models"
	"wishlist/internal/identity/device"
	"wishlist/internal/identity/metrics"
	"wishlist/internal/identity/models"
	"wishlist/internal/identity/token"
	rlmodels "wishlist/internal/ratelimit/models"
	dErrors "wishlist/pkg/domain-errors"
	"wishlist/pkg/platform/sentinel"
	"wishlist/pkg/requestcontext"
)

const (
	// DefaultSessionTTL is how long a minted guest session stays usable.
	DefaultSessionTTL = 30 * 24 * time.Hour

	mintKeyPrefix = "guest_mint:"
)

//go:generate mockgen -source=resolver.go -destination=mocks/mocks.go -package=mocks

type UserReader interface {
	UserByID(ctx context.Context, id int64) (*catalogmodels.User, error)
}

type SessionStore interface {
	FindByTokenHash(ctx context.Context, hash []byte) (*models.GuestSession, error)
}

type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*rlmodels.RateLimitResult, error)
}

// Resolver turns a request's Claim into an Actor: an authenticated account,
// an existing guest session, or a freshly minted one.
type Resolver struct {
	users      UserReader
	sessions   SessionStore
	limiter    Limiter
	mintLimit  int
	mintWindow time.Duration
	sessionTTL time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(r *Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithMintLimit caps guest session creation per client IP.
func WithMintLimit(limiter Limiter, limit int, window time.Duration) Option {
	return func(r *Resolver) {
		r.limiter = limiter
		r.mintLimit = limit
		r.mintWindow = window
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.sessionTTL = ttl
		}
	}
}

func New(users UserReader, sessions SessionStore, opts ...Option) *Resolver {
	r := &Resolver{
		users:      users,
		sessions:   sessions,
		sessionTTL: DefaultSessionTTL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveForClaim resolves the actor for a reservation or contribution. An
// authenticated account always wins. Anonymous callers must supply a name; a
// valid guest token is then reused with its stored name, and failing that a
// new guest session is minted for the supplied name. A minted
// session is returned unsaved in Resolution.NewSession so it commits in the
// same unit of work as the reservation.
func (r *Resolver) ResolveForClaim(ctx context.Context, claim models.Claim) (*models.Resolution, error) {
	if claim.Authenticated() {
		actor, err := r.userActor(ctx, claim.UserID)
		if err != nil {
			return nil, err
		}
		return &models.Resolution{Actor: actor}, nil
	}

	name := strings.TrimSpace(claim.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required for guest reservations")
	}

	if claim.GuestToken != "" {
		session, err := r.sessions.FindByTokenHash(ctx, token.Hash(claim.GuestToken))
		switch {
		case err == nil && !session.IsExpired(requestcontext.Now(ctx)):
			r.incrementReused()
			return &models.Resolution{Actor: models.GuestActor(session), Token: claim.GuestToken}, nil
		case err != nil && !errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load guest session")
		}
		// Unknown or expired tokens fall through to minting a fresh session.
	}

	if err := r.checkMintLimit(ctx, claim.ClientIP); err != nil {
		return nil, err
	}

	plain, err := token.Generate()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint guest session")
	}
	session, err := models.NewGuestSession(
		uuid.New(),
		token.Hash(plain),
		name,
		claim.ClientIP,
		claim.UserAgent,
		device.ParseUserAgent(claim.UserAgent),
		requestcontext.Now(ctx),
		r.sessionTTL,
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	r.incrementMinted()

	return &models.Resolution{
		Actor:      models.GuestActor(session),
		NewSession: session,
		Token:      plain,
	}, nil
}

// ResolveExisting resolves the actor for removal and listing paths, which
// never mint sessions: the caller must be authenticated or present a live
// guest token.
func (r *Resolver) ResolveExisting(ctx context.Context, claim models.Claim) (models.Actor, error) {
	if claim.Authenticated() {
		return r.userActor(ctx, claim.UserID)
	}
	if claim.GuestToken == "" {
		return models.Actor{}, dErrors.New(dErrors.CodeValidation, "guest token is required")
	}

	session, err := r.sessions.FindByTokenHash(ctx, token.Hash(claim.GuestToken))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Actor{}, dErrors.New(dErrors.CodeNotFound, "guest session not found")
		}
		return models.Actor{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load guest session")
	}
	if session.IsExpired(requestcontext.Now(ctx)) {
		return models.Actor{}, dErrors.New(dErrors.CodeSessionExpired, "guest session has expired")
	}
	return models.GuestActor(session), nil
}

func (r *Resolver) userActor(ctx context.Context, userID int64) (models.Actor, error) {
	user, err := r.users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "account not found")
		}
		return models.Actor{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return models.UserActor(user.ID, user.DisplayName(), user.Username), nil
}

// checkMintLimit fails open when the limiter backend errors: losing the
// throttle briefly is preferable to refusing every guest.
func (r *Resolver) checkMintLimit(ctx context.Context, clientIP string) error {
	if r.limiter == nil || r.mintLimit <= 0 {
		return nil
	}
	if clientIP == "" {
		clientIP = "unknown"
	}
	result, err := r.limiter.Allow(ctx, mintKeyPrefix+clientIP, r.mintLimit, r.mintWindow)
	if err != nil {
		r.logger.WarnContext(ctx, "guest mint limiter unavailable",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil
	}
	if !result.Allowed {
		r.incrementThrottled()
		retryAfter := result.RetryAfter(requestcontext.Now(ctx))
		return dErrors.New(dErrors.CodeRateLimited, "too many guest sessions from this address").
			WithDetail("retry_after_seconds", int(retryAfter.Seconds()))
	}
	return nil
}

func (r *Resolver) incrementMinted() {
	if r.metrics != nil {
		r.metrics.IncrementMinted()
	}
}

func (r *Resolver) incrementReused() {
	if r.metrics != nil {
		r.metrics.IncrementReused()
	}
}

func (r *Resolver) incrementThrottled() {
	if r.metrics != nil {
		r.metrics.IncrementThrottled()
	}
}
