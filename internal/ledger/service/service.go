package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"wishlist/internal/audit"
	catalog "wishlist/internal/catalog/models"
	identity "wishlist/internal/identity/models"
	"wishlist/internal/ledger/metrics"
	"wishlist/internal/ledger/models"
	notify "wishlist/internal/notify/models"
	dErrors "wishlist/pkg/domain-errors"
	"wishlist/pkg/platform/sentinel"
	"wishlist/pkg/platform/strings"
	"wishlist/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Store is the ledger's persistence. Calls made with a context produced by
// ItemTx join that unit of work.
type Store interface {
	LockItem(ctx context.Context, itemID int64) (*models.Item, error)
	SaveItem(ctx context.Context, item *models.Item) error
	FindActiveReservation(ctx context.Context, itemID int64, ref models.ContributorRef) (*models.Reservation, error)
	SaveReservation(ctx context.Context, r *models.Reservation) error
	CreateGuestSession(ctx context.Context, session *identity.GuestSession) error
	ItemByID(ctx context.Context, itemID int64) (*models.Item, error)
	ItemsByWishlist(ctx context.Context, wishlistID int64) ([]*models.Item, error)
	ActiveReservationsByActor(ctx context.Context, ref models.ContributorRef) ([]*models.Reservation, error)
}

// WishlistReader reads wishlists and the owner's friend graph.
type WishlistReader interface {
	WishlistByID(ctx context.Context, id int64) (*catalog.Wishlist, error)
	WishlistByShareToken(ctx context.Context, token string) (*catalog.Wishlist, error)
	AcceptedFriendIDs(ctx context.Context, userID int64) ([]int64, error)
}

// IdentityResolver maps a request claim to an acting party.
type IdentityResolver interface {
	ResolveForClaim(ctx context.Context, claim identity.Claim) (*identity.Resolution, error)
	ResolveExisting(ctx context.Context, claim identity.Claim) (identity.Actor, error)
}

// Notifier accepts committed changes for asynchronous fan-out.
type Notifier interface {
	Enqueue(n notify.Notification) bool
}

// Auditor records committed changes.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event)
}

const (
	opReserveFull = "reserve_full"
	opContribute  = "contribute"
	opUnreserve   = "unreserve"
)

// Service is the reservation ledger: full reservations, partial
// contributions and their reconciliation on withdrawal.
type Service struct {
	store     Store
	tx        ItemTx
	wishlists WishlistReader
	resolver  IdentityResolver
	notifier  Notifier
	auditor   Auditor
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithAuditor(a Auditor) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(store Store, tx ItemTx, wishlists WishlistReader, resolver IdentityResolver, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("ledger store is required")
	}
	if tx == nil {
		return nil, errors.New("item transaction runner is required")
	}
	if wishlists == nil {
		return nil, errors.New("wishlist reader is required")
	}
	if resolver == nil {
		return nil, errors.New("identity resolver is required")
	}
	s := &Service{
		store:     store,
		tx:        tx,
		wishlists: wishlists,
		resolver:  resolver,
		logger:    slog.Default(),
		tracer:    otel.Tracer("wishlist/ledger"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ReserveRequest claims an item. A nil Amount asks for a full reservation.
type ReserveRequest struct {
	ItemID int64
	Claim  identity.Claim
	Amount *decimal.Decimal
}

// UnreserveRequest withdraws the caller's stake. Name selects legacy
// name-only entries for authenticated callers.
type UnreserveRequest struct {
	ItemID int64
	Claim  identity.Claim
	Name   string
}

// Result is the item after a mutation as the actor sees it, plus the guest
// token the client should keep using.
type Result struct {
	Item       models.ItemView
	GuestToken string
	Actor      identity.Actor
}

// Reserve resolves the actor, then under the item lock applies a full
// reservation or a partial contribution and makes sure the actor holds one
// active reservation row. A guest session minted on the way commits in the
// same unit of work.
func (s *Service) Reserve(ctx context.Context, req ReserveRequest) (*Result, error) {
	op := opReserveFull
	if req.Amount != nil {
		op = opContribute
	}
	ctx, span := s.tracer.Start(ctx, "ledger.Reserve", trace.WithAttributes(
		attribute.Int64("item.id", req.ItemID),
		attribute.String("ledger.operation", op),
	))
	defer span.End()
	start := time.Now()

	resolution, err := s.resolver.ResolveForClaim(ctx, req.Claim)
	if err != nil {
		s.finish(ctx, span, op, start, err)
		return nil, err
	}
	actor := resolution.Actor
	span.SetAttributes(attribute.String("actor.kind", string(actor.Kind)))

	var (
		item     *models.Item
		wishlist *catalog.Wishlist
	)
	err = s.tx.RunInItemTx(ctx, req.ItemID, func(ctx context.Context) error {
		it, wl, err := s.lockWithWishlist(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if ownsWishlist(wl, actor) {
			return dErrors.New(dErrors.CodeConflict, "you cannot reserve items on your own wishlist")
		}

		now := requestcontext.Now(ctx)
		if req.Amount == nil {
			err = it.ApplyFullReservation(actor, now)
		} else {
			err = it.ApplyContribution(actor, *req.Amount, now)
		}
		if err != nil {
			return err
		}

		if resolution.NewSession != nil {
			if err := s.store.CreateGuestSession(ctx, resolution.NewSession); err != nil {
				return err
			}
		}
		if err := s.store.SaveItem(ctx, it); err != nil {
			return err
		}
		if err := s.ensureActiveReservation(ctx, it.ID, actor, now); err != nil {
			return err
		}
		item, wishlist = it, wl
		return nil
	})
	if err != nil {
		err = translateStoreError(err, "item not found")
		s.finish(ctx, span, op, start, err)
		return nil, err
	}
	s.finish(ctx, span, op, start, nil)

	if req.Amount != nil {
		s.metrics.AddContributed(req.Amount.InexactFloat64())
	}
	s.afterCommit(ctx, item, wishlist, actor, notify.ActionItemReserved, reserveAuditEvent(item, actor, req.Amount))
	if resolution.NewSession != nil {
		s.emit(ctx, audit.Event{
			Action:     audit.ActionGuestSessionMade,
			ItemID:     item.ID,
			WishlistID: item.WishlistID,
			ActorKind:  string(actor.Kind),
			ActorID:    actor.ID(),
			ActorName:  actor.DisplayName,
			Collected:  item.CollectedAmount.StringFixed(2),
		})
	}

	return &Result{
		Item:       models.ViewFor(item, actor.UserID, wishlist.OwnerID()),
		GuestToken: resolution.Token,
		Actor:      actor,
	}, nil
}

// Unreserve removes every entry the actor holds on the item, recomputes the
// ledger and cancels the actor's active reservation row.
func (s *Service) Unreserve(ctx context.Context, req UnreserveRequest) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Unreserve", trace.WithAttributes(
		attribute.Int64("item.id", req.ItemID),
	))
	defer span.End()
	start := time.Now()

	actor, err := s.resolver.ResolveExisting(ctx, req.Claim)
	if err != nil {
		s.finish(ctx, span, opUnreserve, start, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("actor.kind", string(actor.Kind)))

	var (
		item      *models.Item
		wishlist  *catalog.Wishlist
		withdrawn decimal.Decimal
	)
	err = s.tx.RunInItemTx(ctx, req.ItemID, func(ctx context.Context) error {
		it, wl, err := s.lockWithWishlist(ctx, req.ItemID)
		if err != nil {
			return err
		}
		before := it.CollectedAmount
		now := requestcontext.Now(ctx)
		if err := it.RemoveContributions(actor, req.Name, now); err != nil {
			return err
		}
		if err := s.store.SaveItem(ctx, it); err != nil {
			return err
		}

		reservation, err := s.store.FindActiveReservation(ctx, it.ID, models.RefFor(actor))
		switch {
		case err == nil:
			reservation.Cancel(now)
			if err := s.store.SaveReservation(ctx, reservation); err != nil {
				return err
			}
		case !errors.Is(err, sentinel.ErrNotFound):
			return err
		}
		item, wishlist, withdrawn = it, wl, before.Sub(it.CollectedAmount)
		return nil
	})
	if err != nil {
		err = translateStoreError(err, "item not found")
		s.finish(ctx, span, opUnreserve, start, err)
		return nil, err
	}
	s.finish(ctx, span, opUnreserve, start, nil)

	s.afterCommit(ctx, item, wishlist, actor, notify.ActionItemUnreserved, audit.Event{
		Action:     audit.ActionItemUnreserved,
		ItemID:     item.ID,
		WishlistID: item.WishlistID,
		ActorKind:  string(actor.Kind),
		ActorID:    actor.ID(),
		ActorName:  actor.DisplayName,
		Amount:     withdrawn.StringFixed(2),
		Collected:  item.CollectedAmount.StringFixed(2),
	})

	return &Result{
		Item:  models.ViewFor(item, actor.UserID, wishlist.OwnerID()),
		Actor: actor,
	}, nil
}

func (s *Service) lockWithWishlist(ctx context.Context, itemID int64) (*models.Item, *catalog.Wishlist, error) {
	item, err := s.store.LockItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	wishlist, err := s.wishlists.WishlistByID(ctx, item.WishlistID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "wishlist not found")
		}
		return nil, nil, err
	}
	return item, wishlist, nil
}

// ensureActiveReservation reuses the actor's active row or opens one.
func (s *Service) ensureActiveReservation(ctx context.Context, itemID int64, actor identity.Actor, now time.Time) error {
	_, err := s.store.FindActiveReservation(ctx, itemID, models.RefFor(actor))
	if err == nil {
		return nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	return s.store.SaveReservation(ctx, models.NewReservation(itemID, actor, now))
}

// ownsWishlist is a best-effort self-reservation guard: account id for users,
// plus a case-insensitive match of the actor's name against the owner's
// username and full name.
func ownsWishlist(wl *catalog.Wishlist, actor identity.Actor) bool {
	if actor.IsUser() && wl.IsOwner(actor.UserID) {
		return true
	}
	return strings.EqualFoldAny(actor.DisplayName, wl.Owner.Username, wl.Owner.FullName)
}

// afterCommit hands the change to fan-out and audit. Neither can fail the
// ledger operation.
func (s *Service) afterCommit(ctx context.Context, item *models.Item, wishlist *catalog.Wishlist, actor identity.Actor, action notify.Action, event audit.Event) {
	if s.notifier != nil {
		queued := s.notifier.Enqueue(notify.Notification{
			Wishlist: *wishlist,
			Actor:    actor,
			Action:   action,
			ItemID:   item.ID,
			Title:    item.Title,
		})
		if !queued {
			s.logger.WarnContext(ctx, "notification queue full, dropping event",
				"item_id", item.ID,
				"action", action,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	s.emit(ctx, event)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	event.Timestamp = requestcontext.Now(ctx)
	s.auditor.Emit(ctx, event)
}

func (s *Service) finish(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(dErrors.CodeInternal)
		if de, ok := dErrors.As(err); ok {
			outcome = string(de.Code)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		if outcome == string(dErrors.CodeInternal) {
			s.logger.ErrorContext(ctx, "ledger operation failed",
				"operation", op,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	s.metrics.ObserveOperation(op, outcome, time.Since(start))
}

func reserveAuditEvent(item *models.Item, actor identity.Actor, amount *decimal.Decimal) audit.Event {
	event := audit.Event{
		Action:     audit.ActionItemReserved,
		ItemID:     item.ID,
		WishlistID: item.WishlistID,
		ActorKind:  string(actor.Kind),
		ActorID:    actor.ID(),
		ActorName:  actor.DisplayName,
		Collected:  item.CollectedAmount.StringFixed(2),
	}
	if amount != nil {
		event.Action = audit.ActionContributionMade
		event.Amount = amount.StringFixed(2)
	}
	return event
}

// translateStoreError maps storage facts to domain errors. Domain errors pass
// through unchanged.
func translateStoreError(err error, notFound string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrLockTimeout):
		return dErrors.NewRetryable(dErrors.CodeConflict, "item is busy, retry shortly")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.NewRetryable(dErrors.CodeConflict, "concurrent update detected, retry shortly")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "ledger operation timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "ledger operation failed")
	}
}
