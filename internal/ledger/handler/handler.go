package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	catalog "wishlist/internal/catalog/models"
	identity "wishlist/internal/identity/models"
	"wishlist/internal/ledger/models"
	"wishlist/internal/ledger/service"
	dErrors "wishlist/pkg/domain-errors"
	"wishlist/pkg/platform/httputil"
	"wishlist/pkg/platform/middleware/metadata"
	"wishlist/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the ledger operations the handler exposes.
type Service interface {
	Reserve(ctx context.Context, req service.ReserveRequest) (*service.Result, error)
	Unreserve(ctx context.Context, req service.UnreserveRequest) (*service.Result, error)
	GetItem(ctx context.Context, itemID, viewerID int64) (models.ItemView, error)
	ListWishlistItems(ctx context.Context, wishlistID, viewerID int64) ([]models.ItemView, error)
	ListSharedItems(ctx context.Context, shareToken string, viewerID int64) (*catalog.Wishlist, []models.ItemView, error)
	ListMyReservations(ctx context.Context, claim identity.Claim) ([]service.ReservedItem, error)
}

// Handler serves the reservation and item read endpoints.
type Handler struct {
	ledger       Service
	logger       *slog.Logger
	cookieTTL    time.Duration
	cookieSecure bool
}

type Option func(*Handler)

// WithGuestCookie sets the lifetime and Secure flag of the guest token cookie.
func WithGuestCookie(ttl time.Duration, secure bool) Option {
	return func(h *Handler) {
		h.cookieTTL = ttl
		h.cookieSecure = secure
	}
}

func New(ledger Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		ledger:    ledger,
		logger:    logger,
		cookieTTL: 30 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the ledger routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/v1/items/{itemID}/reserve", h.handleReserve)
	r.Delete("/api/v1/items/{itemID}/reserve", h.handleUnreserve)
	r.Get("/api/v1/items/{itemID}", h.handleGetItem)
	r.Get("/api/v1/wishlists/{wishlistID}/items", h.handleListWishlistItems)
	r.Get("/api/v1/wishlists/share/{shareToken}/items", h.handleListSharedItems)
	r.Get("/api/v1/reservations/mine", h.handleListMyReservations)
}

func (h *Handler) handleReserve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID, err := pathID(r, "itemID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req ReserveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	claim := claimFrom(ctx)
	claim.Name = strings.TrimSpace(req.Name)

	result, err := h.ledger.Reserve(ctx, service.ReserveRequest{
		ItemID: itemID,
		Claim:  claim,
		Amount: req.Amount,
	})
	if err != nil {
		h.logFailure(ctx, "reserve", itemID, err)
		httputil.WriteError(w, err)
		return
	}
	h.writeGuestToken(w, result.GuestToken)
	httputil.WriteJSON(w, http.StatusOK, result.Item)
}

func (h *Handler) handleUnreserve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID, err := pathID(r, "itemID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.ledger.Unreserve(ctx, service.UnreserveRequest{
		ItemID: itemID,
		Claim:  claimFrom(ctx),
		Name:   strings.TrimSpace(r.URL.Query().Get("name")),
	})
	if err != nil {
		h.logFailure(ctx, "unreserve", itemID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result.Item)
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID, err := pathID(r, "itemID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.ledger.GetItem(ctx, itemID, viewerID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleListWishlistItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wishlistID, err := pathID(r, "wishlistID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	views, err := h.ledger.ListWishlistItems(ctx, wishlistID, viewerID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) handleListSharedItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wishlist, views, err := h.ledger.ListSharedItems(ctx, chi.URLParam(r, "shareToken"), viewerID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SharedWishlistResponse{
		Wishlist: toWishlistSummary(wishlist),
		Items:    views,
	})
}

func (h *Handler) handleListMyReservations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reserved, err := h.ledger.ListMyReservations(ctx, claimFrom(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := make([]ReservationResponse, 0, len(reserved))
	for _, ri := range reserved {
		resp = append(resp, ReservationResponse{
			Item:       ri.Item,
			Wishlist:   toWishlistSummary(&ri.Wishlist),
			ReservedAt: ri.ReservedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// writeGuestToken echoes the guest token in the header and refreshes the
// browser cookie.
func (h *Handler) writeGuestToken(w http.ResponseWriter, token string) {
	if token == "" {
		return
	}
	w.Header().Set(metadata.HeaderGuestToken, token)
	http.SetCookie(w, &http.Cookie{
		Name:     metadata.CookieGuestToken,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) logFailure(ctx context.Context, op string, itemID int64, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		return
	}
	h.logger.InfoContext(ctx, "ledger request rejected",
		"operation", op,
		"item_id", itemID,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}

func pathID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid "+strings.TrimSuffix(param, "ID")+" id")
	}
	return id, nil
}

func viewerID(ctx context.Context) int64 {
	id, _ := requestcontext.UserID(ctx)
	return id
}

func claimFrom(ctx context.Context) identity.Claim {
	return identity.Claim{
		UserID:     viewerID(ctx),
		GuestToken: requestcontext.GuestToken(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
	}
}

// ReserveRequest is the reservation body. A missing amount asks for a full
// reservation; amounts may be JSON numbers or strings.
type ReserveRequest struct {
	Name   string           `json:"name,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}
