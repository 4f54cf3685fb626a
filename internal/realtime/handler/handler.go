package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/websocket"

	catalog "wishlist/internal/catalog/models"
	notify "wishlist/internal/notify/models"
	"wishlist/internal/realtime"
	"wishlist/internal/realtime/metrics"
	dErrors "wishlist/pkg/domain-errors"
	"wishlist/pkg/platform/httputil"
	"wishlist/pkg/platform/sentinel"
	"wishlist/pkg/requestcontext"
)

const (
	defaultBuffer    = 16
	defaultHeartbeat = 15 * time.Second
	writeTimeout     = 10 * time.Second

	transportSSE       = "sse"
	transportWebSocket = "websocket"
)

// ShareTokenReader checks share-link channels.
type ShareTokenReader interface {
	WishlistByShareToken(ctx context.Context, token string) (*catalog.Wishlist, error)
}

// Handler serves live event streams over Server-Sent Events and WebSocket.
type Handler struct {
	registry  *realtime.Registry
	wishlists ShareTokenReader
	buffer    int
	heartbeat time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Handler)

func WithBuffer(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.buffer = n
		}
	}
}

func WithHeartbeat(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

func New(registry *realtime.Registry, wishlists ShareTokenReader, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		registry:  registry,
		wishlists: wishlists,
		buffer:    defaultBuffer,
		heartbeat: defaultHeartbeat,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the streaming routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/v1/events/{channel}", h.handleEvents)
	r.Get("/api/v1/ws/{channel}", h.handleWebSocket)
}

// authorize admits a user channel only for the matching signed-in user and a
// share channel only for an existing share token.
func (h *Handler) authorize(ctx context.Context, channel string) error {
	if token, ok := strings.CutPrefix(channel, notify.SharePrefix); ok {
		if token == "" {
			return dErrors.New(dErrors.CodeNotFound, "wishlist not found")
		}
		if _, err := h.wishlists.WishlistByShareToken(ctx, token); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "wishlist not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load wishlist")
		}
		return nil
	}

	channelUserID, err := strconv.ParseInt(channel, 10, 64)
	if err != nil || channelUserID <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "invalid channel")
	}
	userID, ok := requestcontext.UserID(ctx)
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if userID != channelUserID {
		return dErrors.New(dErrors.CodeForbidden, "channel belongs to another user")
	}
	return nil
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channel := chi.URLParam(r, "channel")
	if err := h.authorize(ctx, channel); err != nil {
		httputil.WriteError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	stream := h.open(ctx, channel, transportSSE)
	defer h.close(ctx, channel, stream, transportSSE)

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stream.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case msg := <-stream.Messages():
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", notify.EventType, msg); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

type wsFrame struct {
	Type string `json:"type"`
}

var pongFrame = []byte(`{"type":"pong"}`)

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	if err := h.authorize(r.Context(), channel); err != nil {
		httputil.WriteError(w, err)
		return
	}
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWebSocket(conn, channel)
	}).ServeHTTP(w, r)
}

// serveWebSocket answers {"type":"ping"} frames with a pong and forwards
// channel events. Client frames of any other shape are ignored.
func (h *Handler) serveWebSocket(conn *websocket.Conn, channel string) {
	ctx := conn.Request().Context()
	defer func() {
		_ = conn.Close()
	}()

	stream := h.open(ctx, channel, transportWebSocket)
	defer h.close(ctx, channel, stream, transportWebSocket)

	go h.writeWebSocket(conn, stream)

	for {
		var data string
		if err := websocket.Message.Receive(conn, &data); err != nil {
			return
		}
		var frame wsFrame
		if json.Unmarshal([]byte(data), &frame) == nil && frame.Type == "ping" {
			if err := stream.Send(pongFrame); err != nil {
				return
			}
		}
	}
}

func (h *Handler) writeWebSocket(conn *websocket.Conn, stream *realtime.Stream) {
	for {
		select {
		case <-stream.Done():
			_ = conn.Close()
			return
		case msg := <-stream.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := websocket.Message.Send(conn, string(msg)); err != nil {
				stream.Close()
				_ = conn.Close()
				return
			}
		}
	}
}

func (h *Handler) open(ctx context.Context, channel, transport string) *realtime.Stream {
	stream := realtime.NewStream(h.buffer)
	h.registry.Register(channel, stream)
	h.metrics.ConnectionOpened(transport)
	h.logger.DebugContext(ctx, "live connection opened",
		"channel", channel,
		"transport", transport,
		"request_id", requestcontext.RequestID(ctx),
	)
	return stream
}

func (h *Handler) close(ctx context.Context, channel string, stream *realtime.Stream, transport string) {
	h.registry.Unregister(channel, stream)
	stream.Close()
	h.metrics.ConnectionClosed(transport)
	h.logger.DebugContext(ctx, "live connection closed",
		"channel", channel,
		"transport", transport,
		"request_id", requestcontext.RequestID(ctx),
	)
}
