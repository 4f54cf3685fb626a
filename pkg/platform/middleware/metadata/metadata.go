package metadata

import (
	"net/http"
	"strings"

	"wishlist/pkg/requestcontext"
)

const (
	// HeaderGuestToken carries the guest session token in both directions.
	HeaderGuestToken = "X-Guest-Token"
	// CookieGuestToken is the browser fallback for the guest session token.
	CookieGuestToken = "guest_token"
)

// ClientMetadata extracts client IP address, User-Agent and any presented
// guest token and adds them to the context for use by handlers and services.
// This middleware should be applied early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), r.Header.Get("User-Agent"))
		if token := GuestTokenFromRequest(r); token != "" {
			ctx = requestcontext.WithGuestToken(ctx, token)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GuestTokenFromRequest reads the guest token from the header, then the cookie.
func GuestTokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(HeaderGuestToken)); token != "" {
		return token
	}
	if c, err := r.Cookie(CookieGuestToken); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// ClientIPFromRequest extracts the real client IP from the request, handling proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...); the first is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port" or "[::1]:port".
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return strings.Trim(addr[:idx], "[]")
		}
		return addr
	}

	return "unknown"
}
