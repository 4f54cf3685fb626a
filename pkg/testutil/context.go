package testutil

import (
	"net/http"

	"wishlist/pkg/requestcontext"
)

// WithUserID marks the request as authenticated, as the auth middleware would.
func WithUserID(req *http.Request, userID int64) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithGuestToken attaches a presented guest token, as the metadata middleware would.
func WithGuestToken(req *http.Request, token string) *http.Request {
	return req.WithContext(requestcontext.WithGuestToken(req.Context(), token))
}

// WithClient attaches client IP and User-Agent.
func WithClient(req *http.Request, ip, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, userAgent))
}
