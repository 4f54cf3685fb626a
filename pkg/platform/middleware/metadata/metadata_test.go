package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"wishlist/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{name: "forwarded chain takes first", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, expected: "203.0.113.7"},
		{name: "real ip header", headers: map[string]string{"X-Real-IP": " 198.51.100.2 "}, expected: "198.51.100.2"},
		{name: "remote addr ipv4", remote: "192.0.2.1:5555", expected: "192.0.2.1"},
		{name: "remote addr ipv6", remote: "[::1]:5555", expected: "::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.remote != "" {
				req.RemoteAddr = tt.remote
			}
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, ClientIPFromRequest(req))
		})
	}
}

func TestClientMetadataGuestToken(t *testing.T) {
	var token, ua string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = requestcontext.GuestToken(r.Context())
		ua = requestcontext.UserAgent(r.Context())
	}))

	t.Run("header wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderGuestToken, "from-header")
		req.Header.Set("User-Agent", "curl/8")
		req.AddCookie(&http.Cookie{Name: CookieGuestToken, Value: "from-cookie"})
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "from-header", token)
		assert.Equal(t, "curl/8", ua)
	})

	t.Run("cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieGuestToken, Value: "from-cookie"})
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "from-cookie", token)
	})
}
