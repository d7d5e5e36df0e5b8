package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tsuyoshi-3110/concierge/internal/log"
)

func TestRateLimiter_Burst(t *testing.T) {
	rl := newRateLimiter(0.001, 3)

	assert.True(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("1.2.3.4"))
	assert.False(t, rl.allow("1.2.3.4"), "fourth request should exceed burst")

	// Separate IPs get separate buckets.
	assert.True(t, rl.allow("5.6.7.8"))
}

func TestRateLimitMiddleware_TooManyRequests(t *testing.T) {
	rl := newRateLimiter(0.001, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := rateLimitMiddleware(rl, false, log.NewNop())(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", nil)
	req.RemoteAddr = "9.9.9.9:1234"

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		realIP     string
		forwarded  string
		trustProxy bool
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "10.0.0.1:5000",
			want:       "10.0.0.1",
		},
		{
			name:       "proxy headers ignored without trust",
			remoteAddr: "10.0.0.1:5000",
			realIP:     "203.0.113.7",
			want:       "10.0.0.1",
		},
		{
			name:       "x-real-ip preferred with trust",
			remoteAddr: "10.0.0.1:5000",
			realIP:     "203.0.113.7",
			forwarded:  "198.51.100.2, 10.0.0.1",
			trustProxy: true,
			want:       "203.0.113.7",
		},
		{
			name:       "x-forwarded-for first entry",
			remoteAddr: "10.0.0.1:5000",
			forwarded:  "198.51.100.2, 10.0.0.1",
			trustProxy: true,
			want:       "198.51.100.2",
		},
		{
			name:       "invalid header falls through",
			remoteAddr: "10.0.0.1:5000",
			realIP:     "not-an-ip",
			trustProxy: true,
			want:       "10.0.0.1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.trustProxy))
		})
	}
}
