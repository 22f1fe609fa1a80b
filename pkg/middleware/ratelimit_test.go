package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func limitedHandler(rps, burst int) http.Handler {
	return RateLimit(RateLimitConfig{RPS: rps, Burst: burst}, discardLogger())(okHandler())
}

func hit(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/pedidos", nil)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimit_WithinBurst_Passes(t *testing.T) {
	h := limitedHandler(10, 10)

	for i := 0; i < 5; i++ {
		rr := hit(h, "192.168.1.1:12345")
		assert.Equal(t, http.StatusOK, rr.Code, "request %d should pass", i+1)
	}
}

func TestRateLimit_ExceedingBurst_Returns429(t *testing.T) {
	h := limitedHandler(1, 1)

	assert.Equal(t, http.StatusOK, hit(h, "172.16.0.1:12345").Code)

	rr := hit(h, "172.16.0.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.JSONEq(t, `{"detail":"too many requests","code":"RATE_LIMITED"}`, rr.Body.String())
}

func TestRateLimit_DifferentIPs_IndependentLimits(t *testing.T) {
	h := limitedHandler(1, 2)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:12345").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:12345").Code)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.2:12345").Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	h := limitedHandler(0, 0)

	for i := 0; i < 50; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "10.0.0.9:12345").Code)
	}
}

func TestRateLimit_IgnoresForwardedHeadersByDefault(t *testing.T) {
	h := limitedHandler(1, 1)

	for i, xff := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		req := httptest.NewRequest(http.MethodGet, "/pedidos", nil)
		req.RemoteAddr = "10.0.0.5:12345"
		req.Header.Set("X-Forwarded-For", xff)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if i == 0 {
			assert.Equal(t, http.StatusOK, rr.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rr.Code, "spoofed %s must share the socket's bucket", xff)
		}
	}
}

func TestRateLimit_TrustedProxyHeaders(t *testing.T) {
	h := RateLimit(RateLimitConfig{RPS: 1, Burst: 1, TrustProxyHeaders: true}, discardLogger())(okHandler())

	for _, xff := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodGet, "/pedidos", nil)
		req.RemoteAddr = "10.0.0.5:12345"
		req.Header.Set("X-Forwarded-For", xff)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestVisitorStore_LookupSweepsStale(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newVisitorStore(1, 1, time.Minute)
	s.nowFunc = func() time.Time { return now }

	s.limiter("10.0.0.1")
	now = now.Add(30 * time.Second)
	s.limiter("10.0.0.2")
	assert.Equal(t, 2, s.len())

	// 75s after the first lookup: 10.0.0.1 is stale, 10.0.0.2 is not.
	now = now.Add(45 * time.Second)
	s.limiter("10.0.0.2")
	assert.Equal(t, 1, s.len())

	// Within ttl of the last sweep nothing is evicted.
	now = now.Add(30 * time.Second)
	s.limiter("10.0.0.3")
	assert.Equal(t, 2, s.len())

	now = now.Add(5 * time.Minute)
	s.limiter("10.0.0.4")
	assert.Equal(t, 1, s.len())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		trust   bool
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded single", true, map[string]string{"X-Forwarded-For": "203.0.113.50"}, "10.0.0.1:12345", "203.0.113.50"},
		{"forwarded chain", true, map[string]string{"X-Forwarded-For": "garbage, 203.0.113.7, 10.0.0.3"}, "10.0.0.1:12345", "203.0.113.7"},
		{"real ip", true, map[string]string{"X-Real-IP": "198.51.100.42"}, "10.0.0.1:12345", "198.51.100.42"},
		{"untrusted forwarded", false, map[string]string{"X-Forwarded-For": "203.0.113.50"}, "10.0.0.1:12345", "10.0.0.1"},
		{"untrusted real ip", false, map[string]string{"X-Real-IP": "198.51.100.42"}, "10.0.0.1:12345", "10.0.0.1"},
		{"remote addr", false, nil, "10.0.0.1:12345", "10.0.0.1"},
		{"remote without port", false, nil, "10.0.0.1", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.trust))
		})
	}
}
