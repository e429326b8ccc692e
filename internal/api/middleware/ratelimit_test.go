package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/docqa/internal/metrics"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func hit(h http.Handler, remote string) int {
	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(10, 2)
	defer rl.Close()
	h := rl.Limit(okHandler)

	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))
	require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1000"))
	require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1001"))
	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimiterBlocksWhenExceeded(t *testing.T) {
	rl := NewRateLimiter(0.5, 1)
	defer rl.Close()
	h := rl.Limit(okHandler)

	require.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1000"))
	require.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.2:1001"))
	// other clients have their own bucket
	require.Equal(t, http.StatusOK, hit(h, "10.0.0.3:1000"))
}

func TestRateLimiterRetryAfterFollowsRate(t *testing.T) {
	for rps, want := range map[float64]string{10: "1", 1: "1", 0.5: "2", 0.1: "10", 0.3: "4"} {
		rl := NewRateLimiter(rps, 1)
		h := rl.Limit(okHandler)

		require.Equal(t, http.StatusOK, hit(h, "10.0.1.1:1000"))
		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		req.RemoteAddr = "10.0.1.1:1001"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		rl.Close()

		require.Equal(t, http.StatusTooManyRequests, w.Code, "rps %v", rps)
		require.Equal(t, want, w.Header().Get("Retry-After"), "rps %v", rps)
	}
}

func TestRedisRateLimit(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer client.Close()

	h := RedisRateLimit(client, 0, 1, time.Hour)(okHandler)

	require.Equal(t, http.StatusOK, hit(h, "10.0.0.4:1000"))

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.RemoteAddr = "10.0.0.4:1001"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "3600", w.Header().Get("Retry-After"))

	m.FastForward(2 * time.Hour)
	require.Equal(t, http.StatusOK, hit(h, "10.0.0.4:1002"))
}

func TestRedisRateLimitFailsOpen(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	defer client.Close()
	m.Close()

	h := RedisRateLimit(client, 0, 0, time.Second)(okHandler)
	require.Equal(t, http.StatusOK, hit(h, "10.0.0.5:1000"))
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"*"})(okHandler)
	req := httptest.NewRequest(http.MethodOptions, "/documents", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRejectsUnlistedOrigin(t *testing.T) {
	h := CORS([]string{"https://app.example"})(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
