package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/nikhilbhutani/docqa/internal/auth"
	"github.com/nikhilbhutani/docqa/internal/metrics"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-client token bucket held in process memory.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int

	// retryAfter is the time in seconds for one token to refill.
	retryAfter int
	done       chan struct{}
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	retryAfter := 1
	if rps > 0 {
		retryAfter = max(1, int(math.Ceil(1/rps)))
	}
	rl := &RateLimiter{
		visitors:   make(map[string]*visitor),
		rate:       rate.Limit(rps),
		burst:      burst,
		retryAfter: retryAfter,
		done:       make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)

		rl.mu.Lock()
		v, exists := rl.visitors[key]
		if !exists {
			v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
			rl.visitors[key] = v
		}
		v.lastSeen = time.Now()
		allowed := v.limiter.Allow()
		rl.mu.Unlock()

		if !allowed {
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			writeLimited(w, rl.retryAfter)
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		next.ServeHTTP(w, r)
	})
}

// Close stops the background cleanup.
func (rl *RateLimiter) Close() {
	close(rl.done)
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
		}
		rl.mu.Lock()
		for key, v := range rl.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(rl.visitors, key)
			}
		}
		rl.mu.Unlock()
	}
}

// RedisRateLimit is a fixed-window limiter shared by every replica pointing at
// the same Redis. Each window allows floor(rps*window)+burst requests.
func RedisRateLimit(client *redis.Client, rps float64, burst int, window time.Duration) func(http.Handler) http.Handler {
	windowSeconds := int(window.Seconds())
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	allowedPerWindow := int64(rps*float64(windowSeconds)) + int64(burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			bucket := time.Now().Unix() / int64(windowSeconds)
			key := fmt.Sprintf("docqa:rl:%s:%d", clientKey(r), bucket)

			cnt, err := client.Incr(ctx, key).Result()
			if err != nil {
				// Fail open when Redis is unreachable.
				slog.Warn("redis rate limit unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if cnt == 1 {
				_ = client.Expire(ctx, key, time.Duration(windowSeconds+1)*time.Second).Err()
			}
			if cnt > allowedPerWindow {
				metrics.RateLimitRejected.WithLabelValues("redis").Inc()
				writeLimited(w, windowSeconds)
				return
			}
			metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey prefers the authenticated subject and falls back to the client IP.
func clientKey(r *http.Request) string {
	if sub := auth.SubjectFromContext(r.Context()); sub != "" {
		return "sub:" + sub
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

func writeLimited(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded", "code": "rate_limited"})
}
