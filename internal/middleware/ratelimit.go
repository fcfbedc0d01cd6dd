package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a per-client sliding-window limiter over a Redis sorted
// set. It only smooths bursts on expensive endpoints; the weekly per-user
// generation quota is a separate concern owned by the usage ledger.
type RateLimiter struct {
	rdb    redis.Cmdable
	prefix string
	limit  int
	window time.Duration
}

// NewRateLimiter allows limit requests per window per client, keyed under
// the given prefix so separate endpoints get separate buckets.
func NewRateLimiter(rdb redis.Cmdable, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

// Middleware enforces the limit by client IP. Redis being unreachable
// fails open: a broken limiter must not take the endpoint down with it.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(rl.window / time.Second))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		allowed, err := rl.allow(r.Context(), rl.prefix+ip)
		if err != nil {
			slog.Warn("rate limiter unavailable, failing open", "error", err, "ip", ip)
			allowed = true
		}
		if !allowed {
			w.Header().Set("Retry-After", retryAfter)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many requests"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	cutoff := now.Add(-rl.window).UnixMilli()

	pipe := rl.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff, 10))
	inWindow := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, key, rl.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return inWindow.Val() < int64(rl.limit), nil
}

// clientIP prefers proxy-set headers over the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
