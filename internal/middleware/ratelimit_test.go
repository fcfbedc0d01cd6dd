package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimiter(client, "rl:generate:", limit, time.Minute), mr
}

func hit(handler http.Handler, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/generate", nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter(t *testing.T) {
	t.Run("allows up to the limit then blocks", func(t *testing.T) {
		rl, _ := newTestLimiter(t, 3)
		handler := rl.Middleware(okHandler)

		for i := 0; i < 3; i++ {
			require.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:4000").Code, "request %d", i+1)
		}

		rec := hit(handler, "10.0.0.1:4000")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	})

	t.Run("buckets are per client", func(t *testing.T) {
		rl, _ := newTestLimiter(t, 1)
		handler := rl.Middleware(okHandler)

		require.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:4000").Code)
		require.Equal(t, http.StatusTooManyRequests, hit(handler, "10.0.0.1:4000").Code)
		assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.2:4000").Code)
	})

	t.Run("honors X-Forwarded-For over the socket address", func(t *testing.T) {
		rl, _ := newTestLimiter(t, 1)
		handler := rl.Middleware(okHandler)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/generate", nil)
		req.RemoteAddr = "127.0.0.1:9999"
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req.Clone(req.Context()))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("fails open when redis is down", func(t *testing.T) {
		rl, mr := newTestLimiter(t, 1)
		mr.Close()
		handler := rl.Middleware(okHandler)

		assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.3:4000").Code)
		assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.3:4000").Code)
	})
}
