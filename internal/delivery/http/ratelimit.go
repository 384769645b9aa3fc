package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// CounterStore counts requests per key within a fixed window. Incr returns
// the count after incrementing; the first hit of a window arms its expiry.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounterStore shares windows across instances. Expiry is set only when
// the key is fresh, so the window is anchored at its first request.
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// MemoryCounterStore is the process-local fallback, also used in tests.
type MemoryCounterStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count   int64
	resetAt time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{windows: make(map[string]*window)}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, d time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(d)}
		s.windows[key] = w
	}
	w.count++
	return w.count, nil
}

// RateLimitMiddleware admits at most limit requests per client address per
// window on the route it wraps. It runs before authentication so that
// unauthenticated load on login/register is bounded. A broken counter store
// fails open: limiting is best-effort, not exact.
func RateLimitMiddleware(store CounterStore, route string, limit int, windowDur time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ratelimit:" + route + ":" + c.RealIP()
			count, err := store.Incr(c.Request().Context(), key, windowDur)
			if err == nil && count > int64(limit) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded. Try again later.")
			}
			return next(c)
		}
	}
}
