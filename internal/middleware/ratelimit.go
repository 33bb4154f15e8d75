package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Limiter decides whether another request for key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	RetryAfter(key string) time.Duration
}

// =============================================================================
// In-memory Rate Limiter
// =============================================================================

// RateLimiter tracks request counts per key with a fixed window. State is
// local to the process.
type RateLimiter struct {
	maxAttempts int
	window      time.Duration
	logger      *slog.Logger

	mu      sync.RWMutex
	entries map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(maxAttempts int, window time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
		entries:     make(map[string]*rateLimitEntry),
	}

	go rl.cleanup()

	return rl
}

// Allow checks if a request from the given key should be allowed.
func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	entry, exists := rl.entries[key]

	if !exists {
		rl.entries[key] = &rateLimitEntry{
			count:       1,
			windowStart: now,
		}
		return true, nil
	}

	if now.Sub(entry.windowStart) > rl.window {
		entry.count = 1
		entry.windowStart = now
		return true, nil
	}

	if entry.count < rl.maxAttempts {
		entry.count++
		return true, nil
	}

	return false, nil
}

// RetryAfter returns how long until the rate limit resets for a key.
func (rl *RateLimiter) RetryAfter(key string) time.Duration {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	entry, exists := rl.entries[key]
	if !exists {
		return 0
	}

	elapsed := time.Since(entry.windowStart)
	if elapsed >= rl.window {
		return 0
	}

	return rl.window - elapsed
}

// cleanup periodically removes expired entries to prevent memory leaks.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, entry := range rl.entries {
			if now.Sub(entry.windowStart) > rl.window {
				delete(rl.entries, key)
			}
		}
		rl.mu.Unlock()
	}
}

// =============================================================================
// Shared Rate Limiter
// =============================================================================

// Counter is the shared counter backing SharedRateLimiter. *cache.Cache
// implements it with Redis INCR and EXPIRE.
type Counter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SharedRateLimiter enforces the limit across every server instance.
type SharedRateLimiter struct {
	counter     Counter
	prefix      string
	maxAttempts int
	window      time.Duration
}

// NewSharedRateLimiter creates a limiter whose counts live in counter under
// prefix.
func NewSharedRateLimiter(counter Counter, prefix string, maxAttempts int, window time.Duration) *SharedRateLimiter {
	return &SharedRateLimiter{
		counter:     counter,
		prefix:      prefix,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func (l *SharedRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.counter.Allow(ctx, l.prefix+key, l.maxAttempts, l.window)
}

// RetryAfter reports the full window; the remaining TTL is not fetched.
func (l *SharedRateLimiter) RetryAfter(string) time.Duration {
	return l.window
}

// =============================================================================
// Rate Limit Middleware
// =============================================================================

// RateLimitMiddleware wraps a Limiter for use as HTTP middleware, keyed by
// client IP.
type RateLimitMiddleware struct {
	limiter  Limiter
	clientIP *ClientIPResolver
	logger   *slog.Logger
}

// NewRateLimitMiddleware creates a new rate limit middleware. A nil resolver
// keys on the connection's remote address.
func NewRateLimitMiddleware(limiter Limiter, clientIP *ClientIPResolver, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter:  limiter,
		clientIP: clientIP,
		logger:   logger,
	}
}

// Limit returns middleware that rate limits requests. A limiter failure lets
// the request through.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := m.clientIP.ClientIP(r)

		allowed, err := m.limiter.Allow(r.Context(), clientIP)
		if err != nil {
			m.logger.Warn("rate limiter unavailable", "error", err, "ip", clientIP)
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			m.logger.Warn("rate limit exceeded",
				"ip", clientIP,
				"path", r.URL.Path,
				"method", r.Method,
			)

			retryAfter := int(m.limiter.RetryAfter(clientIP).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{
					"code":    "rate_limit",
					"message": "Too many requests. Please try again later.",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
