package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/redis"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
)

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	// Limit is the maximum number of requests per window and key.
	Limit int64

	// Window is the fixed counting window.
	Window time.Duration

	// KeyFunc extracts the rate limit key from a request. Defaults to the
	// authenticated user id when present, otherwise the client IP.
	KeyFunc func(r *http.Request) string

	// SkipPaths are paths that bypass rate limiting.
	SkipPaths []string
}

// DefaultRateLimitConfig returns the default rate limit configuration. The
// public intake endpoints are the reason this exists at all; 60 requests a
// minute is generous for humans and hostile to scripts.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:     60,
		Window:    time.Minute,
		SkipPaths: []string{"/healthz", "/readyz", "/metrics"},
	}
}

// RateLimitMiddleware enforces a fixed-window request quota per key, counted
// in Redis so that all API replicas share one budget.
type RateLimitMiddleware struct {
	cache  redis.Cache
	config RateLimitConfig
	logger logging.Logger
}

// NewRateLimitMiddleware creates a RateLimitMiddleware backed by the shared
// cache.
func NewRateLimitMiddleware(cache redis.Cache, config RateLimitConfig, logger logging.Logger) *RateLimitMiddleware {
	if config.KeyFunc == nil {
		config.KeyFunc = defaultRateLimitKey
	}
	return &RateLimitMiddleware{cache: cache, config: config, logger: logger}
}

// defaultRateLimitKey keys on the authenticated user when available so that
// admins behind a shared NAT do not exhaust each other's budget, and falls
// back to the client IP for anonymous intake traffic.
func defaultRateLimitKey(r *http.Request) string {
	if userID := ContextGetUserID(r.Context()); userID != "" {
		return "user:" + string(userID)
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return "ip:" + xff
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

// Handler enforces the quota. Counter failures fail open: a degraded Redis
// must not take the intake endpoint down with it.
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	skipSet := make(map[string]bool, len(m.config.SkipPaths))
	for _, p := range m.config.SkipPaths {
		skipSet[p] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skipSet[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		key := "ratelimit:" + m.config.KeyFunc(r)
		count, err := m.cache.Incr(r.Context(), key, m.config.Window)
		if err != nil {
			m.logger.Warn("rate limit counter unavailable", logging.Err(err))
			next.ServeHTTP(w, r)
			return
		}

		remaining := m.config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(m.config.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > m.config.Limit {
			w.Header().Set("Retry-After", strconv.Itoa(int(m.config.Window.Seconds())))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    "COMMON_007",
				"message": "too many requests",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

//Personal.AI order the ending
