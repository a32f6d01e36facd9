package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds the per-user rate limit settings.
type RateLimiterConfig struct {
	GeneralPerMinute  int
	RegisterPerMinute int
	CleanupInterval   time.Duration
}

// DefaultRateLimiterConfig returns the default limits: 120 req/min/user for
// the API in general, 10 req/min/user for registration writes.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralPerMinute:  120,
		RegisterPerMinute: 10,
		CleanupInterval:   5 * time.Minute,
	}
}

type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter enforces per-user token bucket limits. Two tiers: a general
// API limit, and a stricter one on registration writes that operates
// independently.
type RateLimiter struct {
	config RateLimiterConfig

	mu       sync.Mutex
	general  map[string]*userLimiter
	register map[string]*userLimiter

	stopCh chan struct{}
}

// NewRateLimiter creates a RateLimiter and starts the background cleanup of
// idle entries.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:   config,
		general:  make(map[string]*userLimiter),
		register: make(map[string]*userLimiter),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop terminates the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// General returns the middleware for the general API tier. Must run after
// the Authenticator.
func (rl *RateLimiter) General() func(next http.Handler) http.Handler {
	return rl.middleware(rl.general, rl.config.GeneralPerMinute, "general")
}

// Register returns the middleware for the registration tier.
func (rl *RateLimiter) Register() func(next http.Handler) http.Handler {
	return rl.middleware(rl.register, rl.config.RegisterPerMinute, "register")
}

func (rl *RateLimiter) middleware(limiters map[string]*userLimiter, perMinute int, tier string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if !rl.allow(limiters, user.ID, perMinute) {
				log.Warn().Str("user_id", user.ID).Str("tier", tier).Msg("rate limit exceeded")
				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(limiters map[string]*userLimiter, userID string, perMinute int) bool {
	rl.mu.Lock()
	ul, ok := limiters[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)}
		limiters[userID] = ul
	}
	ul.lastAccess = time.Now()
	rl.mu.Unlock()

	return ul.limiter.Allow()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.config.CleanupInterval)
			rl.mu.Lock()
			for _, limiters := range []map[string]*userLimiter{rl.general, rl.register} {
				for id, ul := range limiters {
					if ul.lastAccess.Before(cutoff) {
						delete(limiters, id)
					}
				}
			}
			rl.mu.Unlock()
		}
	}
}
