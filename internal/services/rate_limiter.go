package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidesmedia/newsreach-backend/internal/metrics"
)

// LimiterStore is the slice of the ephemeral cache the rate limiter needs.
// internal/cache.Cache satisfies it; tests use an in-memory fake.
type LimiterStore interface {
	IsConnected(ctx context.Context) bool
	Exists(ctx context.Context, key string) (bool, error)
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RateLimiter decides, per (user, action), whether an award attempt is
// permitted right now. It keeps a short-lived cooldown flag and a
// calendar-day counter per pair, both in the ephemeral store. It is advisory
// anti-abuse, not a transactional guard: when the store is down every check
// allows, trading enforcement for availability of the reward path.
type RateLimiter struct {
	store  LimiterStore
	config GamificationConfig
	logger zerolog.Logger
	// now is swappable in tests to pin calendar-day boundaries.
	now func() time.Time
}

// NewRateLimiter creates a new RateLimiter
func NewRateLimiter(store LimiterStore, config GamificationConfig, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		store:  store,
		config: config,
		logger: logger.With().Str("component", "rate_limiter").Logger(),
		now:    time.Now,
	}
}

// Permit reports whether userID may be awarded for action right now. On
// allow it consumes one slot of the daily budget and arms the cooldown.
func (rl *RateLimiter) Permit(ctx context.Context, userID, action string) bool {
	if rl.store == nil || !rl.store.IsConnected(ctx) {
		return true
	}

	rule, ok := rl.config.RateLimits[action]
	if !ok {
		rule = RateLimitRule{DailyLimit: rl.config.DefaultDailyLimit}
	}

	cooldownKey := fmt.Sprintf("ratelimit:cooldown:%s:%s", userID, action)
	onCooldown, err := rl.store.Exists(ctx, cooldownKey)
	if err != nil {
		rl.logger.Warn().Err(err).Str("userId", userID).Str("action", action).
			Msg("cooldown check failed, allowing")
		return true
	}
	if onCooldown {
		metrics.RateLimitedTotal.WithLabelValues(action).Inc()
		return false
	}

	// Increment first, compare after: the INCR is atomic in the store, so
	// two concurrent requests cannot both observe a count below the limit.
	day := rl.now().UTC().Format("2006-01-02")
	counterKey := fmt.Sprintf("ratelimit:daily:%s:%s:%s", userID, action, day)
	count, err := rl.store.Increment(ctx, counterKey)
	if err != nil {
		rl.logger.Warn().Err(err).Str("userId", userID).Str("action", action).
			Msg("daily counter increment failed, allowing")
		return true
	}
	if count == 1 {
		if err := rl.store.Expire(ctx, counterKey, 24*time.Hour); err != nil {
			rl.logger.Warn().Err(err).Str("key", counterKey).Msg("failed to set counter expiry")
		}
	}
	if count > int64(rule.DailyLimit) {
		metrics.RateLimitedTotal.WithLabelValues(action).Inc()
		return false
	}

	if rule.Cooldown > 0 {
		if err := rl.store.Set(ctx, cooldownKey, "1", rule.Cooldown); err != nil {
			rl.logger.Warn().Err(err).Str("key", cooldownKey).Msg("failed to arm cooldown")
		}
	}
	return true
}
