package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AwardsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gamification_awards_total",
		Help: "Point awards granted, by action",
	}, []string{"action"})

	AwardFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gamification_award_failures_total",
		Help: "Award attempts that returned no result, by cause",
	}, []string{"cause"})

	RateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gamification_rate_limited_total",
		Help: "Award attempts denied by the rate limiter, by action",
	}, []string{"action"})

	BadgesAwardedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gamification_badges_awarded_total",
		Help: "Badges granted",
	})

	StreakResetsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gamification_streak_resets_total",
		Help: "Streaks reset after missing the grace window",
	})

	LevelUpsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gamification_level_ups_total",
		Help: "Level-up events detected during awards",
	})
)

// Register registers all collectors on the given registry.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		AwardsTotal,
		AwardFailures,
		RateLimitedTotal,
		BadgesAwardedTotal,
		StreakResetsTotal,
		LevelUpsTotal,
	)
}
