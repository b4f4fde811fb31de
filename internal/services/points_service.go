package services

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidesmedia/newsreach-backend/internal/metrics"
	"github.com/tidesmedia/newsreach-backend/internal/models"
	"github.com/tidesmedia/newsreach-backend/internal/repositories"
)

// sideEffectTimeout bounds the fire-and-forget work spawned after an award.
const sideEffectTimeout = 10 * time.Second

// AwardResult is what a successful award reports back to the caller.
type AwardResult struct {
	PointsAwarded  int  `json:"pointsAwarded"`
	TotalPoints    int  `json:"totalPoints"`
	LifetimePoints int  `json:"lifetimePoints"`
	LeveledUp      bool `json:"leveledUp"`
	NewLevel       int  `json:"newLevel,omitempty"`
	OldLevel       int  `json:"oldLevel,omitempty"`
}

// StreakResult is what a streak touch reports back to the caller.
type StreakResult struct {
	Streak        int  `json:"streak"`
	IsNewDay      bool `json:"isNewDay"`
	LongestStreak int  `json:"longestStreak"`
}

// Permitter gates award attempts. *RateLimiter is the production
// implementation.
type Permitter interface {
	Permit(ctx context.Context, userID, action string) bool
}

// BadgeEvaluator runs the badge pass after a successful award.
type BadgeEvaluator interface {
	CheckAndAwardBadges(ctx context.Context, userID string, aggregate *models.UserPointsAggregate) []*models.BadgeDefinition
}

// ViewCache is the slice of the ephemeral cache used for read views.
type ViewCache interface {
	IsConnected(ctx context.Context) bool
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// userLocks serializes same-user award operations in-process with striped
// mutexes. The document store gives no cross-document transaction, so
// without this two concurrent awards for one user race the read-modify-write
// on the aggregate. Stripes keep memory bounded; collisions only cost
// unnecessary serialization between unrelated users.
// TODO: a multi-instance deployment still needs an optimistic version check
// on the aggregate update; the per-process lock only closes the race within
// one instance.
type userLocks struct {
	stripes [64]sync.Mutex
}

func (l *userLocks) lock(userID string) func() {
	var h uint32 = 2166136261
	for i := 0; i < len(userID); i++ {
		h ^= uint32(userID[i])
		h *= 16777619
	}
	mu := &l.stripes[h%uint32(len(l.stripes))]
	mu.Lock()
	return mu.Unlock
}

// PointsService is the award engine and streak tracker. It owns all writes
// to the user points aggregate and the ledger.
type PointsService struct {
	pointsRepo repositories.UserPointsRepository
	txRepo     repositories.PointTransactionRepository
	limiter    Permitter
	badges     BadgeEvaluator
	viewCache  ViewCache
	config     GamificationConfig
	logger     zerolog.Logger
	locks      userLocks
	// now is swappable in tests to pin streak boundary semantics.
	now func() time.Time
}

// NewPointsService creates a new PointsService
func NewPointsService(
	pointsRepo repositories.UserPointsRepository,
	txRepo repositories.PointTransactionRepository,
	limiter Permitter,
	badges BadgeEvaluator,
	viewCache ViewCache,
	config GamificationConfig,
	logger zerolog.Logger,
) *PointsService {
	return &PointsService{
		pointsRepo: pointsRepo,
		txRepo:     txRepo,
		limiter:    limiter,
		badges:     badges,
		viewCache:  viewCache,
		config:     config,
		logger:     logger.With().Str("component", "points_service").Logger(),
		now:        time.Now,
	}
}

// AwardPoints awards points to a user for an action. It returns nil for
// every no-award outcome (unknown action, rate limited, infrastructure
// failure) so callers cannot distinguish anti-abuse denials from anything
// else; operators distinguish them through logs and metrics.
func (s *PointsService) AwardPoints(ctx context.Context, userID, action string, metadata map[string]interface{}) *AwardResult {
	action = strings.ToUpper(action)

	basePoints, ok := s.config.ActionPoints[action]
	if !ok {
		s.logger.Debug().Str("userId", userID).Str("action", action).Msg("unknown action, no award")
		metrics.AwardFailures.WithLabelValues("unknown_action").Inc()
		return nil
	}

	if !s.limiter.Permit(ctx, userID, action) {
		s.logger.Debug().Str("userId", userID).Str("action", action).Msg("rate limited")
		metrics.AwardFailures.WithLabelValues("rate_limited").Inc()
		return nil
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	aggregate, err := s.pointsRepo.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("userId", userID).Msg("failed to load points aggregate")
		metrics.AwardFailures.WithLabelValues("infrastructure").Inc()
		return nil
	}

	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	finalPoints := basePoints
	if action == ActionDailyLogin {
		multiplier := aggregate.Streak.Current
		if multiplier > s.config.MaxStreakMultiplier {
			multiplier = s.config.MaxStreakMultiplier
		}
		if multiplier < 1 {
			multiplier = 1
		}
		finalPoints = int(math.Round(float64(basePoints) * float64(multiplier)))
		metadata["multiplier"] = multiplier
		metadata["streakDay"] = aggregate.Streak.Current
	}

	aggregate.TotalPoints += finalPoints
	aggregate.LifetimePoints += finalPoints
	s.applyStatCounters(aggregate, action, metadata)

	oldLevel := aggregate.Level
	newLevel := LevelForPoints(s.config.Levels, aggregate.LifetimePoints)
	aggregate.Level = newLevel
	leveledUp := newLevel > oldLevel

	if err := s.pointsRepo.Update(ctx, aggregate); err != nil {
		s.logger.Error().Err(err).Str("userId", userID).Str("action", action).
			Msg("failed to persist points aggregate")
		metrics.AwardFailures.WithLabelValues("infrastructure").Inc()
		return nil
	}

	transaction := &models.PointTransaction{
		UserID:    userID,
		Points:    finalPoints,
		Action:    strings.ToLower(action),
		Metadata:  metadata,
		CreatedAt: s.now(),
	}
	if err := s.txRepo.Create(ctx, transaction); err != nil {
		s.logger.Error().Err(err).Str("userId", userID).Str("action", action).
			Msg("failed to append point transaction")
		metrics.AwardFailures.WithLabelValues("infrastructure").Inc()
		return nil
	}

	s.logger.Info().Str("userId", userID).Str("action", action).
		Int("points", finalPoints).Int("level", newLevel).Bool("leveledUp", leveledUp).
		Msg("points awarded")
	metrics.AwardsTotal.WithLabelValues(action).Inc()
	if leveledUp {
		metrics.LevelUpsTotal.Inc()
	}

	snapshot := *aggregate
	go s.afterAward(userID, &snapshot)

	result := &AwardResult{
		PointsAwarded:  finalPoints,
		TotalPoints:    aggregate.TotalPoints,
		LifetimePoints: aggregate.LifetimePoints,
		LeveledUp:      leveledUp,
	}
	if leveledUp {
		result.NewLevel = newLevel
		result.OldLevel = oldLevel
	}
	return result
}

// applyStatCounters bumps the stat counter mapped to the action and, for
// article read/like actions carrying a category, the category counter.
func (s *PointsService) applyStatCounters(aggregate *models.UserPointsAggregate, action string, metadata map[string]interface{}) {
	switch action {
	case ActionArticleRead:
		aggregate.Stats.ArticlesRead++
	case ActionArticleReadFull:
		// A plain read usually precedes a full read for the same article;
		// clients set alreadyCounted when the plain-read event was already
		// submitted so the article is not counted twice.
		if counted, _ := metadata["alreadyCounted"].(bool); !counted {
			aggregate.Stats.ArticlesRead++
		}
	case ActionArticleLike:
		aggregate.Stats.ArticlesLiked++
	case ActionCommentPost:
		aggregate.Stats.CommentsPosted++
	case ActionCommentReceivedLike:
		aggregate.Stats.CommentsLiked++
	case ActionArticleShare, ActionReelShare:
		aggregate.Stats.SharesCompleted++
	case ActionReelWatch:
		aggregate.Stats.ReelsWatched++
	case ActionReferralSignup, ActionReferralActive:
		aggregate.Stats.Referrals++
	}

	if action == ActionArticleRead || action == ActionArticleReadFull || action == ActionArticleLike {
		if category, ok := metadata["category"].(string); ok && category != "" {
			if aggregate.CategoryStats == nil {
				aggregate.CategoryStats = map[string]int{}
			}
			aggregate.CategoryStats[category]++
		}
	}
}

// UpdateStreak records activity for today and applies the streak state
// machine. Day boundaries are fixed UTC calendar days, not a rolling 24h
// window; the 48h grace window on top of that decides continue-vs-reset.
// Returns nil on infrastructure failure.
func (s *PointsService) UpdateStreak(ctx context.Context, userID string) *StreakResult {
	unlock := s.locks.lock(userID)

	aggregate, err := s.pointsRepo.GetOrCreate(ctx, userID)
	if err != nil {
		unlock()
		s.logger.Error().Err(err).Str("userId", userID).Msg("failed to load points aggregate for streak")
		return nil
	}

	now := s.now().UTC()
	last := aggregate.Streak.LastActivityDate

	if !last.IsZero() && sameUTCDay(last, now) {
		unlock()
		return &StreakResult{
			Streak:        aggregate.Streak.Current,
			IsNewDay:      false,
			LongestStreak: aggregate.Streak.Longest,
		}
	}

	if last.IsZero() {
		aggregate.Streak.Current = 1
		aggregate.Streak.Longest = 1
	} else if now.Sub(last).Hours() < float64(s.config.StreakGraceHours) {
		aggregate.Streak.Current++
		if aggregate.Streak.Current > aggregate.Streak.Longest {
			aggregate.Streak.Longest = aggregate.Streak.Current
		}
	} else {
		aggregate.Streak.Current = 1
		metrics.StreakResetsTotal.Inc()
	}

	aggregate.Streak.LastActivityDate = now
	aggregate.Stats.DailyLogins++

	if err := s.pointsRepo.Update(ctx, aggregate); err != nil {
		unlock()
		s.logger.Error().Err(err).Str("userId", userID).Msg("failed to persist streak update")
		return nil
	}

	result := &StreakResult{
		Streak:        aggregate.Streak.Current,
		IsNewDay:      true,
		LongestStreak: aggregate.Streak.Longest,
	}

	// Release before awarding: AwardPoints takes the same user lock.
	unlock()

	// The daily-login award runs after the streak mutation so the multiplier
	// sees the streak day just recorded. Its failure never voids the touch.
	if res := s.AwardPoints(ctx, userID, ActionDailyLogin, nil); res == nil {
		s.logger.Warn().Str("userId", userID).Msg("daily login award yielded no result")
	}
	go s.invalidateViews(userID)

	return result
}

// afterAward runs the asynchronous side effects of a successful award: the
// badge pass and read-view invalidation. Failures are logged, never
// propagated, and carry no ordering guarantee relative to the caller's
// response.
func (s *PointsService) afterAward(userID string, aggregate *models.UserPointsAggregate) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("userId", userID).Msg("award side effects panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if s.badges != nil {
		s.badges.CheckAndAwardBadges(ctx, userID, aggregate)
	}
	s.invalidateViews(userID)
}

// invalidateViews drops the cached profile and leaderboard views.
func (s *PointsService) invalidateViews(userID string) {
	if s.viewCache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if !s.viewCache.IsConnected(ctx) {
		return
	}
	if err := s.viewCache.Delete(ctx, profileCacheKey(userID), leaderboardCacheKey); err != nil {
		s.logger.Warn().Err(err).Str("userId", userID).Msg("failed to invalidate cached views")
	}
}

// sameUTCDay reports whether a and b fall on the same UTC calendar day.
func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
