package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidesmedia/newsreach-backend/internal/models"
	"github.com/tidesmedia/newsreach-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	profileCacheTTL     = 5 * time.Minute
	leaderboardCacheKey = "views:leaderboard"
)

func profileCacheKey(userID string) string {
	return "views:profile:" + userID
}

// BadgeView is a badge award joined with its definition for display.
type BadgeView struct {
	AwardID     primitive.ObjectID `json:"awardId"`
	BadgeID     primitive.ObjectID `json:"badgeId"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Icon        string             `json:"icon,omitempty"`
	EarnedAt    time.Time          `json:"earnedAt"`
	IsDisplayed bool               `json:"isDisplayed"`
}

// ProfileView is the read-side composition of the aggregate, badges and
// level progress. It is assembled from stores of record and cached; it is
// never itself a source of truth.
type ProfileView struct {
	UserID         string         `json:"userId"`
	TotalPoints    int            `json:"totalPoints"`
	LifetimePoints int            `json:"lifetimePoints"`
	Level          LevelProgress  `json:"level"`
	Streak         models.Streak  `json:"streak"`
	Stats          models.Stats   `json:"stats"`
	CategoryStats  map[string]int `json:"categoryStats,omitempty"`
	Badges         []BadgeView    `json:"badges"`
}

// ProfileService assembles the read view, reading through the ephemeral
// cache that the award path invalidates.
type ProfileService struct {
	pointsRepo    repositories.UserPointsRepository
	userBadgeRepo repositories.UserBadgeRepository
	badgeRepo     repositories.BadgeRepository
	viewCache     ViewCache
	config        GamificationConfig
	logger        zerolog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(
	pointsRepo repositories.UserPointsRepository,
	userBadgeRepo repositories.UserBadgeRepository,
	badgeRepo repositories.BadgeRepository,
	viewCache ViewCache,
	config GamificationConfig,
	logger zerolog.Logger,
) *ProfileService {
	return &ProfileService{
		pointsRepo:    pointsRepo,
		userBadgeRepo: userBadgeRepo,
		badgeRepo:     badgeRepo,
		viewCache:     viewCache,
		config:        config,
		logger:        logger.With().Str("component", "profile_service").Logger(),
	}
}

// GetProfile returns the assembled profile view. Unlike awards, a profile
// read has no safe default, so errors propagate to the caller.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*ProfileView, error) {
	if view := s.cachedProfile(ctx, userID); view != nil {
		return view, nil
	}

	aggregate, err := s.pointsRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	awards, err := s.userBadgeRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	badges := make([]BadgeView, 0, len(awards))
	if len(awards) > 0 {
		definitions, err := s.badgeRepo.FindActive(ctx)
		if err != nil {
			return nil, err
		}
		byID := make(map[primitive.ObjectID]*models.BadgeDefinition, len(definitions))
		for _, def := range definitions {
			byID[def.ID] = def
		}
		// awards arrive sorted by earnedAt descending from the repository
		for _, award := range awards {
			def, ok := byID[award.BadgeID]
			if !ok {
				// Definition was deactivated after the grant; the award stands
				// but there is nothing to display for it.
				continue
			}
			badges = append(badges, BadgeView{
				AwardID:     award.ID,
				BadgeID:     award.BadgeID,
				Name:        def.Name,
				Description: def.Description,
				Icon:        def.Icon,
				EarnedAt:    award.EarnedAt,
				IsDisplayed: award.IsDisplayed,
			})
		}
	}

	view := &ProfileView{
		UserID:         aggregate.UserID,
		TotalPoints:    aggregate.TotalPoints,
		LifetimePoints: aggregate.LifetimePoints,
		Level:          LevelProgressFor(s.config.Levels, aggregate.LifetimePoints),
		Streak:         aggregate.Streak,
		Stats:          aggregate.Stats,
		CategoryStats:  aggregate.CategoryStats,
		Badges:         badges,
	}

	s.cacheProfile(ctx, userID, view)
	return view, nil
}

func (s *ProfileService) cachedProfile(ctx context.Context, userID string) *ProfileView {
	if s.viewCache == nil || !s.viewCache.IsConnected(ctx) {
		return nil
	}
	raw, err := s.viewCache.Get(ctx, profileCacheKey(userID))
	if err != nil {
		return nil
	}
	var view ProfileView
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		s.logger.Warn().Err(err).Str("userId", userID).Msg("dropping undecodable cached profile")
		return nil
	}
	return &view
}

func (s *ProfileService) cacheProfile(ctx context.Context, userID string, view *ProfileView) {
	if s.viewCache == nil || !s.viewCache.IsConnected(ctx) {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := s.viewCache.Set(ctx, profileCacheKey(userID), string(raw), profileCacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("userId", userID).Msg("failed to cache profile view")
	}
}
