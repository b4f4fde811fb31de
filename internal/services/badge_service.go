package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidesmedia/newsreach-backend/internal/metrics"
	"github.com/tidesmedia/newsreach-backend/internal/models"
	"github.com/tidesmedia/newsreach-backend/internal/repositories"
	"github.com/tidesmedia/newsreach-backend/pkg/push"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time check to ensure BadgeService implements BadgeEvaluator
var _ BadgeEvaluator = (*BadgeService)(nil)

// BadgeService evaluates badge requirements against a user's aggregate and
// records new awards. Awards are derived facts: once granted they are never
// recomputed or revoked, which is safe because every gated counter is
// monotonically non-decreasing.
type BadgeService struct {
	badgeRepo        repositories.BadgeRepository
	userBadgeRepo    repositories.UserBadgeRepository
	pointsRepo       repositories.UserPointsRepository
	txRepo           repositories.PointTransactionRepository
	notificationRepo repositories.NotificationRepository
	pushGateway      push.Gateway
	logger           zerolog.Logger
}

// NewBadgeService creates a new BadgeService
func NewBadgeService(
	badgeRepo repositories.BadgeRepository,
	userBadgeRepo repositories.UserBadgeRepository,
	pointsRepo repositories.UserPointsRepository,
	txRepo repositories.PointTransactionRepository,
	notificationRepo repositories.NotificationRepository,
	pushGateway push.Gateway,
	logger zerolog.Logger,
) *BadgeService {
	return &BadgeService{
		badgeRepo:        badgeRepo,
		userBadgeRepo:    userBadgeRepo,
		pointsRepo:       pointsRepo,
		txRepo:           txRepo,
		notificationRepo: notificationRepo,
		pushGateway:      pushGateway,
		logger:           logger.With().Str("component", "badge_service").Logger(),
	}
}

// CheckAndAwardBadges grants every active badge whose requirement the
// aggregate now satisfies and which the user does not already hold. Returns
// the definitions granted in this pass.
func (s *BadgeService) CheckAndAwardBadges(ctx context.Context, userID string, aggregate *models.UserPointsAggregate) []*models.BadgeDefinition {
	definitions, err := s.badgeRepo.FindActive(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("userId", userID).Msg("failed to load badge definitions")
		return nil
	}

	existing, err := s.userBadgeRepo.FindByUserID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("userId", userID).Msg("failed to load prior badge awards")
		return nil
	}
	held := make(map[primitive.ObjectID]bool, len(existing))
	for _, award := range existing {
		held[award.BadgeID] = true
	}

	var awarded []*models.BadgeDefinition
	for _, def := range definitions {
		if held[def.ID] {
			continue
		}
		if !s.meetsRequirement(def.Requirement, aggregate) {
			continue
		}

		award := &models.UserBadgeAward{
			UserID:      userID,
			BadgeID:     def.ID,
			EarnedAt:    time.Now(),
			IsDisplayed: true,
		}
		created, err := s.userBadgeRepo.Create(ctx, award)
		if err != nil {
			s.logger.Error().Err(err).Str("userId", userID).Str("badge", def.Name).
				Msg("failed to record badge award")
			continue
		}
		if !created {
			// Another evaluation pass granted it between our load and insert.
			continue
		}

		if def.PointsAwarded > 0 {
			if err := s.pointsRepo.IncrementPoints(ctx, userID, def.PointsAwarded); err != nil {
				s.logger.Error().Err(err).Str("userId", userID).Str("badge", def.Name).
					Msg("failed to apply badge bonus points")
			} else {
				bonus := &models.PointTransaction{
					UserID: userID,
					Points: def.PointsAwarded,
					Action: actionBadgeBonus,
					Metadata: map[string]interface{}{
						"badgeId":   def.ID.Hex(),
						"badgeName": def.Name,
					},
					CreatedAt: time.Now(),
				}
				if err := s.txRepo.Create(ctx, bonus); err != nil {
					s.logger.Error().Err(err).Str("userId", userID).Str("badge", def.Name).
						Msg("failed to append badge bonus transaction")
				}
			}
		}

		s.logger.Info().Str("userId", userID).Str("badge", def.Name).Msg("badge awarded")
		metrics.BadgesAwardedTotal.Inc()
		awarded = append(awarded, def)

		go s.notifyBadgeEarned(userID, def, award.ID)
	}

	return awarded
}

// meetsRequirement evaluates one requirement against the aggregate. Unknown
// requirement types coming from externally curated definitions never match.
func (s *BadgeService) meetsRequirement(req models.BadgeRequirement, aggregate *models.UserPointsAggregate) bool {
	switch req.Type {
	case models.RequirementArticlesRead:
		return aggregate.Stats.ArticlesRead >= req.Value
	case models.RequirementArticlesLiked:
		return aggregate.Stats.ArticlesLiked >= req.Value
	case models.RequirementCommentsPosted:
		return aggregate.Stats.CommentsPosted >= req.Value
	case models.RequirementCommentsLiked:
		return aggregate.Stats.CommentsLiked >= req.Value
	case models.RequirementShares:
		return aggregate.Stats.SharesCompleted >= req.Value
	case models.RequirementStreakDays:
		return aggregate.Streak.Longest >= req.Value
	case models.RequirementTotalPoints:
		return aggregate.LifetimePoints >= req.Value
	case models.RequirementDailyLogins:
		return aggregate.Stats.DailyLogins >= req.Value
	case models.RequirementLevel:
		return aggregate.Level >= req.Value
	case models.RequirementCategoryArticles:
		return aggregate.CategoryStats[req.Category] >= req.Value
	case models.RequirementReferrals:
		return aggregate.Stats.Referrals >= req.Value
	default:
		s.logger.Warn().Str("type", string(req.Type)).Msg("unknown badge requirement type")
		return false
	}
}

// notifyBadgeEarned dispatches the push notification, records the in-app
// notification and flags the award as notified. All of it is fire-and-forget.
func (s *BadgeService) notifyBadgeEarned(userID string, def *models.BadgeDefinition, awardID primitive.ObjectID) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("userId", userID).Msg("badge notification panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	title := "Badge earned!"
	body := fmt.Sprintf("You earned the %q badge.", def.Name)
	data := map[string]interface{}{
		"type":    "badge_earned",
		"badgeId": def.ID.Hex(),
	}

	if s.notificationRepo != nil {
		notification := &models.Notification{
			UserID: userID,
			Title:  title,
			Body:   body,
			Type:   "badge_earned",
			Data:   data,
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			s.logger.Warn().Err(err).Str("userId", userID).Str("badge", def.Name).
				Msg("failed to create in-app notification")
		}
	}

	if s.pushGateway != nil {
		err := s.pushGateway.SendToUser(userID, push.Notification{Title: title, Body: body, Data: data})
		if err != nil {
			s.logger.Warn().Err(err).Str("userId", userID).Str("badge", def.Name).
				Msg("failed to dispatch badge push notification")
			return
		}
	}

	if err := s.userBadgeRepo.MarkNotified(ctx, awardID); err != nil {
		s.logger.Warn().Err(err).Str("userId", userID).Str("badge", def.Name).
			Msg("failed to mark badge award notified")
	}
}
