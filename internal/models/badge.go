package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequirementType is the closed set of stats a badge can gate on. Unknown
// values coming from externally curated definitions never match.
type RequirementType string

const (
	RequirementArticlesRead     RequirementType = "articles_read"
	RequirementArticlesLiked    RequirementType = "articles_liked"
	RequirementCommentsPosted   RequirementType = "comments_posted"
	RequirementCommentsLiked    RequirementType = "comments_liked"
	RequirementShares           RequirementType = "shares"
	RequirementStreakDays       RequirementType = "streak_days"
	RequirementTotalPoints      RequirementType = "total_points"
	RequirementDailyLogins      RequirementType = "daily_logins"
	RequirementLevel            RequirementType = "level"
	RequirementCategoryArticles RequirementType = "category_articles"
	RequirementReferrals        RequirementType = "referrals"
)

// BadgeRequirement is the threshold a user's aggregate must cross.
// Category is only set for category_articles requirements.
type BadgeRequirement struct {
	Type     RequirementType `bson:"type" json:"type"`
	Value    int             `bson:"value" json:"value"`
	Category string          `bson:"category,omitempty" json:"category,omitempty"`
}

// BadgeDefinition is an externally curated, read-mostly achievement.
type BadgeDefinition struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	Icon          string             `bson:"icon,omitempty" json:"icon,omitempty"`
	Requirement   BadgeRequirement   `bson:"requirement" json:"requirement"`
	PointsAwarded int                `bson:"pointsAwarded" json:"pointsAwarded"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserBadgeAward records that a badge was granted to a user. At most one
// exists per (userId, badgeId), enforced by a unique index. A badge once
// earned is never revoked.
type UserBadgeAward struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      string             `bson:"userId" json:"userId"`
	BadgeID     primitive.ObjectID `bson:"badgeId" json:"badgeId"`
	EarnedAt    time.Time          `bson:"earnedAt" json:"earnedAt"`
	Notified    bool               `bson:"notified" json:"notified"`
	IsDisplayed bool               `bson:"isDisplayed" json:"isDisplayed"`
}
