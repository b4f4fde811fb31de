package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserPointsAggregate is the per-user rollup of points, level, streak and
// stat counters. It is the source of truth for current derived state; the
// point_transactions collection is the audit trail behind it.
type UserPointsAggregate struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID         string             `bson:"userId" json:"userId"`
	TotalPoints    int                `bson:"totalPoints" json:"totalPoints"`
	LifetimePoints int                `bson:"lifetimePoints" json:"lifetimePoints"`
	Level          int                `bson:"level" json:"level"`
	Streak         Streak             `bson:"streak" json:"streak"`
	Stats          Stats              `bson:"stats" json:"stats"`
	CategoryStats  map[string]int     `bson:"categoryStats,omitempty" json:"categoryStats,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Streak tracks consecutive-day activity. Longest never decreases; Current
// resets to 1 when the grace window is missed.
type Streak struct {
	Current          int       `bson:"current" json:"current"`
	Longest          int       `bson:"longest" json:"longest"`
	LastActivityDate time.Time `bson:"lastActivityDate,omitempty" json:"lastActivityDate,omitempty"`
}

// Stats holds the monotonically non-decreasing activity counters that badge
// requirements are evaluated against.
type Stats struct {
	ArticlesRead    int `bson:"articlesRead" json:"articlesRead"`
	ArticlesLiked   int `bson:"articlesLiked" json:"articlesLiked"`
	CommentsPosted  int `bson:"commentsPosted" json:"commentsPosted"`
	CommentsLiked   int `bson:"commentsLiked" json:"commentsLiked"`
	SharesCompleted int `bson:"sharesCompleted" json:"sharesCompleted"`
	ReelsWatched    int `bson:"reelsWatched" json:"reelsWatched"`
	Referrals       int `bson:"referrals" json:"referrals"`
	DailyLogins     int `bson:"dailyLogins" json:"dailyLogins"`
}
