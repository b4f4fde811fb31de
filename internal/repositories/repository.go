package repositories

import (
	"context"

	"github.com/tidesmedia/newsreach-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserPointsRepository defines the interface for user points aggregate operations
type UserPointsRepository interface {
	// GetOrCreate returns the aggregate for userID, inserting a zero-value
	// document atomically if none exists yet.
	GetOrCreate(ctx context.Context, userID string) (*models.UserPointsAggregate, error)
	Update(ctx context.Context, aggregate *models.UserPointsAggregate) error
	// IncrementPoints atomically adds points to both totalPoints and
	// lifetimePoints without a read-modify-write cycle.
	IncrementPoints(ctx context.Context, userID string, points int) error
	Count(ctx context.Context) (int64, error)
}

// PointTransactionRepository defines the interface for the append-only ledger
type PointTransactionRepository interface {
	Create(ctx context.Context, transaction *models.PointTransaction) error
	FindByUserID(ctx context.Context, userID string, page, limit int) ([]*models.PointTransaction, error)
}

// BadgeRepository defines the interface for badge definition operations
type BadgeRepository interface {
	Create(ctx context.Context, badge *models.BadgeDefinition) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.BadgeDefinition, error)
	FindActive(ctx context.Context) ([]*models.BadgeDefinition, error)
	Update(ctx context.Context, badge *models.BadgeDefinition) error
}

// UserBadgeRepository defines the interface for user badge award operations
type UserBadgeRepository interface {
	// Create inserts the award and reports whether it was actually created.
	// A duplicate (userId, badgeId) pair is not an error; it returns false.
	Create(ctx context.Context, award *models.UserBadgeAward) (bool, error)
	FindByUserID(ctx context.Context, userID string) ([]*models.UserBadgeAward, error)
	MarkNotified(ctx context.Context, id primitive.ObjectID) error
	SetDisplayed(ctx context.Context, id primitive.ObjectID, displayed bool) error
}

// NotificationRepository defines the interface for in-app notification operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID string) error
}
