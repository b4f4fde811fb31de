package mongodb

import (
	"context"
	"time"

	"github.com/tidesmedia/newsreach-backend/internal/models"
	"github.com/tidesmedia/newsreach-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure UserBadgeRepository implements the interface
var _ repositories.UserBadgeRepository = (*UserBadgeRepository)(nil)

// UserBadgeRepository handles MongoDB operations for UserBadgeAward
type UserBadgeRepository struct {
	collection *mongo.Collection
}

// NewUserBadgeRepository creates a new UserBadgeRepository
func NewUserBadgeRepository(db *mongo.Database) *UserBadgeRepository {
	return &UserBadgeRepository{
		collection: db.Collection("user_badges"),
	}
}

// Create inserts the award as a conditional insert against the unique
// (userId, badgeId) index. A duplicate-key error means another evaluation
// pass won the race; that is reported as created=false, not as an error.
func (r *UserBadgeRepository) Create(ctx context.Context, award *models.UserBadgeAward) (bool, error) {
	award.ID = primitive.NewObjectID()
	if award.EarnedAt.IsZero() {
		award.EarnedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, award)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FindByUserID finds all badge awards for a user, newest first
func (r *UserBadgeRepository) FindByUserID(ctx context.Context, userID string) ([]*models.UserBadgeAward, error) {
	filter := bson.M{"userId": userID}
	findOptions := options.Find().SetSort(bson.D{{Key: "earnedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var awards []*models.UserBadgeAward
	if err = cursor.All(ctx, &awards); err != nil {
		return nil, err
	}
	if awards == nil {
		awards = []*models.UserBadgeAward{}
	}
	return awards, nil
}

// MarkNotified flags the award as having had its push notification dispatched
func (r *UserBadgeRepository) MarkNotified(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"notified": true}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// SetDisplayed toggles whether the user shows this badge on their profile
func (r *UserBadgeRepository) SetDisplayed(ctx context.Context, id primitive.ObjectID, displayed bool) error {
	update := bson.M{"$set": bson.M{"isDisplayed": displayed}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}
