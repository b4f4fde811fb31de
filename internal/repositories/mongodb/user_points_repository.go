package mongodb

import (
	"context"
	"time"

	"github.com/tidesmedia/newsreach-backend/internal/models"
	"github.com/tidesmedia/newsreach-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure UserPointsRepository implements the interface
var _ repositories.UserPointsRepository = (*UserPointsRepository)(nil)

// UserPointsRepository handles MongoDB operations for UserPointsAggregate
type UserPointsRepository struct {
	collection *mongo.Collection
}

// NewUserPointsRepository creates a new UserPointsRepository
func NewUserPointsRepository(db *mongo.Database) *UserPointsRepository {
	return &UserPointsRepository{
		collection: db.Collection("user_points"),
	}
}

// GetOrCreate returns the aggregate for userID, lazily inserting a zero-value
// document. The $setOnInsert upsert makes concurrent first-touch requests
// converge on a single document instead of racing a find-then-insert.
func (r *UserPointsRepository) GetOrCreate(ctx context.Context, userID string) (*models.UserPointsAggregate, error) {
	now := time.Now()
	filter := bson.M{"userId": userID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"userId":         userID,
			"totalPoints":    0,
			"lifetimePoints": 0,
			"level":          1,
			"streak":         bson.M{"current": 0, "longest": 0},
			"stats":          models.Stats{},
			"createdAt":      now,
			"updatedAt":      now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var aggregate models.UserPointsAggregate
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&aggregate); err != nil {
		return nil, err
	}
	return &aggregate, nil
}

// Update replaces the aggregate document for its userId
func (r *UserPointsRepository) Update(ctx context.Context, aggregate *models.UserPointsAggregate) error {
	aggregate.UpdatedAt = time.Now()
	filter := bson.M{"userId": aggregate.UserID}
	_, err := r.collection.ReplaceOne(ctx, filter, aggregate)
	return err
}

// IncrementPoints atomically adds points to totalPoints and lifetimePoints.
// Used for badge bonus points so concurrent evaluators never lose an update.
func (r *UserPointsRepository) IncrementPoints(ctx context.Context, userID string, points int) error {
	filter := bson.M{"userId": userID}
	update := bson.M{
		"$inc": bson.M{"totalPoints": points, "lifetimePoints": points},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

// Count gets the total number of aggregates
func (r *UserPointsRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
