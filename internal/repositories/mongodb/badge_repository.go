package mongodb

import (
	"context"
	"time"

	"github.com/tidesmedia/newsreach-backend/internal/models"
	"github.com/tidesmedia/newsreach-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure BadgeRepository implements the interface
var _ repositories.BadgeRepository = (*BadgeRepository)(nil)

// BadgeRepository handles MongoDB operations for BadgeDefinition
type BadgeRepository struct {
	collection *mongo.Collection
}

// NewBadgeRepository creates a new BadgeRepository
func NewBadgeRepository(db *mongo.Database) *BadgeRepository {
	return &BadgeRepository{
		collection: db.Collection("badges"),
	}
}

// Create inserts a new badge definition
func (r *BadgeRepository) Create(ctx context.Context, badge *models.BadgeDefinition) error {
	badge.ID = primitive.NewObjectID()
	badge.CreatedAt = time.Now()
	badge.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, badge)
	return err
}

// FindByID finds a badge definition by ID
func (r *BadgeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.BadgeDefinition, error) {
	var badge models.BadgeDefinition
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&badge); err != nil {
		return nil, err
	}
	return &badge, nil
}

// FindActive finds all active badge definitions
func (r *BadgeRepository) FindActive(ctx context.Context) ([]*models.BadgeDefinition, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var badges []*models.BadgeDefinition
	if err = cursor.All(ctx, &badges); err != nil {
		return nil, err
	}
	if badges == nil {
		badges = []*models.BadgeDefinition{}
	}
	return badges, nil
}

// Update updates a badge definition
func (r *BadgeRepository) Update(ctx context.Context, badge *models.BadgeDefinition) error {
	badge.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": badge.ID}, badge)
	return err
}
