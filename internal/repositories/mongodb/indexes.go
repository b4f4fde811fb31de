package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// pointTransactionTTL controls how long ledger entries are retained before
// MongoDB expires them. The aggregate keeps the derived totals, so expired
// entries only reduce audit depth.
const pointTransactionTTL = 180 * 24 * time.Hour

// EnsureIndexes creates the indexes the engine relies on. The unique indexes
// are load-bearing: GetOrCreate depends on the userId index to collapse
// concurrent upserts, and badge idempotency depends on (userId, badgeId).
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("user_points").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("point_transactions").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "action", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(pointTransactionTTL.Seconds())),
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("user_badges").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "badgeId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("notifications").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}
