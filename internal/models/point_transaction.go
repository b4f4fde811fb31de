package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PointTransaction is one immutable ledger entry. Points are positive for
// awards and negative for redemptions; the per-user sum reconciles with
// UserPointsAggregate.TotalPoints.
type PointTransaction struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string                 `bson:"userId" json:"userId"`
	Points    int                    `bson:"points" json:"points"`
	Action    string                 `bson:"action" json:"action"`
	Metadata  map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
}
