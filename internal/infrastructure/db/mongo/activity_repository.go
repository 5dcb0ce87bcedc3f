package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tradelink/marketplace/internal/core/domain"
)

// ActivityRepository writes the audit trail of lifecycle mutations.
type ActivityRepository struct {
	db *mongo.Database
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Insert persists an activity entry to the activity_log collection.
func (r *ActivityRepository) Insert(ctx context.Context, a *domain.Activity) error {
	doc := bson.M{
		"type":        string(a.Type),
		"actor_id":    a.ActorID,
		"subject_id":  a.SubjectID,
		"description": a.Description,
		"created_at":  a.CreatedAt.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if a.ID != "" {
		doc["activity_id"] = a.ID
	}

	_, err := r.db.Collection(collectionActivity).InsertOne(ctx, doc)
	return err
}
