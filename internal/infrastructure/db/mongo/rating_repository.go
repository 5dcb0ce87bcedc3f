package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tradelink/marketplace/internal/core/domain"
)

type RatingRepository struct {
	col *mongo.Collection
}

func NewRatingRepository(db *mongo.Database) *RatingRepository {
	return &RatingRepository{col: db.Collection(collectionRatings)}
}

type ratingDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ReceiverID  string             `bson:"receiver_id"`
	SenderID    string             `bson:"sender_id"`
	Rating      int                `bson:"rating"`
	Description string             `bson:"description,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}

// Create appends a rating. Ratings are never updated or deleted.
func (r *RatingRepository) Create(ctx context.Context, rt *domain.Rating) (*domain.Rating, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, ratingDoc{
		ReceiverID:  rt.ReceiverID,
		SenderID:    rt.SenderID,
		Rating:      rt.Value,
		Description: rt.Description,
		CreatedAt:   rt.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("insert rating: %w", err)
	}

	created := *rt
	created.ID = insertedHex(res)
	return &created, nil
}

func (r *RatingRepository) ListByReceiver(ctx context.Context, receiverID string) ([]domain.Rating, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"receiver_id": receiverID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer cur.Close(ctx)

	var docs []ratingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode ratings: %w", err)
	}
	out := make([]domain.Rating, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Rating{
			ID:          d.ID.Hex(),
			ReceiverID:  d.ReceiverID,
			SenderID:    d.SenderID,
			Value:       d.Rating,
			Description: d.Description,
			CreatedAt:   d.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func (r *RatingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "receiver_id", Value: 1}},
	})
	return err
}
