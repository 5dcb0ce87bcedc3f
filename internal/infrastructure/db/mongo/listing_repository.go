package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tradelink/marketplace/internal/core/domain"
	"github.com/tradelink/marketplace/internal/core/ports"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(collectionListings)}
}

type listingDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	CustomerID      string             `bson:"customer_id"`
	Title           string             `bson:"title"`
	Description     string             `bson:"description"`
	ServiceRequired string             `bson:"service_required"`
	Status          string             `bson:"status"`
	Location        string             `bson:"location"`
	CreatedAt       time.Time          `bson:"created_at"`
}

func (d listingDoc) toDomain() domain.Listing {
	return domain.Listing{
		ID:              d.ID.Hex(),
		CustomerID:      d.CustomerID,
		Title:           d.Title,
		Description:     d.Description,
		ServiceRequired: d.ServiceRequired,
		Status:          domain.ListingStatus(d.Status),
		Location:        d.Location,
		CreatedAt:       d.CreatedAt.UTC(),
	}
}

// Create inserts a new listing document.
func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) (*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, listingDoc{
		CustomerID:      l.CustomerID,
		Title:           l.Title,
		Description:     l.Description,
		ServiceRequired: l.ServiceRequired,
		Status:          string(l.Status),
		Location:        l.Location,
		CreatedAt:       l.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}

	created := *l
	created.ID = insertedHex(res)
	return &created, nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrListingNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc listingDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	l := doc.toDomain()
	return &l, nil
}

func (r *ListingRepository) List(ctx context.Context, f ports.ListingFilter) ([]domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.CustomerID != "" {
		filter["customer_id"] = f.CustomerID
	}
	if f.ServiceRequired != "" {
		filter["service_required"] = f.ServiceRequired
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer cur.Close(ctx)

	var docs []listingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	out := make([]domain.Listing, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Complete flips an active listing to complete with a conditional update, so
// concurrent callers cannot both observe a transition. When ctx carries a
// session the write joins its transaction.
func (r *ListingRepository) Complete(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, domain.ErrListingNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(domain.ListingActive)},
		bson.M{"$set": bson.M{"status": string(domain.ListingComplete)}},
	)
	if err != nil {
		return false, fmt.Errorf("complete listing: %w", err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}

	found, err := r.exists(ctx, oid)
	if err != nil {
		return false, fmt.Errorf("complete listing: %w", err)
	}
	if !found {
		return false, domain.ErrListingNotFound
	}
	return false, nil
}

// holdActive bumps quote_count on an active listing. Run inside a
// transaction it write-locks the listing document, so a concurrent accept
// that completes the listing conflicts with the caller instead of
// interleaving with it.
func (r *ListingRepository) holdActive(ctx context.Context, id string) (*listingDoc, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrListingNotFound
	}

	var doc listingDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": string(domain.ListingActive)},
		bson.M{"$inc": bson.M{"quote_count": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return &doc, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("hold listing: %w", err)
	}

	found, err := r.exists(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("hold listing: %w", err)
	}
	if !found {
		return nil, domain.ErrListingNotFound
	}
	return nil, domain.ListingClosed(id)
}

func (r *ListingRepository) exists(ctx context.Context, oid primitive.ObjectID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// EnsureIndexes creates necessary indexes on the listings collection.
func (r *ListingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer_id", Value: 1}}},
		{Keys: bson.D{{Key: "service_required", Value: 1}, {Key: "status", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
