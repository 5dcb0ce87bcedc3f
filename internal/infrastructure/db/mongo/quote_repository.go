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

// QuoteRepository implements ports.QuoteRepository. The accept transition
// spans the quotes and listings collections and runs in a transaction.
type QuoteRepository struct {
	client   *mongo.Client
	col      *mongo.Collection
	listings *ListingRepository
}

func NewQuoteRepository(client *mongo.Client, db *mongo.Database, listings *ListingRepository) *QuoteRepository {
	return &QuoteRepository{
		client:   client,
		col:      db.Collection(collectionQuotes),
		listings: listings,
	}
}

type quoteDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	ListingID    string             `bson:"listing_id"`
	CustomerID   string             `bson:"customer_id"`
	SoleTraderID string             `bson:"sole_trader_id"`
	Description  string             `bson:"description"`
	Price        float64            `bson:"price"`
	Date         time.Time          `bson:"date"`
	Status       string             `bson:"status"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d quoteDoc) toDomain() domain.Quote {
	return domain.Quote{
		ID:           d.ID.Hex(),
		ListingID:    d.ListingID,
		CustomerID:   d.CustomerID,
		SoleTraderID: d.SoleTraderID,
		Description:  d.Description,
		Price:        d.Price,
		Date:         d.Date.UTC(),
		Status:       domain.QuoteStatus(d.Status),
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

// Create inserts a pending quote. The listing is re-checked inside the same
// transaction as the insert, so a quote cannot land on a listing that an
// accept completed after the service looked at it.
func (r *QuoteRepository) Create(ctx context.Context, q *domain.Quote) (*domain.Quote, error) {
	sess, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	result, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		listing, err := r.listings.holdActive(sc, q.ListingID)
		if err != nil {
			return nil, err
		}

		res, err := r.col.InsertOne(sc, quoteDoc{
			ListingID:    q.ListingID,
			CustomerID:   listing.CustomerID,
			SoleTraderID: q.SoleTraderID,
			Description:  q.Description,
			Price:        q.Price,
			Date:         q.Date,
			Status:       string(q.Status),
			CreatedAt:    q.CreatedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("insert quote: %w", err)
		}

		created := *q
		created.ID = insertedHex(res)
		created.CustomerID = listing.CustomerID
		return &created, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Quote), nil
}

func (r *QuoteRepository) FindByID(ctx context.Context, id string) (*domain.Quote, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrQuoteNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := r.findDoc(ctx, oid)
	if err != nil {
		return nil, err
	}
	q := doc.toDomain()
	return &q, nil
}

func (r *QuoteRepository) findDoc(ctx context.Context, oid primitive.ObjectID) (*quoteDoc, error) {
	var doc quoteDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *QuoteRepository) List(ctx context.Context, f ports.QuoteFilter) ([]domain.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.ListingID != "" {
		filter["listing_id"] = f.ListingID
	}
	if f.CustomerID != "" {
		filter["customer_id"] = f.CustomerID
	}
	if f.SoleTraderID != "" {
		filter["sole_trader_id"] = f.SoleTraderID
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer cur.Close(ctx)

	var docs []quoteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode quotes: %w", err)
	}
	out := make([]domain.Quote, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// AcceptAndCompleteListing moves the quote to accepted and its listing to
// complete inside one transaction. Both updates are conditional on the prior
// status, so a concurrent accept either hits a write conflict and is retried
// by the driver, or matches nothing and aborts with domain.ErrConflict.
func (r *QuoteRepository) AcceptAndCompleteListing(ctx context.Context, quoteID string) (*domain.Quote, error) {
	oid, ok := objectID(quoteID)
	if !ok {
		return nil, domain.ErrQuoteNotFound
	}

	sess, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	result, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		doc, err := r.findDoc(sc, oid)
		if err != nil {
			return nil, err
		}
		current := domain.QuoteStatus(doc.Status)
		if !current.CanTransitionTo(domain.QuoteAccepted) {
			return nil, domain.QuoteTransitionConflict(quoteID, current, domain.QuoteAccepted)
		}

		res, err := r.col.UpdateOne(sc,
			bson.M{"_id": oid, "status": string(domain.QuotePending)},
			bson.M{"$set": bson.M{"status": string(domain.QuoteAccepted)}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, domain.QuoteTransitionConflict(quoteID, current, domain.QuoteAccepted)
		}

		completed, err := r.listings.Complete(sc, doc.ListingID)
		if err != nil {
			return nil, err
		}
		if !completed {
			return nil, domain.ListingClosed(doc.ListingID)
		}

		doc.Status = string(domain.QuoteAccepted)
		q := doc.toDomain()
		return &q, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Quote), nil
}

// Reject moves a pending quote to rejected. A quote that is already rejected
// is returned unchanged.
func (r *QuoteRepository) Reject(ctx context.Context, quoteID string) (*domain.Quote, error) {
	oid, ok := objectID(quoteID)
	if !ok {
		return nil, domain.ErrQuoteNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc quoteDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": string(domain.QuotePending)},
		bson.M{"$set": bson.M{"status": string(domain.QuoteRejected)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		q := doc.toDomain()
		return &q, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("reject quote: %w", err)
	}

	existing, err := r.findDoc(ctx, oid)
	if err != nil {
		return nil, err
	}
	current := domain.QuoteStatus(existing.Status)
	if current == domain.QuoteRejected {
		q := existing.toDomain()
		return &q, nil
	}
	return nil, domain.QuoteTransitionConflict(quoteID, current, domain.QuoteRejected)
}

func (r *QuoteRepository) ExistsAccepted(ctx context.Context, customerID, soleTraderID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{
		"customer_id":    customerID,
		"sole_trader_id": soleTraderID,
		"status":         string(domain.QuoteAccepted),
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count accepted quotes: %w", err)
	}
	return n > 0, nil
}

// EnsureIndexes creates necessary indexes on the quotes collection.
func (r *QuoteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_id", Value: 1}}},
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "sole_trader_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "sole_trader_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
