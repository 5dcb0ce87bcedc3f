package ports

import (
	"context"

	"github.com/tradelink/marketplace/internal/core/domain"
)

// RatingRepository is an append-only rating ledger.
type RatingRepository interface {
	Create(ctx context.Context, rating *domain.Rating) (*domain.Rating, error)
	// ListByReceiver returns an empty slice when the user has no ratings.
	ListByReceiver(ctx context.Context, receiverID string) ([]domain.Rating, error)
}
