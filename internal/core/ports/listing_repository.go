package ports

import (
	"context"

	"github.com/tradelink/marketplace/internal/core/domain"
)

// ListingFilter narrows a listing query. Empty fields impose no restriction.
type ListingFilter struct {
	CustomerID      string
	ServiceRequired string
	Status          domain.ListingStatus
}

// ListingRepository persists listings.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error)
	FindByID(ctx context.Context, id string) (*domain.Listing, error)
	// List always returns a non-nil slice; no matches is not an error.
	List(ctx context.Context, filter ListingFilter) ([]domain.Listing, error)
	// Complete moves an active listing to complete. It reports whether this
	// call performed the transition; completing an already complete listing
	// returns (false, nil).
	Complete(ctx context.Context, id string) (bool, error)
}
