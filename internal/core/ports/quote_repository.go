package ports

import (
	"context"

	"github.com/tradelink/marketplace/internal/core/domain"
)

// QuoteFilter narrows a quote query. Empty fields impose no restriction.
type QuoteFilter struct {
	ListingID    string
	CustomerID   string
	SoleTraderID string
	Status       domain.QuoteStatus
}

// QuoteRepository persists quotes and owns the coupled accept transition.
type QuoteRepository interface {
	Create(ctx context.Context, quote *domain.Quote) (*domain.Quote, error)
	FindByID(ctx context.Context, id string) (*domain.Quote, error)
	List(ctx context.Context, filter QuoteFilter) ([]domain.Quote, error)

	// AcceptAndCompleteListing sets the quote to accepted and its listing to
	// complete as one atomic unit. A missing quote yields
	// domain.ErrQuoteNotFound before anything is written; a quote that is not
	// pending, or a listing that is no longer active, yields domain.ErrConflict
	// and leaves both documents untouched.
	AcceptAndCompleteListing(ctx context.Context, quoteID string) (*domain.Quote, error)

	// Reject sets a pending quote to rejected. Rejecting a rejected quote is
	// a no-op; rejecting an accepted quote yields domain.ErrConflict.
	Reject(ctx context.Context, quoteID string) (*domain.Quote, error)

	// ExistsAccepted reports whether an accepted quote links the customer and
	// the sole trader.
	ExistsAccepted(ctx context.Context, customerID, soleTraderID string) (bool, error)
}
