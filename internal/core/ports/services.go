package ports

import (
	"context"
	"time"

	"github.com/tradelink/marketplace/internal/core/domain"
)

// RegisterInput carries the data needed to open an account.
type RegisterInput struct {
	FirstName      string
	LastName       string
	Email          string
	Password       string
	Role           string
	ServiceOffered string
}

// AccountService handles registration, login and session teardown.
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, Session, error)
	Login(ctx context.Context, email, password string) (Session, *domain.User, error)
	Logout(ctx context.Context, credential string) error
	Validate(ctx context.Context, email string) error
}

// CreateListingInput carries the fields of a new listing.
type CreateListingInput struct {
	Title           string
	Description     string
	ServiceRequired string
	Location        string
}

// ListingService exposes role-scoped listing reads and creation.
type ListingService interface {
	List(ctx context.Context, user *domain.User) ([]domain.Listing, error)
	Create(ctx context.Context, user *domain.User, input CreateListingInput) (*domain.Listing, error)
}

// SubmitQuoteInput carries a sole trader's offer on a listing.
type SubmitQuoteInput struct {
	ListingID   string
	Description string
	Price       float64
	Date        time.Time
}

// QuoteService exposes the quote lifecycle.
type QuoteService interface {
	List(ctx context.Context, user *domain.User) ([]domain.Quote, error)
	Get(ctx context.Context, user *domain.User, quoteID string) (*domain.Quote, error)
	Submit(ctx context.Context, user *domain.User, input SubmitQuoteInput) (*domain.Quote, error)
	Accept(ctx context.Context, user *domain.User, quoteID string) (*domain.Quote, error)
	Reject(ctx context.Context, user *domain.User, quoteID string) (*domain.Quote, error)
}

// SubmitRatingInput carries a peer rating.
type SubmitRatingInput struct {
	ReceiverID  string
	Value       int
	Description string
}

// RatingSummary is a user's received ratings with aggregates.
type RatingSummary struct {
	Ratings []domain.Rating
	Count   int
	Average float64
}

// RatingService exposes the rating ledger.
type RatingService interface {
	Submit(ctx context.Context, sender *domain.User, input SubmitRatingInput) (*domain.Rating, error)
	ForUser(ctx context.Context, user *domain.User) (*RatingSummary, error)
}

// UserService exposes the role-scoped user directory.
type UserService interface {
	List(ctx context.Context, user *domain.User, service string) ([]domain.User, error)
	Profile(ctx context.Context, user *domain.User) (*domain.User, error)
}
