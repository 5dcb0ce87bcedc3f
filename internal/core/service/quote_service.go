package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradelink/marketplace/internal/core/domain"
	"github.com/tradelink/marketplace/internal/core/ports"
	"github.com/tradelink/marketplace/internal/infrastructure/metrics"
)

// QuoteService drives the quote lifecycle: pending → accepted | rejected.
// Accepting a quote completes its listing in the same transaction.
type QuoteService struct {
	quotes   ports.QuoteRepository
	listings ports.ListingRepository
	policy   *Policy
	activity ports.ActivityRecorder
	logger   zerolog.Logger
}

func NewQuoteService(
	quotes ports.QuoteRepository,
	listings ports.ListingRepository,
	policy *Policy,
	activity ports.ActivityRecorder,
	logger zerolog.Logger,
) *QuoteService {
	return &QuoteService{
		quotes:   quotes,
		listings: listings,
		policy:   policy,
		activity: activity,
		logger:   logger,
	}
}

// List returns quotes on the customer's listings, the sole trader's own
// quotes, or every quote for admins.
func (s *QuoteService) List(ctx context.Context, user *domain.User) ([]domain.Quote, error) {
	scope, err := s.policy.Authorize(user, domain.OpListQuotes)
	if err != nil {
		return nil, err
	}

	switch {
	case scope.All:
		return s.quotes.List(ctx, ports.QuoteFilter{})
	case scope.SoleTraderID != "":
		return s.quotes.List(ctx, ports.QuoteFilter{SoleTraderID: scope.SoleTraderID})
	default:
		return s.quotes.List(ctx, ports.QuoteFilter{CustomerID: scope.CustomerID})
	}
}

// Get returns a single quote if it exists and falls inside the caller's scope.
func (s *QuoteService) Get(ctx context.Context, user *domain.User, quoteID string) (*domain.Quote, error) {
	scope, err := s.policy.Authorize(user, domain.OpViewQuote)
	if err != nil {
		return nil, err
	}

	quote, err := s.quotes.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if !scope.PermitsQuote(quote) {
		return nil, domain.ErrForbidden
	}
	return quote, nil
}

// Submit records a sole trader's offer on an active listing in their service.
func (s *QuoteService) Submit(ctx context.Context, user *domain.User, in ports.SubmitQuoteInput) (*domain.Quote, error) {
	scope, err := s.policy.Authorize(user, domain.OpSubmitQuote)
	if err != nil {
		return nil, err
	}

	if in.ListingID == "" {
		return nil, domain.NewValidationError("listingId", "is required")
	}
	if in.Price < 0 {
		return nil, domain.NewValidationError("price", "must not be negative")
	}

	listing, err := s.listings.FindByID(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != domain.ListingActive {
		return nil, domain.ListingClosed(listing.ID)
	}
	if listing.ServiceRequired != scope.Service {
		return nil, fmt.Errorf("%w: listing requires %q", domain.ErrForbidden, listing.ServiceRequired)
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	created, err := s.quotes.Create(ctx, &domain.Quote{
		ListingID:    listing.ID,
		CustomerID:   listing.CustomerID,
		SoleTraderID: scope.SoleTraderID,
		Description:  in.Description,
		Price:        in.Price,
		Date:         date.UTC(),
		Status:       domain.QuotePending,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	metrics.QuotesSubmittedTotal.Inc()
	s.activity.Record(domain.Activity{
		Type:        domain.ActivityQuoteSubmitted,
		ActorID:     user.ID,
		SubjectID:   listing.ID,
		Description: created.ID,
	})
	s.logger.Info().
		Str("quote_id", created.ID).
		Str("listing_id", listing.ID).
		Str("sole_trader_id", user.ID).
		Msg("quote submitted")

	return created, nil
}

// Accept accepts the quote and completes its listing. Only the listing's
// customer may accept; the repository performs both writes atomically.
func (s *QuoteService) Accept(ctx context.Context, user *domain.User, quoteID string) (*domain.Quote, error) {
	quote, err := s.decide(ctx, user, quoteID)
	if err != nil {
		observeTransition("accept", err)
		return nil, err
	}

	accepted, err := s.quotes.AcceptAndCompleteListing(ctx, quote.ID)
	observeTransition("accept", err)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.logger.Warn().Err(err).Str("quote_id", quote.ID).Str("listing_id", quote.ListingID).Msg("accept rejected")
		}
		return nil, err
	}

	s.activity.Record(domain.Activity{
		Type:        domain.ActivityQuoteAccepted,
		ActorID:     user.ID,
		SubjectID:   accepted.ListingID,
		Description: accepted.ID,
	})
	s.logger.Info().
		Str("quote_id", accepted.ID).
		Str("listing_id", accepted.ListingID).
		Str("user_id", user.ID).
		Msg("quote accepted, listing completed")

	return accepted, nil
}

// Reject rejects a pending quote. The listing is left untouched.
func (s *QuoteService) Reject(ctx context.Context, user *domain.User, quoteID string) (*domain.Quote, error) {
	quote, err := s.decide(ctx, user, quoteID)
	if err != nil {
		observeTransition("reject", err)
		return nil, err
	}

	rejected, err := s.quotes.Reject(ctx, quote.ID)
	observeTransition("reject", err)
	if err != nil {
		return nil, err
	}

	s.activity.Record(domain.Activity{
		Type:        domain.ActivityQuoteRejected,
		ActorID:     user.ID,
		SubjectID:   rejected.ListingID,
		Description: rejected.ID,
	})
	s.logger.Info().Str("quote_id", rejected.ID).Str("user_id", user.ID).Msg("quote rejected")

	return rejected, nil
}

// decide runs the checks shared by accept and reject: the role must be allowed
// to decide quotes at all, the quote must exist, and the caller must own the
// listing it was made on.
func (s *QuoteService) decide(ctx context.Context, user *domain.User, quoteID string) (*domain.Quote, error) {
	scope, err := s.policy.Authorize(user, domain.OpDecideQuote)
	if err != nil {
		return nil, err
	}

	quote, err := s.quotes.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.CustomerID != scope.CustomerID {
		return nil, domain.ErrForbidden
	}
	return quote, nil
}

func observeTransition(transition string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrConflict):
		result = "conflict"
	case errors.Is(err, domain.ErrQuoteNotFound):
		result = "not_found"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUnauthenticated):
		result = "forbidden"
	default:
		result = "error"
	}
	metrics.QuoteTransitionsTotal.WithLabelValues(transition, result).Inc()
}
