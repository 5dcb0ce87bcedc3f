package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradelink/marketplace/internal/core/domain"
	"github.com/tradelink/marketplace/internal/core/ports"
	"github.com/tradelink/marketplace/internal/infrastructure/metrics"
)

// ListingService serves role-scoped listing reads and listing creation.
// Completion only happens through the quote accept path.
type ListingService struct {
	listings ports.ListingRepository
	policy   *Policy
	activity ports.ActivityRecorder
	logger   zerolog.Logger
}

func NewListingService(listings ports.ListingRepository, policy *Policy, activity ports.ActivityRecorder, logger zerolog.Logger) *ListingService {
	return &ListingService{listings: listings, policy: policy, activity: activity, logger: logger}
}

// List returns the listings visible to user: own listings for customers,
// active listings in their own service for sole traders, everything for
// admins. No matches yields an empty slice.
func (s *ListingService) List(ctx context.Context, user *domain.User) ([]domain.Listing, error) {
	scope, err := s.policy.Authorize(user, domain.OpListListings)
	if err != nil {
		return nil, err
	}

	switch {
	case scope.All:
		return s.listAll(ctx)
	case scope.ActiveOnly:
		return s.listActive(ctx, scope.Service)
	default:
		return s.listForCustomer(ctx, scope.CustomerID)
	}
}

func (s *ListingService) listActive(ctx context.Context, serviceType string) ([]domain.Listing, error) {
	return s.listings.List(ctx, ports.ListingFilter{
		ServiceRequired: serviceType,
		Status:          domain.ListingActive,
	})
}

func (s *ListingService) listForCustomer(ctx context.Context, customerID string) ([]domain.Listing, error) {
	return s.listings.List(ctx, ports.ListingFilter{CustomerID: customerID})
}

func (s *ListingService) listAll(ctx context.Context) ([]domain.Listing, error) {
	return s.listings.List(ctx, ports.ListingFilter{})
}

// Create posts a new active listing owned by the calling customer.
func (s *ListingService) Create(ctx context.Context, user *domain.User, in ports.CreateListingInput) (*domain.Listing, error) {
	scope, err := s.policy.Authorize(user, domain.OpCreateListing)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.NewValidationError("title", "is required")
	}
	if strings.TrimSpace(in.ServiceRequired) == "" {
		return nil, domain.NewValidationError("serviceRequired", "is required")
	}

	listing := &domain.Listing{
		CustomerID:      scope.CustomerID,
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		ServiceRequired: strings.TrimSpace(in.ServiceRequired),
		Status:          domain.ListingActive,
		Location:        in.Location,
		CreatedAt:       time.Now().UTC(),
	}

	created, err := s.listings.Create(ctx, listing)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", scope.CustomerID).Msg("failed to create listing")
		return nil, err
	}

	metrics.ListingsCreatedTotal.WithLabelValues(created.ServiceRequired).Inc()
	s.activity.Record(domain.Activity{
		Type:        domain.ActivityListingCreated,
		ActorID:     user.ID,
		SubjectID:   created.ID,
		Description: created.Title,
	})
	s.logger.Info().Str("listing_id", created.ID).Str("customer_id", created.CustomerID).Msg("listing created")

	return created, nil
}
