package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradelink/marketplace/internal/core/domain"
	"github.com/tradelink/marketplace/internal/core/ports"
	"github.com/tradelink/marketplace/internal/infrastructure/metrics"
)

// RatingRules holds the rating policy switches.
type RatingRules struct {
	// AllowSelf lets a user rate themselves.
	AllowSelf bool
	// RequireTradePartner limits ratings to users linked by an accepted quote.
	RequireTradePartner bool
}

// RatingService is the append-only peer rating ledger.
type RatingService struct {
	ratings  ports.RatingRepository
	users    ports.UserRepository
	quotes   ports.QuoteRepository
	policy   *Policy
	rules    RatingRules
	activity ports.ActivityRecorder
	logger   zerolog.Logger
}

func NewRatingService(
	ratings ports.RatingRepository,
	users ports.UserRepository,
	quotes ports.QuoteRepository,
	policy *Policy,
	rules RatingRules,
	activity ports.ActivityRecorder,
	logger zerolog.Logger,
) *RatingService {
	return &RatingService{
		ratings:  ratings,
		users:    users,
		quotes:   quotes,
		policy:   policy,
		rules:    rules,
		activity: activity,
		logger:   logger,
	}
}

// Submit appends a rating from sender about in.ReceiverID.
func (s *RatingService) Submit(ctx context.Context, sender *domain.User, in ports.SubmitRatingInput) (*domain.Rating, error) {
	rating, err := s.submit(ctx, sender, in)
	if err != nil {
		metrics.RatingsSubmittedTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	metrics.RatingsSubmittedTotal.WithLabelValues("ok").Inc()
	return rating, nil
}

func (s *RatingService) submit(ctx context.Context, sender *domain.User, in ports.SubmitRatingInput) (*domain.Rating, error) {
	scope, err := s.policy.Authorize(sender, domain.OpSubmitRating)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateRatingValue(in.Value); err != nil {
		return nil, err
	}
	receiverID := strings.TrimSpace(in.ReceiverID)
	if receiverID == "" {
		return nil, domain.NewValidationError("userId", "is required")
	}
	if receiverID == scope.UserID && !s.rules.AllowSelf {
		return nil, domain.NewValidationError("userId", "cannot rate yourself")
	}

	receiver, err := s.users.FindByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}

	if s.rules.RequireTradePartner && receiver.ID != scope.UserID {
		partners, err := s.tradedWith(ctx, sender.ID, receiver.ID)
		if err != nil {
			return nil, err
		}
		if !partners {
			return nil, fmt.Errorf("%w: no accepted quote links these users", domain.ErrForbidden)
		}
	}

	created, err := s.ratings.Create(ctx, &domain.Rating{
		ReceiverID:  receiver.ID,
		SenderID:    scope.UserID,
		Value:       in.Value,
		Description: in.Description,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(domain.Activity{
		Type:        domain.ActivityRatingSubmitted,
		ActorID:     sender.ID,
		SubjectID:   receiver.ID,
		Description: fmt.Sprintf("%d", created.Value),
	})
	s.logger.Info().
		Str("rating_id", created.ID).
		Str("sender_id", created.SenderID).
		Str("receiver_id", created.ReceiverID).
		Int("rating", created.Value).
		Msg("rating submitted")

	return created, nil
}

// tradedWith reports whether a and b are linked by an accepted quote in
// either direction.
func (s *RatingService) tradedWith(ctx context.Context, a, b string) (bool, error) {
	ok, err := s.quotes.ExistsAccepted(ctx, a, b)
	if err != nil || ok {
		return ok, err
	}
	return s.quotes.ExistsAccepted(ctx, b, a)
}

// ForUser returns every rating user has received. No ratings is an empty
// summary, not an error.
func (s *RatingService) ForUser(ctx context.Context, user *domain.User) (*ports.RatingSummary, error) {
	scope, err := s.policy.Authorize(user, domain.OpViewRatings)
	if err != nil {
		return nil, err
	}

	ratings, err := s.ratings.ListByReceiver(ctx, scope.UserID)
	if err != nil {
		return nil, err
	}
	if ratings == nil {
		ratings = []domain.Rating{}
	}

	summary := &ports.RatingSummary{Ratings: ratings, Count: len(ratings)}
	if summary.Count > 0 {
		total := 0
		for _, r := range ratings {
			total += r.Value
		}
		summary.Average = float64(total) / float64(summary.Count)
	}
	return summary, nil
}
