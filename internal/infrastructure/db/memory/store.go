// Package memory is an in-process persistence backend used for local
// development (STORE=memory) and tests. A single mutex guards every
// collection, which makes each repository call, including the coupled quote
// accept, atomic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tradelink/marketplace/internal/core/domain"
	"github.com/tradelink/marketplace/internal/core/ports"
)

type Store struct {
	mu sync.Mutex

	users    map[string]domain.User
	listings map[string]domain.Listing
	quotes   map[string]domain.Quote
	ratings  []domain.Rating
	activity []domain.Activity

	revoked map[string]time.Time
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		listings: make(map[string]domain.Listing),
		quotes:   make(map[string]domain.Quote),
		revoked:  make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Listings() *ListingRepository { return &ListingRepository{s: s} }
func (s *Store) Quotes() *QuoteRepository     { return &QuoteRepository{s: s} }
func (s *Store) Ratings() *RatingRepository   { return &RatingRepository{s: s} }
func (s *Store) Activity() *ActivityRepository {
	return &ActivityRepository{s: s}
}
func (s *Store) Revocations() *Revocations { return &Revocations{s: s} }

// Ping satisfies the readiness check.
func (s *Store) Ping(context.Context) error { return nil }

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, domain.ErrUserExists
		}
	}
	clone := *user
	clone.ID = uuid.NewString()
	r.s.users[clone.ID] = clone
	return &clone, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context, f ports.UserFilter) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []domain.User{}
	for _, u := range r.s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Service != "" && u.ServiceOffered != f.Service {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ---------------------------------------------------------------------------
// Listings
// ---------------------------------------------------------------------------

type ListingRepository struct{ s *Store }

func (r *ListingRepository) Create(_ context.Context, listing *domain.Listing) (*domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	owner, ok := r.s.users[listing.CustomerID]
	if !ok || owner.Role != domain.RoleCustomer {
		return nil, domain.ErrUserNotFound
	}
	clone := *listing
	clone.ID = uuid.NewString()
	r.s.listings[clone.ID] = clone
	return &clone, nil
}

func (r *ListingRepository) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return &l, nil
}

func (r *ListingRepository) List(_ context.Context, f ports.ListingFilter) ([]domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []domain.Listing{}
	for _, l := range r.s.listings {
		if f.CustomerID != "" && l.CustomerID != f.CustomerID {
			continue
		}
		if f.ServiceRequired != "" && l.ServiceRequired != f.ServiceRequired {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ListingRepository) Complete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.completeLocked(id)
}

func (s *Store) completeLocked(id string) (bool, error) {
	l, ok := s.listings[id]
	if !ok {
		return false, domain.ErrListingNotFound
	}
	if !l.Status.CanTransitionTo(domain.ListingComplete) {
		return false, nil
	}
	l.Status = domain.ListingComplete
	s.listings[id] = l
	return true, nil
}

// ---------------------------------------------------------------------------
// Quotes
// ---------------------------------------------------------------------------

type QuoteRepository struct{ s *Store }

func (r *QuoteRepository) Create(_ context.Context, quote *domain.Quote) (*domain.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	listing, ok := r.s.listings[quote.ListingID]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	if listing.Status != domain.ListingActive {
		return nil, domain.ListingClosed(listing.ID)
	}
	clone := *quote
	clone.ID = uuid.NewString()
	clone.CustomerID = listing.CustomerID
	r.s.quotes[clone.ID] = clone
	return &clone, nil
}

func (r *QuoteRepository) FindByID(_ context.Context, id string) (*domain.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.quotes[id]
	if !ok {
		return nil, domain.ErrQuoteNotFound
	}
	return &q, nil
}

func (r *QuoteRepository) List(_ context.Context, f ports.QuoteFilter) ([]domain.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []domain.Quote{}
	for _, q := range r.s.quotes {
		if f.ListingID != "" && q.ListingID != f.ListingID {
			continue
		}
		if f.CustomerID != "" && q.CustomerID != f.CustomerID {
			continue
		}
		if f.SoleTraderID != "" && q.SoleTraderID != f.SoleTraderID {
			continue
		}
		if f.Status != "" && q.Status != f.Status {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *QuoteRepository) AcceptAndCompleteListing(_ context.Context, quoteID string) (*domain.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.quotes[quoteID]
	if !ok {
		return nil, domain.ErrQuoteNotFound
	}
	if !q.Status.CanTransitionTo(domain.QuoteAccepted) {
		return nil, domain.QuoteTransitionConflict(q.ID, q.Status, domain.QuoteAccepted)
	}

	// Both writes happen under the same lock; the listing is checked before
	// the quote is touched so a failure leaves nothing half-applied.
	l, ok := r.s.listings[q.ListingID]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	if !l.Status.CanTransitionTo(domain.ListingComplete) {
		return nil, domain.ListingClosed(l.ID)
	}
	if _, err := r.s.completeLocked(l.ID); err != nil {
		return nil, err
	}

	q.Status = domain.QuoteAccepted
	r.s.quotes[q.ID] = q
	return &q, nil
}

func (r *QuoteRepository) Reject(_ context.Context, quoteID string) (*domain.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.quotes[quoteID]
	if !ok {
		return nil, domain.ErrQuoteNotFound
	}
	switch {
	case q.Status == domain.QuoteRejected:
		return &q, nil
	case !q.Status.CanTransitionTo(domain.QuoteRejected):
		return nil, domain.QuoteTransitionConflict(q.ID, q.Status, domain.QuoteRejected)
	}
	q.Status = domain.QuoteRejected
	r.s.quotes[q.ID] = q
	return &q, nil
}

func (r *QuoteRepository) ExistsAccepted(_ context.Context, customerID, soleTraderID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, q := range r.s.quotes {
		if q.Status == domain.QuoteAccepted && q.CustomerID == customerID && q.SoleTraderID == soleTraderID {
			return true, nil
		}
	}
	return false, nil
}

// ---------------------------------------------------------------------------
// Ratings and activity
// ---------------------------------------------------------------------------

type RatingRepository struct{ s *Store }

func (r *RatingRepository) Create(_ context.Context, rating *domain.Rating) (*domain.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	clone := *rating
	clone.ID = uuid.NewString()
	r.s.ratings = append(r.s.ratings, clone)
	return &clone, nil
}

func (r *RatingRepository) ListByReceiver(_ context.Context, receiverID string) ([]domain.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []domain.Rating{}
	for _, rt := range r.s.ratings {
		if rt.ReceiverID == receiverID {
			out = append(out, rt)
		}
	}
	return out, nil
}

type ActivityRepository struct{ s *Store }

func (r *ActivityRepository) Insert(_ context.Context, a *domain.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	clone := *a
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	r.s.activity = append(r.s.activity, clone)
	return nil
}

// Entries returns a copy of the recorded activity.
func (r *ActivityRepository) Entries() []domain.Activity {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.Activity(nil), r.s.activity...)
}

// ---------------------------------------------------------------------------
// Session revocations
// ---------------------------------------------------------------------------

type Revocations struct{ s *Store }

func (r *Revocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.revoked[tokenID] = r.s.now().Add(ttl)
	return nil
}

func (r *Revocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	until, ok := r.s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if r.s.now().After(until) {
		delete(r.s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
