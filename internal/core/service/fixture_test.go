package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradelink/marketplace/internal/core/domain"
	"github.com/tradelink/marketplace/internal/core/ports"
	"github.com/tradelink/marketplace/internal/infrastructure/db/memory"
)

// ---------------------------------------------------------------------------
// Activity recorder stub
// ---------------------------------------------------------------------------

type recordingActivity struct {
	mu      sync.Mutex
	entries []domain.Activity
}

func (r *recordingActivity) Record(a domain.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, a)
}

func (r *recordingActivity) count(t domain.ActivityType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Type == t {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Marketplace fixture backed by the in-memory store
// ---------------------------------------------------------------------------

type fixture struct {
	store    *memory.Store
	activity *recordingActivity
	listings *ListingService
	quotes   *QuoteService
	ratings  *RatingService
	users    *UserService
	seq      int
}

func newFixture(t *testing.T, rules RatingRules) *fixture {
	t.Helper()
	store := memory.NewStore()
	activity := &recordingActivity{}
	policy := NewPolicy()
	log := zerolog.Nop()

	return &fixture{
		store:    store,
		activity: activity,
		listings: NewListingService(store.Listings(), policy, activity, log),
		quotes:   NewQuoteService(store.Quotes(), store.Listings(), policy, activity, log),
		ratings:  NewRatingService(store.Ratings(), store.Users(), store.Quotes(), policy, rules, activity, log),
		users:    NewUserService(store.Users(), policy),
	}
}

func (f *fixture) addUser(t *testing.T, role domain.Role, service string) *domain.User {
	t.Helper()
	f.seq++
	u, err := f.store.Users().Create(context.Background(), &domain.User{
		Email:          fmt.Sprintf("%s-%d@example.com", role, f.seq),
		FirstName:      "Test",
		LastName:       fmt.Sprintf("User%d", f.seq),
		Role:           role,
		ServiceOffered: service,
		CreatedAt:      time.Now().UTC().Add(time.Duration(f.seq) * time.Millisecond),
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) customer(t *testing.T) *domain.User { return f.addUser(t, domain.RoleCustomer, "") }
func (f *fixture) admin(t *testing.T) *domain.User    { return f.addUser(t, domain.RoleAdmin, "") }
func (f *fixture) trader(t *testing.T, service string) *domain.User {
	return f.addUser(t, domain.RoleSoleTrader, service)
}

func (f *fixture) addListing(t *testing.T, customer *domain.User, service string) *domain.Listing {
	t.Helper()
	l, err := f.listings.Create(context.Background(), customer, ports.CreateListingInput{
		Title:           "Fix the sink",
		Description:     "Kitchen sink leaks",
		ServiceRequired: service,
		Location:        "Leeds",
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return l
}

func (f *fixture) addQuote(t *testing.T, trader *domain.User, listing *domain.Listing, price float64) *domain.Quote {
	t.Helper()
	q, err := f.quotes.Submit(context.Background(), trader, ports.SubmitQuoteInput{
		ListingID:   listing.ID,
		Description: "Can do Tuesday",
		Price:       price,
	})
	if err != nil {
		t.Fatalf("submit quote: %v", err)
	}
	return q
}
