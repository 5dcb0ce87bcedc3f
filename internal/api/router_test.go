package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tradelink/marketplace/internal/api/middleware"
	"github.com/tradelink/marketplace/internal/core/domain"
	"github.com/tradelink/marketplace/internal/core/ports"
	"github.com/tradelink/marketplace/internal/core/service"
	"github.com/tradelink/marketplace/internal/infrastructure/db/memory"
)

type discardActivity struct{}

func (discardActivity) Record(domain.Activity) {}

type marketplace struct {
	e        *echo.Echo
	store    *memory.Store
	accounts *service.AccountService
	listings *service.ListingService
	quotes   *service.QuoteService
}

func newMarketplace(t *testing.T) *marketplace {
	t.Helper()
	store := memory.NewStore()
	log := zerolog.Nop()
	policy := service.NewPolicy()
	sessions := service.NewSessionService(store.Users(), store.Revocations(), "secret", time.Hour, log)

	m := &marketplace{
		store:    store,
		accounts: service.NewAccountService(store.Users(), sessions, discardActivity{}, log),
		listings: service.NewListingService(store.Listings(), policy, discardActivity{}, log),
		quotes:   service.NewQuoteService(store.Quotes(), store.Listings(), policy, discardActivity{}, log),
	}
	m.e = NewRouter(Services{
		Sessions: sessions,
		Accounts: m.accounts,
		Listings: m.listings,
		Quotes:   m.quotes,
		Ratings:  service.NewRatingService(store.Ratings(), store.Users(), store.Quotes(), policy, service.RatingRules{}, discardActivity{}, log),
		Users:    service.NewUserService(store.Users(), policy),
	}, Options{}, log)
	return m
}

// pendingQuote registers a customer and a plumber, posts a listing and a
// quote on it, and returns the customer's session token with the quote.
func (m *marketplace) pendingQuote(t *testing.T) (string, *domain.Quote) {
	t.Helper()
	ctx := context.Background()

	customer, session, err := m.accounts.Register(ctx, ports.RegisterInput{
		FirstName: "Alice", LastName: "Smith", Email: "alice@example.com", Password: "pw", Role: "customer",
	})
	if err != nil {
		t.Fatalf("register customer: %v", err)
	}
	plumber, _, err := m.accounts.Register(ctx, ports.RegisterInput{
		FirstName: "Bob", LastName: "Jones", Email: "bob@example.com", Password: "pw", Role: "soleTrader", ServiceOffered: "plumbing",
	})
	if err != nil {
		t.Fatalf("register trader: %v", err)
	}

	listing, err := m.listings.Create(ctx, customer, ports.CreateListingInput{Title: "Fix the sink", ServiceRequired: "plumbing"})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	quote, err := m.quotes.Submit(ctx, plumber, ports.SubmitQuoteInput{ListingID: listing.ID, Price: 90})
	if err != nil {
		t.Fatalf("submit quote: %v", err)
	}
	return session.Token, quote
}

func (m *marketplace) serve(method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})
	rec := httptest.NewRecorder()
	m.e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_QuoteTransitionsRejectGET(t *testing.T) {
	m := newMarketplace(t)
	token, quote := m.pendingQuote(t)

	for _, action := range []string{"accept", "reject"} {
		rec := m.serve(http.MethodGet, "/api/quotes/"+quote.ID+"/"+action, token)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("GET %s: expected 405, got %d", action, rec.Code)
		}
	}

	q, _ := m.store.Quotes().FindByID(context.Background(), quote.ID)
	if q.Status != domain.QuotePending {
		t.Fatalf("expected quote to stay pending, got %s", q.Status)
	}
	l, _ := m.store.Listings().FindByID(context.Background(), quote.ListingID)
	if l.Status != domain.ListingActive {
		t.Fatalf("expected listing to stay active, got %s", l.Status)
	}
}

func TestRouter_AcceptWithPOST(t *testing.T) {
	m := newMarketplace(t)
	token, quote := m.pendingQuote(t)

	rec := m.serve(http.MethodPost, "/api/quotes/"+quote.ID+"/accept", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	l, _ := m.store.Listings().FindByID(context.Background(), quote.ListingID)
	if l.Status != domain.ListingComplete {
		t.Fatalf("expected listing complete, got %s", l.Status)
	}
}

func TestRouter_AuthenticatedRoutesNeedSession(t *testing.T) {
	m := newMarketplace(t)
	_, quote := m.pendingQuote(t)

	rec := m.serve(http.MethodPost, "/api/quotes/"+quote.ID+"/accept", "not-a-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
