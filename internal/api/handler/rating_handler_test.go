package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tradelink/marketplace/internal/core/domain"
	"github.com/tradelink/marketplace/internal/core/ports"
)

type stubRatingService struct {
	got ports.SubmitRatingInput
}

func (s *stubRatingService) Submit(_ context.Context, sender *domain.User, in ports.SubmitRatingInput) (*domain.Rating, error) {
	s.got = in
	if err := domain.ValidateRatingValue(in.Value); err != nil {
		return nil, err
	}
	return &domain.Rating{ID: "r1", SenderID: sender.ID, ReceiverID: in.ReceiverID, Value: in.Value}, nil
}

func (s *stubRatingService) ForUser(context.Context, *domain.User) (*ports.RatingSummary, error) {
	return &ports.RatingSummary{Ratings: []domain.Rating{}}, nil
}

func TestRatingHandler_Submit(t *testing.T) {
	stub := &stubRatingService{}
	h := NewRatingHandler(stub)
	sender := &domain.User{ID: "c1", Role: domain.RoleCustomer}

	c, rec := newContext(http.MethodPost, "/api/ratings", strings.NewReader(`{"userId":"t1","rating":4,"description":"tidy"}`))
	if err := asUser(sender, h.Submit)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if stub.got.ReceiverID != "t1" || stub.got.Value != 4 {
		t.Fatalf("unexpected service input: %+v", stub.got)
	}
}

func TestRatingHandler_Submit_Rejections(t *testing.T) {
	h := NewRatingHandler(&stubRatingService{})
	sender := &domain.User{ID: "c1", Role: domain.RoleCustomer}

	tests := []struct {
		name  string
		body  string
		check func(error) bool
	}{
		{"fractional", `{"userId":"t1","rating":4.5}`, func(err error) bool { return errors.Is(err, domain.ErrValidation) }},
		{"out of range", `{"userId":"t1","rating":6}`, func(err error) bool { return errors.Is(err, domain.ErrValidation) }},
		{"zero", `{"userId":"t1","rating":0}`, func(err error) bool { return errors.Is(err, domain.ErrValidation) }},
		{"missing rating", `{"userId":"t1"}`, func(err error) bool {
			var he *echo.HTTPError
			return errors.As(err, &he) && he.Code == http.StatusUnprocessableEntity
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/api/ratings", strings.NewReader(tt.body))
			if err := asUser(sender, h.Submit)(c); !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRatingHandler_List_Empty(t *testing.T) {
	h := NewRatingHandler(&stubRatingService{})

	c, rec := newContext(http.MethodGet, "/api/ratings", nil)
	if err := asUser(&domain.User{ID: "t1", Role: domain.RoleSoleTrader}, h.List)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	ratings, ok := resp["ratings"].([]any)
	if !ok || len(ratings) != 0 || resp["count"] != float64(0) {
		t.Fatalf("expected empty ratings array, got %+v", resp)
	}
}
