package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tradelink/marketplace/internal/core/domain"
)

func render(t *testing.T, err error) (int, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec.Code, body.Error
}

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("%w: soleTrader may not decide_quote", domain.ErrForbidden), http.StatusUnauthorized},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"validation", domain.NewValidationError("rating", "must be between 1 and 5"), http.StatusUnprocessableEntity},
		{"quote not found", domain.ErrQuoteNotFound, http.StatusNotFound},
		{"listing not found", domain.ErrListingNotFound, http.StatusNotFound},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"conflict", domain.QuoteTransitionConflict("q1", domain.QuoteAccepted, domain.QuoteRejected), http.StatusConflict},
		{"user exists", domain.ErrUserExists, http.StatusConflict},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"), http.StatusTooManyRequests},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := render(t, tt.err)
			if code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, code)
			}
		})
	}
}

func TestHTTPErrorHandler_AuthFailuresAreIndistinguishable(t *testing.T) {
	_, unauthenticated := render(t, domain.ErrUnauthenticated)
	_, forbidden := render(t, fmt.Errorf("%w: role %q", domain.ErrForbidden, "guest"))

	if unauthenticated != forbidden {
		t.Fatalf("expected identical bodies, got %q and %q", unauthenticated, forbidden)
	}
	if unauthenticated != "unauthorized" {
		t.Fatalf("unexpected body %q", unauthenticated)
	}
}

func TestHTTPErrorHandler_UnexpectedErrorDoesNotLeak(t *testing.T) {
	_, msg := render(t, errors.New("mongo: connection refused"))
	if msg != "internal server error" {
		t.Fatalf("expected generic message, got %q", msg)
	}
}
