package handler

import (
	"context"
	"io"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/tradelink/marketplace/internal/api/middleware"
	"github.com/tradelink/marketplace/internal/core/domain"
)

type fixedResolver struct{ user *domain.User }

func (r fixedResolver) Resolve(context.Context, string) (*domain.User, error) {
	return r.user, nil
}

func newContext(method, target string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer token")
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asUser runs h behind the session middleware with user as the caller.
func asUser(user *domain.User, h echo.HandlerFunc) echo.HandlerFunc {
	return middleware.Session(fixedResolver{user: user})(h)
}
