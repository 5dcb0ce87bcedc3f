package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/tradelink/marketplace/internal/api/middleware"
	"github.com/tradelink/marketplace/internal/core/domain"
)

// currentUser returns the identity the Session middleware resolved. A route
// wired without that middleware fails closed.
func currentUser(c echo.Context) (*domain.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}
