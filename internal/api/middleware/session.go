package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tradelink/marketplace/internal/core/domain"
	"github.com/tradelink/marketplace/internal/core/ports"
)

// CookieName is the cookie the session token travels in for browser clients.
const CookieName = "accessToken"

const (
	ctxUser       = "user"
	ctxCredential = "credential"
)

// Session resolves the request credential to an identity and stores it on
// the context. The credential comes from the accessToken cookie or, when
// absent, an Authorization: Bearer header. Every failure surfaces as
// domain.ErrUnauthenticated so the error handler renders one generic 401.
func Session(resolver ports.SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			credential := credentialFrom(c)
			user, err := resolver.Resolve(c.Request().Context(), credential)
			if err != nil {
				return domain.ErrUnauthenticated
			}

			c.Set(ctxUser, user)
			c.Set(ctxCredential, credential)
			return next(c)
		}
	}
}

func credentialFrom(c echo.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// CurrentUser returns the identity stored by Session, or nil.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(ctxUser).(*domain.User)
	return user
}

// Credential returns the raw credential the request was authenticated with.
func Credential(c echo.Context) string {
	credential, _ := c.Get(ctxCredential).(string)
	return credential
}
