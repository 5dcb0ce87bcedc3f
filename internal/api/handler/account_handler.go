package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tradelink/marketplace/internal/api/middleware"
	"github.com/tradelink/marketplace/internal/core/ports"
)

// AccountHandler serves registration, login, logout and the caller's profile.
type AccountHandler struct {
	accounts     ports.AccountService
	users        ports.UserService
	secureCookie bool
}

func NewAccountHandler(accounts ports.AccountService, users ports.UserService, secureCookie bool) *AccountHandler {
	return &AccountHandler{accounts: accounts, users: users, secureCookie: secureCookie}
}

// Register creates a new customer or sole trader account and signs it in.
//
// @Summary      Register a new user
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, session, err := h.accounts.Register(c.Request().Context(), ports.RegisterInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		ServiceOffered: req.ServiceOffered,
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(c, session.Token, session.ExpiresAt)
	return c.JSON(http.StatusCreated, sessionResponse{Token: session.Token, ExpiresAt: session.ExpiresAt, User: user})
}

// Login authenticates a user and issues a session.
//
// @Summary      Login
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	session, user, err := h.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, session.Token, session.ExpiresAt)
	return c.JSON(http.StatusOK, sessionResponse{Token: session.Token, ExpiresAt: session.ExpiresAt, User: user})
}

// Logout revokes the current session and clears the cookie.
//
// @Summary      Logout
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/logout [post]
func (h *AccountHandler) Logout(c echo.Context) error {
	if err := h.accounts.Logout(c.Request().Context(), middleware.Credential(c)); err != nil {
		return err
	}

	h.setSessionCookie(c, "", time.Unix(0, 0))
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// Validate reports whether an email is registered.
//
// @Summary      Check an email
// @Tags         accounts
// @Produce      json
// @Param        email  query     string  true  "Email address"
// @Success      200    {object}  messageResponse
// @Failure      404    {object}  errorResponse
// @Failure      422    {object}  errorResponse
// @Router       /api/validate [get]
func (h *AccountHandler) Validate(c echo.Context) error {
	if err := h.accounts.Validate(c.Request().Context(), c.QueryParam("email")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "email is registered"})
}

// Profile returns the caller's account.
//
// @Summary      Current user profile
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /api/profile [get]
func (h *AccountHandler) Profile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	profile, err := h.users.Profile(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *AccountHandler) setSessionCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
