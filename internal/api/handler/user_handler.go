package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tradelink/marketplace/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/users.
//
// @Summary      Browse users
// @Description  Admins see every user; everyone else sees sole traders, optionally filtered by service.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        service  query     string  false  "Service offered"
// @Success      200      {array}   domain.User
// @Failure      401      {object}  errorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	users, err := h.service.List(c.Request().Context(), user, c.QueryParam("service"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}
