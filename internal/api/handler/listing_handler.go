package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tradelink/marketplace/internal/core/ports"
)

type ListingHandler struct {
	service ports.ListingService
}

func NewListingHandler(service ports.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// List handles GET /api/listings.
//
// @Summary      List listings visible to the caller
// @Description  Customers see their own listings, sole traders see active listings in their service, admins see all.
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Listing
// @Failure      401  {object}  errorResponse
// @Router       /api/listings [get]
func (h *ListingHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	listings, err := h.service.List(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listings)
}

// Create handles POST /api/listings.
//
// @Summary      Post a listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createListingRequest  true  "Listing"
// @Success      201   {object}  domain.Listing
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/listings [post]
func (h *ListingHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	listing, err := h.service.Create(c.Request().Context(), user, ports.CreateListingInput{
		Title:           req.Title,
		Description:     req.Description,
		ServiceRequired: req.ServiceRequired,
		Location:        req.Location,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, listing)
}
