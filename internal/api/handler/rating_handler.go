package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tradelink/marketplace/internal/core/domain"
	"github.com/tradelink/marketplace/internal/core/ports"
)

type RatingHandler struct {
	service ports.RatingService
}

func NewRatingHandler(service ports.RatingService) *RatingHandler {
	return &RatingHandler{service: service}
}

// Submit handles POST /api/ratings.
//
// @Summary      Rate another user
// @Tags         ratings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      submitRatingRequest  true  "Rating"
// @Success      201   {object}  domain.Rating
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/ratings [post]
func (h *RatingHandler) Submit(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req submitRatingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	value, err := req.Rating.Int64()
	if err != nil {
		return domain.NewValidationError("rating", "must be an integer")
	}

	rating, err := h.service.Submit(c.Request().Context(), user, ports.SubmitRatingInput{
		ReceiverID:  req.UserID,
		Value:       int(value),
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rating)
}

// List handles GET /api/ratings.
//
// @Summary      Ratings received by the caller
// @Tags         ratings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ratingsResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/ratings [get]
func (h *RatingHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	summary, err := h.service.ForUser(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ratingsResponse{
		Ratings: summary.Ratings,
		Count:   summary.Count,
		Average: summary.Average,
	})
}
