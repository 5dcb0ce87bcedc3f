package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tradelink/marketplace/internal/core/ports"
)

type QuoteHandler struct {
	service ports.QuoteService
}

func NewQuoteHandler(service ports.QuoteService) *QuoteHandler {
	return &QuoteHandler{service: service}
}

// List handles GET /api/quotes.
//
// @Summary      List quotes visible to the caller
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Quote
// @Failure      401  {object}  errorResponse
// @Router       /api/quotes [get]
func (h *QuoteHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	quotes, err := h.service.List(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quotes)
}

// Get handles GET /api/quotes/:id.
//
// @Summary      Get a quote
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quote id"
// @Success      200  {object}  domain.Quote
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/quotes/{id} [get]
func (h *QuoteHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	quote, err := h.service.Get(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quote)
}

// Submit handles POST /api/quotes.
//
// @Summary      Submit a quote on a listing
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      submitQuoteRequest  true  "Quote"
// @Success      201   {object}  domain.Quote
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/quotes [post]
func (h *QuoteHandler) Submit(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req submitQuoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	in := ports.SubmitQuoteInput{
		ListingID:   req.ListingID,
		Description: req.Description,
		Price:       req.Price,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}

	quote, err := h.service.Submit(c.Request().Context(), user, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, quote)
}

// Accept handles POST /api/quotes/:id/accept.
//
// @Summary      Accept a quote
// @Description  Accepts a pending quote and completes its listing in one atomic step.
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quote id"
// @Success      200  {object}  domain.Quote
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/quotes/{id}/accept [post]
func (h *QuoteHandler) Accept(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	quote, err := h.service.Accept(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quote)
}

// Reject handles POST /api/quotes/:id/reject.
//
// @Summary      Reject a quote
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quote id"
// @Success      200  {object}  domain.Quote
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/quotes/{id}/reject [post]
func (h *QuoteHandler) Reject(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	quote, err := h.service.Reject(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quote)
}
