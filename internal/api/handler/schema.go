package handler

import (
	"encoding/json"
	"time"

	"github.com/tradelink/marketplace/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Accounts ---

type registerRequest struct {
	FirstName      string `json:"firstName"      validate:"required"`
	LastName       string `json:"lastName"       validate:"required"`
	Email          string `json:"email"          validate:"required,email"`
	Password       string `json:"password"       validate:"required"`
	Role           string `json:"role"           validate:"required,oneof=customer soleTrader"`
	ServiceOffered string `json:"serviceOffered"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

// --- Listings ---

type createListingRequest struct {
	Title           string `json:"title"           validate:"required"`
	Description     string `json:"description"`
	ServiceRequired string `json:"serviceRequired" validate:"required"`
	Location        string `json:"location"`
}

// --- Quotes ---

type submitQuoteRequest struct {
	ListingID   string     `json:"listingId"   validate:"required"`
	Description string     `json:"description"`
	Price       float64    `json:"price"       validate:"gte=0"`
	Date        *time.Time `json:"date"`
}

// --- Ratings ---

// submitRatingRequest keeps rating as a json.Number so that non-integer
// values are reported as validation failures instead of bind errors.
type submitRatingRequest struct {
	UserID      string      `json:"userId"      validate:"required"`
	Rating      json.Number `json:"rating"      validate:"required"`
	Description string      `json:"description"`
}

type ratingsResponse struct {
	Ratings []domain.Rating `json:"ratings"`
	Count   int             `json:"count"`
	Average float64         `json:"average"`
}
