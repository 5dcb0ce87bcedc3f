package domain

import (
	"strings"
	"time"
)

// User models an authenticated actor in the marketplace.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	PasswordHash   string    `json:"-"`
	Role           Role      `json:"role"`
	ServiceOffered string    `json:"serviceOffered,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// IsSoleTrader reports whether the user offers services.
func (u *User) IsSoleTrader() bool {
	return u != nil && u.Role == RoleSoleTrader
}

// Validate checks the profile invariants: a known role, and serviceOffered
// present exactly when the role is soleTrader.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return NewValidationError("email", "is required")
	}
	if !u.Role.Valid() {
		return NewValidationError("role", "must be one of: customer soleTrader admin")
	}
	hasService := strings.TrimSpace(u.ServiceOffered) != ""
	if u.Role == RoleSoleTrader && !hasService {
		return NewValidationError("serviceOffered", "is required for sole traders")
	}
	if u.Role != RoleSoleTrader && hasService {
		return NewValidationError("serviceOffered", "is only allowed for sole traders")
	}
	return nil
}
