package ports

import (
	"context"

	"github.com/tradelink/marketplace/internal/core/domain"
)

// UserFilter narrows a user listing. Empty fields impose no restriction.
type UserFilter struct {
	Role    domain.Role
	Service string
}

// UserRepository is the identity store.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByID returns domain.ErrUserNotFound for unknown or malformed ids.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
}
