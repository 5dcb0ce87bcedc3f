package service

import (
	"context"
	"strings"

	"github.com/tradelink/marketplace/internal/core/domain"
	"github.com/tradelink/marketplace/internal/core/ports"
)

// UserService is the role-scoped user directory.
type UserService struct {
	users  ports.UserRepository
	policy *Policy
}

func NewUserService(users ports.UserRepository, policy *Policy) *UserService {
	return &UserService{users: users, policy: policy}
}

// List returns every user for admins. Everyone else sees sole traders only,
// optionally narrowed to those offering service.
func (s *UserService) List(ctx context.Context, user *domain.User, service string) ([]domain.User, error) {
	scope, err := s.policy.Authorize(user, domain.OpListUsers)
	if err != nil {
		return nil, err
	}

	filter := ports.UserFilter{}
	if scope.SoleTradersOnly {
		filter.Role = domain.RoleSoleTrader
		filter.Service = strings.TrimSpace(service)
	}
	return s.users.List(ctx, filter)
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, user *domain.User) (*domain.User, error) {
	scope, err := s.policy.Authorize(user, domain.OpViewProfile)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, scope.UserID)
}
