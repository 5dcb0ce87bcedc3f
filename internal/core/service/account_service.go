package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradelink/marketplace/internal/core/domain"
	"github.com/tradelink/marketplace/internal/core/ports"
)

// SessionIssuer creates and tears down session credentials.
type SessionIssuer interface {
	Issue(user *domain.User) (ports.Session, error)
	Revoke(ctx context.Context, credential string) error
}

// AccountService implements registration, login and logout.
type AccountService struct {
	users    ports.UserRepository
	sessions SessionIssuer
	activity ports.ActivityRecorder
	log      zerolog.Logger
}

func NewAccountService(users ports.UserRepository, sessions SessionIssuer, activity ports.ActivityRecorder, log zerolog.Logger) *AccountService {
	return &AccountService{users: users, sessions: sessions, activity: activity, log: log}
}

// Register opens a customer or sole trader account and signs the new user in.
// Admin accounts cannot be self-registered.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, ports.Session, error) {
	role, ok := domain.ParseRole(in.Role)
	if !ok || role == domain.RoleAdmin {
		return nil, ports.Session{}, domain.NewValidationError("role", "must be one of: customer soleTrader")
	}
	required := []struct{ field, value string }{
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"email", in.Email},
		{"password", in.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, ports.Session{}, domain.NewValidationError(r.field, "is required")
		}
	}

	user := &domain.User{
		Email:          normalizeEmail(in.Email),
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Role:           role,
		ServiceOffered: strings.TrimSpace(in.ServiceOffered),
		CreatedAt:      time.Now().UTC(),
	}
	if err := user.Validate(); err != nil {
		return nil, ports.Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ports.Session{}, err
	}
	user.PasswordHash = string(hash)

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, ports.Session{}, err
	}

	session, err := s.sessions.Issue(created)
	if err != nil {
		return nil, ports.Session{}, err
	}

	s.activity.Record(domain.Activity{
		Type:        domain.ActivityUserRegistered,
		ActorID:     created.ID,
		SubjectID:   created.ID,
		Description: string(created.Role),
	})
	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")

	return created, session, nil
}

// Login checks the password and issues a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (ports.Session, *domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return ports.Session{}, nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ports.Session{}, nil, domain.ErrInvalidCredentials
		}
		return ports.Session{}, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ports.Session{}, nil, domain.ErrInvalidCredentials
	}

	session, err := s.sessions.Issue(user)
	if err != nil {
		return ports.Session{}, nil, err
	}
	return session, user, nil
}

// Logout revokes credential.
func (s *AccountService) Logout(ctx context.Context, credential string) error {
	return s.sessions.Revoke(ctx, credential)
}

// Validate reports whether email belongs to a registered account.
func (s *AccountService) Validate(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return domain.NewValidationError("email", "is required")
	}
	_, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
