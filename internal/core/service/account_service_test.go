package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradelink/marketplace/internal/core/domain"
	"github.com/tradelink/marketplace/internal/core/ports"
	"github.com/tradelink/marketplace/internal/infrastructure/db/memory"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	stored := cloneUser(user)
	if stored.ID == "" {
		stored.ID = "user-" + stored.Email
	}
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, _ ports.UserFilter) ([]domain.User, error) {
	out := []domain.User{}
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func newAccountFixture() (*AccountService, *SessionService, *recordingActivity) {
	repo := newStubUserRepo()
	sessions := NewSessionService(repo, memory.NewStore().Revocations(), "secret", time.Hour, zerolog.Nop())
	activity := &recordingActivity{}
	return NewAccountService(repo, sessions, activity, zerolog.Nop()), sessions, activity
}

func validRegistration() ports.RegisterInput {
	return ports.RegisterInput{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "Alice@Example.com",
		Password:  "pass123",
		Role:      string(domain.RoleCustomer),
	}
}

func TestAccountService_Register_Success(t *testing.T) {
	svc, sessions, activity := newAccountFixture()

	user, session, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalised email, got %q", user.Email)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected a session token")
	}

	resolved, err := sessions.Resolve(context.Background(), session.Token)
	if err != nil || resolved.ID != user.ID {
		t.Fatalf("issued session does not resolve: %v", err)
	}
	if activity.count(domain.ActivityUserRegistered) != 1 {
		t.Fatal("expected user_registered activity")
	}
}

func TestAccountService_Register_SoleTrader(t *testing.T) {
	svc, _, _ := newAccountFixture()

	in := validRegistration()
	in.Role = string(domain.RoleSoleTrader)
	in.ServiceOffered = "plumbing"

	user, _, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if !user.IsSoleTrader() || user.ServiceOffered != "plumbing" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAccountService_Register_Validation(t *testing.T) {
	svc, _, _ := newAccountFixture()

	tests := []struct {
		name   string
		mutate func(*ports.RegisterInput)
		field  string
	}{
		{"missing first name", func(in *ports.RegisterInput) { in.FirstName = " " }, "firstName"},
		{"missing password", func(in *ports.RegisterInput) { in.Password = "" }, "password"},
		{"unknown role", func(in *ports.RegisterInput) { in.Role = "guest" }, "role"},
		{"admin self-registration", func(in *ports.RegisterInput) { in.Role = string(domain.RoleAdmin) }, "role"},
		{"sole trader without service", func(in *ports.RegisterInput) { in.Role = string(domain.RoleSoleTrader) }, "serviceOffered"},
		{"customer with service", func(in *ports.RegisterInput) { in.ServiceOffered = "plumbing" }, "serviceOffered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration()
			tt.mutate(&in)

			_, _, err := svc.Register(context.Background(), in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, ve.Field)
			}
		})
	}
}

func TestAccountService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newAccountFixture()

	if _, _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	in := validRegistration()
	in.Email = strings.ToUpper(in.Email)
	if _, _, err := svc.Register(context.Background(), in); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAccountService_Login(t *testing.T) {
	svc, _, _ := newAccountFixture()
	if _, _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	session, user, err := svc.Login(context.Background(), "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.Token == "" || user.FirstName != "Alice" {
		t.Fatalf("unexpected login result: %+v %+v", session, user)
	}

	if _, _, err := svc.Login(context.Background(), "alice@example.com", "wrong"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "pass123"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAccountService_Logout(t *testing.T) {
	svc, sessions, _ := newAccountFixture()
	_, session, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.Logout(context.Background(), session.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := sessions.Resolve(context.Background(), session.Token); err != domain.ErrUnauthenticated {
		t.Fatalf("expected logged-out session to fail, got %v", err)
	}
}

func TestAccountService_Validate(t *testing.T) {
	svc, _, _ := newAccountFixture()
	if _, _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.Validate(context.Background(), " ALICE@example.com "); err != nil {
		t.Fatalf("expected registered email to validate, got %v", err)
	}
	if err := svc.Validate(context.Background(), "bob@example.com"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := svc.Validate(context.Background(), ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
