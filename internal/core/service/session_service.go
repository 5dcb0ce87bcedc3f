package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tradelink/marketplace/internal/core/domain"
	"github.com/tradelink/marketplace/internal/core/ports"
	"github.com/tradelink/marketplace/internal/infrastructure/metrics"
)

const defaultSessionTTL = 24 * time.Hour

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SessionService issues signed, expiring session tokens and resolves them
// back to the stored identity. It is the single authentication gate.
type SessionService struct {
	users   ports.UserRepository
	revoked ports.SessionRevocations
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

func NewSessionService(users ports.UserRepository, revoked ports.SessionRevocations, secret string, ttl time.Duration, log zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionService{
		users:   users,
		revoked: revoked,
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		log:     log,
	}
}

// Issue signs a new session token for user.
func (s *SessionService) Issue(user *domain.User) (ports.Session, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := sessionClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return ports.Session{}, fmt.Errorf("sign session: %w", err)
	}
	return ports.Session{Token: signed, ExpiresAt: expires.UTC()}, nil
}

// Resolve verifies credential and loads the identity it names. Missing,
// malformed, expired, revoked and unknown credentials all fail with the same
// domain.ErrUnauthenticated.
func (s *SessionService) Resolve(ctx context.Context, credential string) (*domain.User, error) {
	if credential == "" {
		return nil, s.reject("missing", nil)
	}

	claims, err := s.parse(credential)
	if err != nil {
		reason := "malformed"
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = "expired"
		}
		return nil, s.reject(reason, err)
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, s.reject("revocation_check", err)
	}
	if revoked {
		return nil, s.reject("revoked", nil)
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, s.reject("unknown_user", err)
	}
	return user, nil
}

// Revoke invalidates credential until it would have expired anyway.
func (s *SessionService) Revoke(ctx context.Context, credential string) error {
	claims, err := s.parse(credential)
	if err != nil {
		return domain.ErrUnauthenticated
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *SessionService) parse(credential string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(credential, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (s *SessionService) reject(reason string, cause error) error {
	metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
	s.log.Debug().Err(cause).Str("reason", reason).Msg("session rejected")
	return domain.ErrUnauthenticated
}
