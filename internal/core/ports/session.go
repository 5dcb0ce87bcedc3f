package ports

import (
	"context"
	"time"

	"github.com/tradelink/marketplace/internal/core/domain"
)

// Session is an issued credential.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// SessionResolver maps a credential to the identity it was issued for.
// Every failure is reported as domain.ErrUnauthenticated.
type SessionResolver interface {
	Resolve(ctx context.Context, credential string) (*domain.User, error)
}

// SessionRevocations tracks credentials that were logged out before expiry.
type SessionRevocations interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
