package ports

import (
	"context"

	"github.com/contesthub/contest-service/internal/core/domain"
)

// IdentityVerifier resolves a bearer credential to a verified principal email.
// Invalid or expired credentials yield domain.ErrUnauthenticated.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (email string, err error)
}

// CheckoutSessionRequest is forwarded verbatim to the payment provider.
type CheckoutSessionRequest struct {
	ContestID   string
	Participant domain.Participant
	Price       float64
	Name        string
	Description string
	Image       string
}

// PaymentGateway is the hosted-checkout provider.
type PaymentGateway interface {
	CreateSession(ctx context.Context, req CheckoutSessionRequest) (url string, err error)
	RetrieveSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error)
}

// ConfirmationCache remembers the outcome of confirmed sessions so that
// replays skip the provider round-trip. It is never the source of truth.
type ConfirmationCache interface {
	Get(ctx context.Context, sessionID string) (*ConfirmResult, bool, error)
	Put(ctx context.Context, sessionID string, r ConfirmResult) error
}
