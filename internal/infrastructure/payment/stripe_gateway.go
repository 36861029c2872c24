package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/contesthub/contest-service/internal/core/domain"
	"github.com/contesthub/contest-service/internal/core/ports"
	"github.com/contesthub/contest-service/internal/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// Config configures the hosted checkout integration.
type Config struct {
	SecretKey    string
	Currency     string
	ClientDomain string
	Timeout      time.Duration
}

// sessionClient is the subset of the Stripe checkout session client in use.
type sessionClient interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeGateway implements ports.PaymentGateway on Stripe Checkout.
type StripeGateway struct {
	sessions sessionClient
	cfg      Config
	log      zerolog.Logger
}

func NewStripeGateway(cfg Config, log zerolog.Logger) *StripeGateway {
	sc := client.New(cfg.SecretKey, nil)
	return newStripeGateway(sc.CheckoutSessions, cfg, log)
}

func newStripeGateway(sessions sessionClient, cfg Config, log zerolog.Logger) *StripeGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyUSD)
	}
	return &StripeGateway{sessions: sessions, cfg: cfg, log: log}
}

// CreateSession opens a one-item payment session and returns its hosted URL.
func (g *StripeGateway) CreateSession(ctx context.Context, req ports.CheckoutSessionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	params := buildSessionParams(req, g.cfg)
	params.Context = ctx

	start := time.Now()
	s, err := g.sessions.New(params)
	metrics.ProviderCallDuration.WithLabelValues("create_session").Observe(time.Since(start).Seconds())
	if err != nil {
		g.log.Error().Err(err).Str("contest_id", req.ContestID).Msg("stripe create session failed")
		return "", fmt.Errorf("%w: create checkout session: %v", domain.ErrUpstream, err)
	}
	return s.URL, nil
}

// RetrieveSession loads a session by id. Unknown ids map to
// domain.ErrPaymentNotFound.
func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	start := time.Now()
	s, err := g.sessions.Get(sessionID, params)
	metrics.ProviderCallDuration.WithLabelValues("retrieve_session").Observe(time.Since(start).Seconds())
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrPaymentNotFound
		}
		g.log.Error().Err(err).Str("session_id", sessionID).Msg("stripe retrieve session failed")
		return nil, fmt.Errorf("%w: retrieve checkout session: %v", domain.ErrUpstream, err)
	}
	return toDomainSession(s), nil
}

func buildSessionParams(req ports.CheckoutSessionRequest, cfg Config) *stripe.CheckoutSessionParams {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(req.Name),
	}
	if req.Description != "" {
		product.Description = stripe.String(req.Description)
	}
	if req.Image != "" {
		product.Images = stripe.StringSlice([]string{req.Image})
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(cfg.Currency),
				UnitAmount:  stripe.Int64(toMinorUnits(req.Price)),
				ProductData: product,
			},
			Quantity: stripe.Int64(1),
		}},
		CustomerEmail: stripe.String(req.Participant.Email),
		SuccessURL:    stripe.String(cfg.ClientDomain + "/payment-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(cfg.ClientDomain + "/contest/" + url.PathEscape(req.ContestID)),
	}
	params.AddMetadata(domain.MetaContestID, req.ContestID)
	params.AddMetadata(domain.MetaParticipantEmail, req.Participant.Email)
	params.AddMetadata(domain.MetaParticipantName, req.Participant.Name)
	params.AddMetadata(domain.MetaParticipantImage, req.Participant.Image)
	return params
}

func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

func toDomainSession(s *stripe.CheckoutSession) *domain.CheckoutSession {
	out := &domain.CheckoutSession{
		ID:          s.ID,
		Status:      domain.CheckoutSessionStatus(s.Status),
		AmountTotal: s.AmountTotal,
		Metadata:    s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	return out
}

func isNotFound(err error) bool {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.HTTPStatusCode == http.StatusNotFound || se.Code == stripe.ErrorCodeResourceMissing
}
