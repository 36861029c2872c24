package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/contesthub/contest-service/internal/core/domain"
	"github.com/contesthub/contest-service/internal/core/ports"
	"github.com/contesthub/contest-service/internal/pkg/metrics"
)

// PaymentService turns provider checkout sessions into payment records. The
// confirm path may run any number of times, concurrently, for one session;
// the unique transaction id on payments is the only synchronization point.
type PaymentService struct {
	payments     ports.PaymentRepository
	contests     ports.ContestRepository
	participants ports.ParticipantCounter
	counters     ports.CounterIncrementer
	gateway      ports.PaymentGateway
	cache        ports.ConfirmationCache // optional
	log          zerolog.Logger
	now          func() time.Time
}

func NewPaymentService(
	payments ports.PaymentRepository,
	contests ports.ContestRepository,
	participants ports.ParticipantCounter,
	counters ports.CounterIncrementer,
	gateway ports.PaymentGateway,
	cache ports.ConfirmationCache,
	log zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		payments:     payments,
		contests:     contests,
		participants: participants,
		counters:     counters,
		gateway:      gateway,
		cache:        cache,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// StartCheckout opens a hosted checkout session for an open contest and
// returns its redirect URL. Nothing is persisted here.
func (s *PaymentService) StartCheckout(ctx context.Context, in ports.CheckoutInput) (string, error) {
	email := domain.NormalizeEmail(in.Participant.Email)
	if email == "" {
		return "", domain.ErrUnauthenticated
	}

	c, err := s.contests.FindByID(ctx, domain.NormalizeContestID(in.ContestID))
	if err != nil {
		return "", err
	}
	if c.Status != domain.ContestApproved || !c.AcceptsSubmissionsAt(s.now()) {
		return "", domain.ErrContestClosed
	}

	paid, err := s.payments.ExistsPaid(ctx, c.ID, email)
	if err != nil {
		return "", fmt.Errorf("start checkout: check payment: %w", err)
	}
	if paid {
		return "", domain.ErrAlreadyPaid
	}

	participant := in.Participant
	participant.Email = email
	url, err := s.gateway.CreateSession(ctx, ports.CheckoutSessionRequest{
		ContestID:   c.ID,
		Participant: participant,
		Price:       c.EntryFee,
		Name:        c.Name,
		Description: c.Description,
		Image:       c.Image,
	})
	if err != nil {
		metrics.CheckoutSessionsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("contest_id", c.ID).Str("email", email).Msg("failed to create checkout session")
		return "", fmt.Errorf("start checkout: %w", err)
	}

	metrics.CheckoutSessionsTotal.WithLabelValues("created").Inc()
	s.log.Info().Str("contest_id", c.ID).Str("email", email).Msg("checkout session created")
	return url, nil
}

// Confirm reconciles a checkout session into exactly one payment. Replays of
// an already reconciled session return the stored identifiers and apply no
// side effects.
func (s *PaymentService) Confirm(ctx context.Context, sessionID string) (*ports.ConfirmResult, error) {
	if sessionID == "" {
		return nil, domain.ErrPaymentNotFound
	}

	if cached := s.lookupCache(ctx, sessionID); cached != nil {
		metrics.PaymentConfirmationsTotal.WithLabelValues("cached").Inc()
		return cached, nil
	}

	session, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		metrics.PaymentConfirmationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("confirm payment: %w", err)
	}

	// 1. Already reconciled? Return the stored record untouched.
	if session.PaymentIntentID != "" {
		existing, err := s.payments.FindByTransactionID(ctx, session.PaymentIntentID)
		switch {
		case err == nil:
			res := &ports.ConfirmResult{TransactionID: existing.TransactionID, PaymentID: existing.ID, AlreadyRecorded: true}
			metrics.PaymentConfirmationsTotal.WithLabelValues("duplicate").Inc()
			s.storeCache(ctx, sessionID, *res)
			return res, nil
		case !errors.Is(err, domain.ErrPaymentNotFound):
			metrics.PaymentConfirmationsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("confirm payment: lookup: %w", err)
		}
	}

	// 2. Only completed sessions produce payments.
	if session.Status != domain.SessionComplete || session.PaymentIntentID == "" {
		metrics.PaymentConfirmationsTotal.WithLabelValues("incomplete").Inc()
		return nil, domain.ErrPaymentIncomplete
	}

	// 3. The contest must still exist.
	contestID := domain.NormalizeContestID(session.Metadata[domain.MetaContestID])
	c, err := s.contests.FindByID(ctx, contestID)
	if err != nil {
		metrics.PaymentConfirmationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	email := domain.NormalizeEmail(session.Metadata[domain.MetaParticipantEmail])
	payment := &domain.Payment{
		TransactionID:    session.PaymentIntentID,
		ContestID:        contestID,
		ParticipantEmail: email,
		ParticipantName:  session.Metadata[domain.MetaParticipantName],
		ParticipantImage: session.Metadata[domain.MetaParticipantImage],
		Price:            float64(session.AmountTotal) / 100,
		Status:           domain.PaymentPaid,
		PaidAt:           s.now(),
		ContestName:      c.Name,
		ContestImage:     c.Image,
		Creator:          c.Creator,
	}

	// 4. Insert-if-absent decides the race; only the inserter applies counters.
	stored, inserted, err := s.payments.InsertIfAbsent(ctx, payment)
	if err != nil {
		metrics.PaymentConfirmationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("confirm payment: record: %w", err)
	}

	res := ports.ConfirmResult{TransactionID: stored.TransactionID, PaymentID: stored.ID, AlreadyRecorded: !inserted}
	if !inserted {
		metrics.PaymentConfirmationsTotal.WithLabelValues("duplicate").Inc()
		s.storeCache(ctx, sessionID, res)
		return &res, nil
	}

	// 5. Follow-ups, guarded by the insert above.
	if err := s.participants.IncrementParticipantCount(ctx, contestID); err != nil {
		metrics.CounterUpdateFailuresTotal.WithLabelValues("participant_count").Inc()
		s.log.Error().Err(err).Str("contest_id", contestID).Str("transaction_id", stored.TransactionID).Msg("failed to increment participant count")
	}
	if err := s.counters.IncrementCounters(ctx, email, domain.CounterDelta{ContestsParticipated: 1}); err != nil {
		metrics.CounterUpdateFailuresTotal.WithLabelValues("contests_participated").Inc()
		s.log.Error().Err(err).Str("email", email).Str("transaction_id", stored.TransactionID).Msg("failed to increment participation counter")
	}

	metrics.PaymentConfirmationsTotal.WithLabelValues("recorded").Inc()
	s.log.Info().
		Str("contest_id", contestID).
		Str("email", email).
		Str("transaction_id", stored.TransactionID).
		Float64("price", stored.Price).
		Msg("payment recorded")

	s.storeCache(ctx, sessionID, res)
	return &res, nil
}

func (s *PaymentService) HasPaid(ctx context.Context, contestID, email string) (bool, error) {
	return s.payments.ExistsPaid(ctx, domain.NormalizeContestID(contestID), domain.NormalizeEmail(email))
}

// ListMine joins the participant's payments with the current state of each
// contest at read time.
func (s *PaymentService) ListMine(ctx context.Context, email string) ([]ports.ParticipatedContest, error) {
	payments, err := s.payments.ListByParticipant(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("list participated: %w", err)
	}

	ids := make([]string, 0, len(payments))
	seen := make(map[string]struct{}, len(payments))
	for _, p := range payments {
		if _, ok := seen[p.ContestID]; ok {
			continue
		}
		seen[p.ContestID] = struct{}{}
		ids = append(ids, p.ContestID)
	}

	contests, err := s.contests.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list participated: load contests: %w", err)
	}
	byID := make(map[string]*domain.Contest, len(contests))
	for _, c := range contests {
		byID[c.ID] = c
	}

	out := make([]ports.ParticipatedContest, 0, len(payments))
	for _, p := range payments {
		item := ports.ParticipatedContest{Payment: p}
		if c, ok := byID[p.ContestID]; ok {
			item.Deadline = c.Deadline
			item.ContestStatus = c.Status
			item.WinnerStatus = c.Winner.Status
		} else {
			item.ContestMissing = true
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *PaymentService) lookupCache(ctx context.Context, sessionID string) *ports.ConfirmResult {
	if s.cache == nil {
		return nil
	}
	res, ok, err := s.cache.Get(ctx, sessionID)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("confirmation cache lookup failed, reconciling anyway")
		return nil
	}
	if !ok {
		return nil
	}
	res.AlreadyRecorded = true
	return res
}

func (s *PaymentService) storeCache(ctx context.Context, sessionID string, res ports.ConfirmResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, sessionID, res); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to cache confirmation")
	}
}
