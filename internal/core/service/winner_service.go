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

// WinnerService declares the single winner of a contest and fans the result
// out to submissions and user counters.
type WinnerService struct {
	contests    ports.ContestRepository
	submissions ports.SubmissionRepository
	counters    ports.CounterIncrementer
	log         zerolog.Logger
	now         func() time.Time
}

func NewWinnerService(
	contests ports.ContestRepository,
	submissions ports.SubmissionRepository,
	counters ports.CounterIncrementer,
	log zerolog.Logger,
) *WinnerService {
	return &WinnerService{
		contests:    contests,
		submissions: submissions,
		counters:    counters,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Declare makes the given submission the winner of its contest.
//
// The winner slot is claimed with a conditional write on winner.status before
// any submission is graded, so when two declarations race only the one that
// claimed the slot moves counters. Grading is idempotent: a failed grading
// pass is returned to the caller, and repeating the declaration for the
// already-declared submission grades again without touching counters.
func (s *WinnerService) Declare(ctx context.Context, submissionID string, actor ports.Actor) (*domain.Contest, error) {
	if err := authorize(actor, RequireAuthenticated()); err != nil {
		return nil, err
	}

	sub, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	c, err := s.contests.FindByID(ctx, sub.ContestID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, RequireOwner(c.Creator.Email)); err != nil {
		return nil, err
	}
	if c.Winner.Status == domain.WinnerDeclared {
		if c.Winner.SubmissionID == sub.ID {
			if err := s.grade(ctx, c, sub.ID, declaredAt(c.Winner, s.now())); err != nil {
				return nil, err
			}
		}
		metrics.WinnerDeclarationsTotal.WithLabelValues("already_declared").Inc()
		return nil, domain.ErrAlreadyDeclared
	}

	now := s.now()
	winner := domain.Winner{
		Status:       domain.WinnerDeclared,
		Name:         sub.ParticipantName,
		Email:        sub.ParticipantEmail,
		Image:        sub.ParticipantImage,
		SubmissionID: sub.ID,
		DeclaredAt:   &now,
	}
	if err := s.contests.ClaimWinner(ctx, c.ID, winner); err != nil {
		if errors.Is(err, domain.ErrAlreadyDeclared) {
			metrics.WinnerDeclarationsTotal.WithLabelValues("already_declared").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("declare winner: %w", err)
	}

	s.bump(ctx, sub.ParticipantEmail, domain.CounterDelta{ContestsWon: 1, TotalWinnings: c.PrizeMoney}, "contests_won")
	s.bump(ctx, c.Creator.Email, domain.CounterDelta{ContestsCompleted: 1, TotalPrizePaid: c.PrizeMoney}, "contests_completed")

	if err := s.grade(ctx, c, sub.ID, now); err != nil {
		return nil, err
	}

	metrics.WinnerDeclarationsTotal.WithLabelValues("declared").Inc()
	s.log.Info().
		Str("contest_id", c.ID).
		Str("submission_id", sub.ID).
		Str("winner", sub.ParticipantEmail).
		Float64("prize", c.PrizeMoney).
		Msg("winner declared")

	c.Winner = winner
	return c, nil
}

// ListWinnings returns the contests the participant has won.
func (s *WinnerService) ListWinnings(ctx context.Context, email string) ([]*domain.Contest, error) {
	return s.contests.List(ctx, ports.ContestFilter{WinnerEmail: domain.NormalizeEmail(email)})
}

// grade marks winnerID as the winner and every sibling as not selected.
func (s *WinnerService) grade(ctx context.Context, c *domain.Contest, winnerID string, at time.Time) error {
	if err := s.submissions.MarkResults(ctx, c.ID, winnerID, at); err != nil {
		metrics.WinnerDeclarationsTotal.WithLabelValues("grading_failed").Inc()
		s.log.Error().Err(err).Str("contest_id", c.ID).Str("submission_id", winnerID).Msg("failed to grade submissions")
		return fmt.Errorf("declare winner: grade submissions: %w", err)
	}
	return nil
}

func declaredAt(w domain.Winner, fallback time.Time) time.Time {
	if w.DeclaredAt != nil {
		return *w.DeclaredAt
	}
	return fallback
}

func (s *WinnerService) bump(ctx context.Context, email string, delta domain.CounterDelta, label string) {
	if err := s.counters.IncrementCounters(ctx, email, delta); err != nil {
		metrics.CounterUpdateFailuresTotal.WithLabelValues(label).Inc()
		s.log.Error().Err(err).Str("email", email).Str("counter", label).Msg("failed to increment counters")
	}
}
