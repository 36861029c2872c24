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

// SubmissionService tracks the single submission each paid participant may
// hold per contest and enforces the contest deadline.
type SubmissionService struct {
	submissions ports.SubmissionRepository
	contests    ports.ContestRepository
	payments    ports.PaymentRepository
	log         zerolog.Logger
	now         func() time.Time
}

func NewSubmissionService(
	submissions ports.SubmissionRepository,
	contests ports.ContestRepository,
	payments ports.PaymentRepository,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		contests:    contests,
		payments:    payments,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Submit records or replaces the participant's link. A repeat submission only
// changes the link and updatedAt; status and judging are preserved.
func (s *SubmissionService) Submit(ctx context.Context, in ports.SubmitInput) (*domain.Submission, error) {
	email := domain.NormalizeEmail(in.Participant.Email)
	if email == "" {
		return nil, domain.ErrUnauthenticated
	}

	contestID := domain.NormalizeContestID(in.ContestID)

	paid, err := s.payments.ExistsPaid(ctx, contestID, email)
	if err != nil {
		return nil, fmt.Errorf("submit: check payment: %w", err)
	}
	if !paid {
		return nil, domain.ErrNotRegistered
	}

	c, err := s.contests.FindByID(ctx, contestID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !c.AcceptsSubmissionsAt(now) {
		return nil, domain.ErrDeadlinePassed
	}

	sub, created, err := s.submissions.Upsert(ctx, &domain.Submission{
		ContestID:        c.ID,
		ParticipantEmail: email,
		ParticipantName:  in.Participant.Name,
		ParticipantImage: in.Participant.Image,
		SubmissionLink:   in.Link,
		Status:           domain.SubmissionPending,
		SubmittedAt:      now,
		UpdatedAt:        now,
	})
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	result := "updated"
	if created {
		result = "created"
	}
	metrics.SubmissionsTotal.WithLabelValues(result).Inc()

	s.log.Info().Str("contest_id", c.ID).Str("email", email).Str("result", result).Msg("submission stored")
	return sub, nil
}

// GetForContest lists a contest's submissions for its creator, newest first.
func (s *SubmissionService) GetForContest(ctx context.Context, contestID string, actor ports.Actor) ([]*domain.Submission, error) {
	if err := authorize(actor, RequireAuthenticated()); err != nil {
		return nil, err
	}

	c, err := s.contests.FindByID(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, RequireOwner(c.Creator.Email)); err != nil {
		return nil, err
	}

	return s.submissions.ListByContest(ctx, c.ID)
}

func (s *SubmissionService) GetMine(ctx context.Context, contestID, email string) (*domain.Submission, error) {
	sub, err := s.submissions.FindByContestAndParticipant(ctx, domain.NormalizeContestID(contestID), domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrSubmissionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}
