package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	"github.com/contesthub/contest-service/internal/core/domain"
	"github.com/contesthub/contest-service/internal/core/ports"
	"github.com/contesthub/contest-service/internal/pkg/metrics"
)

// PopularPageSize bounds the popular-contests listing.
const PopularPageSize = 6

// ContestService owns contest status transitions, creator edits and deletes,
// and the public listings.
type ContestService struct {
	contests ports.ContestRepository
	users    ports.UserRepository
	counters ports.CounterIncrementer
	log      zerolog.Logger
	now      func() time.Time
}

func NewContestService(
	contests ports.ContestRepository,
	users ports.UserRepository,
	counters ports.CounterIncrementer,
	log zerolog.Logger,
) *ContestService {
	return &ContestService{
		contests: contests,
		users:    users,
		counters: counters,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new pending contest owned by actor and returns its id.
func (s *ContestService) Create(ctx context.Context, d domain.ContestDetails, actor ports.Actor) (string, error) {
	if err := authorize(actor, RequireAuthenticated(), RequireRole(domain.RoleCreator)); err != nil {
		return "", err
	}

	owner, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(actor.Email))
	if err != nil {
		return "", fmt.Errorf("create contest: load creator: %w", err)
	}

	now := s.now()
	c := &domain.Contest{
		Slug:            slug.Make(d.Name),
		Name:            d.Name,
		Description:     d.Description,
		Image:           d.Image,
		ContestType:     d.ContestType,
		EntryFee:        d.EntryFee,
		PrizeMoney:      d.PrizeMoney,
		TaskInstruction: d.TaskInstruction,
		Deadline:        d.Deadline.UTC(),
		Creator:         domain.Creator{Email: owner.Email, Name: owner.Name, Image: owner.Image},
		Status:          domain.ContestPending,
		Winner:          domain.Winner{Status: domain.WinnerPending},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	id, err := s.contests.Create(ctx, c)
	if err != nil {
		s.log.Error().Err(err).Str("creator", owner.Email).Msg("failed to create contest")
		return "", fmt.Errorf("create contest: %w", err)
	}

	s.bumpCounters(ctx, owner.Email, domain.CounterDelta{ContestsCreated: 1}, "contests_created")
	metrics.ContestsCreatedTotal.WithLabelValues(d.ContestType).Inc()

	s.log.Info().Str("contest_id", id).Str("creator", owner.Email).Msg("contest created")
	return id, nil
}

// Edit replaces the editable fields of a pending contest owned by actor.
func (s *ContestService) Edit(ctx context.Context, id string, d domain.ContestDetails, actor ports.Actor) (*domain.Contest, error) {
	if err := authorize(actor, RequireAuthenticated()); err != nil {
		return nil, err
	}

	c, err := s.contests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, RequireOwner(c.Creator.Email)); err != nil {
		return nil, err
	}
	if c.Status != domain.ContestPending {
		return nil, domain.ErrContestNotPending
	}

	d.Deadline = d.Deadline.UTC()
	if err := s.contests.UpdateDetails(ctx, id, c.Creator.Email, d, slug.Make(d.Name), s.now()); err != nil {
		return nil, fmt.Errorf("edit contest: %w", err)
	}

	s.log.Info().Str("contest_id", id).Msg("contest edited")
	return s.contests.FindByID(ctx, id)
}

// Decide approves or rejects a pending contest. The precondition is part of
// the write itself, so two admins racing on one contest produce exactly one
// decision and one counter increment.
func (s *ContestService) Decide(ctx context.Context, id string, outcome domain.ContestStatus, actor ports.Actor) error {
	if err := authorize(actor, RequireAuthenticated(), RequireRole(domain.RoleAdmin)); err != nil {
		return err
	}
	if !domain.ContestPending.CanTransitionTo(outcome) {
		return domain.ErrInvalidOutcome
	}

	if err := s.contests.Decide(ctx, id, outcome, s.now()); err != nil {
		return fmt.Errorf("decide contest: %w", err)
	}

	delta := domain.CounterDelta{Approved: 1}
	if outcome == domain.ContestRejected {
		delta = domain.CounterDelta{Rejected: 1}
	}
	s.bumpCounters(ctx, actor.Email, delta, "admin_"+string(outcome))
	metrics.ContestDecisionsTotal.WithLabelValues(string(outcome)).Inc()

	s.log.Info().Str("contest_id", id).Str("outcome", string(outcome)).Str("admin", actor.Email).Msg("contest decided")
	return nil
}

// Delete removes a contest. Admins may delete anything not approved; creators
// may delete their own contests while pending.
func (s *ContestService) Delete(ctx context.Context, id string, actor ports.Actor) error {
	if err := authorize(actor, RequireAuthenticated()); err != nil {
		return err
	}

	c, err := s.contests.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if actor.Role == domain.RoleAdmin {
		if c.Status == domain.ContestApproved {
			return domain.ErrContestApproved
		}
		if err := s.contests.DeleteUnapproved(ctx, id); err != nil {
			return fmt.Errorf("delete contest: %w", err)
		}
		s.bumpCounters(ctx, actor.Email, domain.CounterDelta{Deleted: 1}, "admin_deleted")
		s.log.Info().Str("contest_id", id).Str("admin", actor.Email).Msg("contest deleted by admin")
		return nil
	}

	if err := authorize(actor, RequireRole(domain.RoleCreator), RequireOwner(c.Creator.Email)); err != nil {
		return err
	}
	if c.Status != domain.ContestPending {
		return domain.ErrContestNotPending
	}
	if err := s.contests.DeletePendingByCreator(ctx, id, c.Creator.Email); err != nil {
		return fmt.Errorf("delete contest: %w", err)
	}

	s.log.Info().Str("contest_id", id).Str("creator", c.Creator.Email).Msg("contest deleted by creator")
	return nil
}

func (s *ContestService) Get(ctx context.Context, id string) (*domain.Contest, error) {
	return s.contests.FindByID(ctx, id)
}

func (s *ContestService) ListApproved(ctx context.Context) ([]*domain.Contest, error) {
	return s.contests.List(ctx, ports.ContestFilter{Status: domain.ContestApproved})
}

// ListPopular returns approved contests with the most participants first.
// limit is clamped to PopularPageSize.
func (s *ContestService) ListPopular(ctx context.Context, limit int) ([]*domain.Contest, error) {
	if limit <= 0 || limit > PopularPageSize {
		limit = PopularPageSize
	}
	return s.contests.List(ctx, ports.ContestFilter{
		Status:       domain.ContestApproved,
		ByPopularity: true,
		Limit:        limit,
	})
}

func (s *ContestService) ListByCreator(ctx context.Context, email string) ([]*domain.Contest, error) {
	return s.contests.List(ctx, ports.ContestFilter{CreatorEmail: domain.NormalizeEmail(email)})
}

func (s *ContestService) ListAll(ctx context.Context, actor ports.Actor) ([]*domain.Contest, error) {
	if err := authorize(actor, RequireAuthenticated(), RequireRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}
	return s.contests.List(ctx, ports.ContestFilter{})
}

// IncrementParticipantCount is reserved for the payment reconciler.
func (s *ContestService) IncrementParticipantCount(ctx context.Context, contestID string) error {
	return s.contests.IncrementParticipants(ctx, contestID)
}

// bumpCounters applies a follow-up counter increment. The primary write has
// already happened, so a failure is logged and counted rather than returned.
func (s *ContestService) bumpCounters(ctx context.Context, email string, delta domain.CounterDelta, label string) {
	if err := s.counters.IncrementCounters(ctx, email, delta); err != nil {
		metrics.CounterUpdateFailuresTotal.WithLabelValues(label).Inc()
		s.log.Error().Err(err).Str("email", email).Str("counter", label).Msg("failed to increment counters")
	}
}
