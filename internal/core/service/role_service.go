package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/contesthub/contest-service/internal/core/domain"
	"github.com/contesthub/contest-service/internal/core/ports"
)

// RoleService manages users, their roles, creator-promotion requests and the
// per-role action counters.
type RoleService struct {
	users    ports.UserRepository
	requests ports.CreatorRequestRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewRoleService(users ports.UserRepository, requests ports.CreatorRequestRepository, log zerolog.Logger) *RoleService {
	return &RoleService{
		users:    users,
		requests: requests,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user with role "user" and zeroed counters. Registering an
// email twice returns the stored user unchanged.
func (s *RoleService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, bool, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return nil, false, domain.ErrUnauthenticated
	}

	now := s.now()
	user, created, err := s.users.InsertIfAbsent(ctx, &domain.User{
		Email:     email,
		Name:      in.Name,
		Bio:       in.Bio,
		Image:     in.Image,
		Role:      domain.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, false, fmt.Errorf("register user: %w", err)
	}

	if created {
		s.log.Info().Str("email", email).Msg("user registered")
	}
	return user, created, nil
}

func (s *RoleService) GetUser(ctx context.Context, email string) (*domain.User, error) {
	return s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
}

func (s *RoleService) GetRole(ctx context.Context, email string) (domain.Role, error) {
	u, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

func (s *RoleService) ListUsers(ctx context.Context, actor ports.Actor) ([]*domain.User, error) {
	if err := authorize(actor, RequireAuthenticated(), RequireRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// SetRole is the admin override for a user's role.
func (s *RoleService) SetRole(ctx context.Context, email string, role domain.Role, actor ports.Actor) error {
	if err := authorize(actor, RequireAuthenticated(), RequireRole(domain.RoleAdmin)); err != nil {
		return err
	}
	if !role.Valid() {
		return domain.ErrInvalidRole
	}

	email = domain.NormalizeEmail(email)
	if err := s.users.SetRole(ctx, email, role, s.now()); err != nil {
		return fmt.Errorf("set role: %w", err)
	}

	s.log.Info().Str("email", email).Str("role", string(role)).Str("admin", actor.Email).Msg("role updated")
	return nil
}

func (s *RoleService) UpdateProfile(ctx context.Context, email string, p domain.ProfileUpdate) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if err := s.users.UpdateProfile(ctx, email, p, s.now()); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.users.FindByEmail(ctx, email)
}

// RequestCreatorPromotion files a request for email. Only one request per
// email may be outstanding; the unique index decides concurrent attempts.
func (s *RoleService) RequestCreatorPromotion(ctx context.Context, email string) (*domain.CreatorRequest, error) {
	email = domain.NormalizeEmail(email)

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u.Role == domain.RoleCreator || u.Role == domain.RoleAdmin {
		return nil, domain.ErrAlreadyCreator
	}

	req := &domain.CreatorRequest{Email: email, RequestedAt: s.now()}
	if err := s.requests.Create(ctx, req); err != nil {
		if errors.Is(err, domain.ErrAlreadyRequested) {
			return nil, err
		}
		return nil, fmt.Errorf("create creator request: %w", err)
	}

	s.log.Info().Str("email", email).Msg("creator promotion requested")
	return req, nil
}

func (s *RoleService) ListRequests(ctx context.Context, actor ports.Actor) ([]*domain.CreatorRequest, error) {
	if err := authorize(actor, RequireAuthenticated(), RequireRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}
	return s.requests.List(ctx)
}

// ApprovePromotion claims the request by removing it, then promotes the user.
// If the promotion fails the request is put back so that neither half is
// observable on its own.
func (s *RoleService) ApprovePromotion(ctx context.Context, email string, actor ports.Actor) error {
	if err := authorize(actor, RequireAuthenticated(), RequireRole(domain.RoleAdmin)); err != nil {
		return err
	}
	email = domain.NormalizeEmail(email)

	req, err := s.requests.Take(ctx, email)
	if err != nil {
		return err
	}

	if err := s.users.SetRole(ctx, email, domain.RoleCreator, s.now()); err != nil {
		if restoreErr := s.requests.Create(ctx, req); restoreErr != nil {
			s.log.Error().Err(restoreErr).Str("email", email).Msg("failed to restore creator request after promotion failure")
		}
		return fmt.Errorf("approve promotion: %w", err)
	}

	s.log.Info().Str("email", email).Str("admin", actor.Email).Msg("creator promotion approved")
	return nil
}

// RejectPromotion drops the request without touching the user's role.
func (s *RoleService) RejectPromotion(ctx context.Context, email string, actor ports.Actor) error {
	if err := authorize(actor, RequireAuthenticated(), RequireRole(domain.RoleAdmin)); err != nil {
		return err
	}
	email = domain.NormalizeEmail(email)

	if _, err := s.requests.Take(ctx, email); err != nil {
		return err
	}

	s.log.Info().Str("email", email).Str("admin", actor.Email).Msg("creator promotion rejected")
	return nil
}

// IncrementCounters is the single write path for user counters. Failures are
// returned so callers can decide whether they are fatal.
func (s *RoleService) IncrementCounters(ctx context.Context, email string, delta domain.CounterDelta) error {
	if delta.IsZero() {
		return nil
	}
	if err := s.users.Increment(ctx, domain.NormalizeEmail(email), delta); err != nil {
		return fmt.Errorf("increment counters: %w", err)
	}
	return nil
}
