package service

import (
	"github.com/contesthub/contest-service/internal/core/domain"
	"github.com/contesthub/contest-service/internal/core/ports"
)

// Guard is a precondition on the acting principal, evaluated before an
// operation touches any state.
type Guard func(actor ports.Actor) error

// RequireAuthenticated rejects actors without a verified email.
func RequireAuthenticated() Guard {
	return func(actor ports.Actor) error {
		if actor.Email == "" {
			return domain.ErrUnauthenticated
		}
		return nil
	}
}

// RequireRole admits actors holding any of roles.
func RequireRole(roles ...domain.Role) Guard {
	return func(actor ports.Actor) error {
		for _, r := range roles {
			if actor.Role == r {
				return nil
			}
		}
		return domain.ErrForbidden
	}
}

// RequireOwner admits only the actor whose email is owner.
func RequireOwner(owner string) Guard {
	return func(actor ports.Actor) error {
		if owner == "" || domain.NormalizeEmail(actor.Email) != domain.NormalizeEmail(owner) {
			return domain.ErrForbidden
		}
		return nil
	}
}

// authorize runs guards in order and returns the first failure.
func authorize(actor ports.Actor, guards ...Guard) error {
	for _, g := range guards {
		if err := g(actor); err != nil {
			return err
		}
	}
	return nil
}
