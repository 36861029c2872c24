package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/contesthub/contest-service/internal/core/domain"
)

// RoleLookup resolves the stored role of a registered user.
type RoleLookup interface {
	GetRole(ctx context.Context, email string) (domain.Role, error)
}

// LoadActor looks up the role of the authenticated email. Principals that
// have not registered yet pass through with no role so that registration
// itself stays reachable.
func LoadActor(users RoleLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email, _ := c.Get(EmailKey).(string)
			if email == "" {
				return domain.ErrUnauthenticated
			}

			role, err := users.GetRole(c.Request().Context(), email)
			switch {
			case err == nil:
				c.Set(RoleKey, string(role))
			case errors.Is(err, domain.ErrUserNotFound):
				c.Set(RoleKey, "")
			default:
				return err
			}
			return next(c)
		}
	}
}
