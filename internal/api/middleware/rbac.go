package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/contesthub/contest-service/internal/core/domain"
)

// RBAC admits requests whose loaded role is one of allowedRoles. Rejections
// are returned as domain errors so the central error handler renders them.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(RoleKey).(string)
			if role == "" {
				return domain.ErrRegistrationRequired
			}
			if _, ok := allowed[domain.Role(role)]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
