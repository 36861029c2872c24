package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/contesthub/contest-service/internal/api/middleware"
	"github.com/contesthub/contest-service/internal/core/domain"
	"github.com/contesthub/contest-service/internal/core/ports"
)

// actorFrom reads the principal injected by the Auth and LoadActor
// middleware. A missing email means the route was not wrapped by Auth.
func actorFrom(c echo.Context) (ports.Actor, error) {
	email, _ := c.Get(middleware.EmailKey).(string)
	if email == "" {
		return ports.Actor{}, domain.ErrUnauthenticated
	}
	role, _ := c.Get(middleware.RoleKey).(string)
	return ports.Actor{Email: email, Role: domain.Role(role)}, nil
}
