package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/contesthub/contest-service/internal/core/domain"
	"github.com/contesthub/contest-service/internal/core/ports"
)

// UserHandler serves user accounts, roles and creator-promotion requests.
type UserHandler struct {
	roles ports.RoleService
}

func NewUserHandler(roles ports.RoleService) *UserHandler {
	return &UserHandler{roles: roles}
}

// Get returns a user's public profile.
//
// @Summary      Get a user by email
// @Tags         users
// @Produce      json
// @Param        email  path      string  true  "User email"
// @Success      200    {object}  domain.User
// @Failure      404    {object}  errorResponse
// @Router       /users/{email} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.roles.GetUser(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Role returns the caller's role.
//
// @Summary      Get the caller's role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  roleResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /role [get]
func (h *UserHandler) Role(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	role, err := h.roles.GetRole(c.Request().Context(), actor.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleResponse{Role: string(role)})
}

// List returns every user.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	users, err := h.roles.ListUsers(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Register creates the caller's account. Registering twice is a no-op.
//
// @Summary      Register the caller
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerUserRequest  true  "Profile"
// @Success      201   {object}  registerUserResponse
// @Success      200   {object}  registerUserResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, created, err := h.roles.Register(c.Request().Context(), ports.RegisterInput{
		Email: actor.Email,
		Name:  req.Name,
		Bio:   req.Bio,
		Image: req.Image,
	})
	if err != nil {
		return err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, registerUserResponse{User: user, Created: created})
}

// SetRole overrides a user's role.
//
// @Summary      Set a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string          true  "User email"
// @Param        body   body      setRoleRequest  true  "New role"
// @Success      200    {object}  messageResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Failure      422    {object}  errorResponse
// @Router       /users/{email}/role [patch]
func (h *UserHandler) SetRole(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.roles.SetRole(c.Request().Context(), c.Param("email"), domain.Role(req.Role), actor); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "role updated"})
}

// UpdateProfile edits the caller's own profile.
//
// @Summary      Update the caller's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile"
// @Success      200   {object}  domain.User
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users/me [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.roles.UpdateProfile(c.Request().Context(), actor.Email, domain.ProfileUpdate{
		Name:  req.Name,
		Bio:   req.Bio,
		Image: req.Image,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ListRequests returns outstanding creator-promotion requests.
//
// @Summary      List creator requests
// @Tags         creator-requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.CreatorRequest
// @Failure      403  {object}  errorResponse
// @Router       /creator-requests [get]
func (h *UserHandler) ListRequests(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	reqs, err := h.roles.ListRequests(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reqs)
}

// RequestPromotion files a creator-promotion request for the caller.
//
// @Summary      Request creator privileges
// @Tags         creator-requests
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  domain.CreatorRequest
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /creator-requests [post]
func (h *UserHandler) RequestPromotion(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	req, err := h.roles.RequestCreatorPromotion(c.Request().Context(), actor.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, req)
}

// ApprovePromotion grants the creator role and removes the request.
//
// @Summary      Approve a creator request
// @Tags         creator-requests
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Requester email"
// @Success      200    {object}  messageResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /creator-requests/{email}/approve [patch]
func (h *UserHandler) ApprovePromotion(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.roles.ApprovePromotion(c.Request().Context(), c.Param("email"), actor); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "creator request approved"})
}

// RejectPromotion drops the request without changing the role.
//
// @Summary      Reject a creator request
// @Tags         creator-requests
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Requester email"
// @Success      200    {object}  messageResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /creator-requests/{email} [delete]
func (h *UserHandler) RejectPromotion(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.roles.RejectPromotion(c.Request().Context(), c.Param("email"), actor); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "creator request rejected"})
}
