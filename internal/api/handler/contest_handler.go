package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/contesthub/contest-service/internal/core/domain"
	"github.com/contesthub/contest-service/internal/core/ports"
)

// ContestHandler serves the contest lifecycle.
type ContestHandler struct {
	contests ports.ContestService
}

func NewContestHandler(contests ports.ContestService) *ContestHandler {
	return &ContestHandler{contests: contests}
}

// ListApproved returns every approved contest, newest first.
//
// @Summary      List approved contests
// @Tags         contests
// @Produce      json
// @Success      200  {array}  domain.Contest
// @Router       /contests [get]
func (h *ContestHandler) ListApproved(c echo.Context) error {
	contests, err := h.contests.ListApproved(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contests)
}

// ListPopular returns approved contests ordered by participant count.
//
// @Summary      List popular contests
// @Tags         contests
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of contests (default 6)"
// @Success      200    {array}   domain.Contest
// @Failure      400    {object}  errorResponse
// @Router       /contests/popular [get]
func (h *ContestHandler) ListPopular(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}

	contests, err := h.contests.ListPopular(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contests)
}

// Get returns one contest.
//
// @Summary      Get a contest
// @Tags         contests
// @Produce      json
// @Param        id   path      string  true  "Contest id"
// @Success      200  {object}  domain.Contest
// @Failure      404  {object}  errorResponse
// @Router       /contests/{id} [get]
func (h *ContestHandler) Get(c echo.Context) error {
	contest, err := h.contests.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contest)
}

// Create submits a new contest for admin review.
//
// @Summary      Create a contest
// @Tags         contests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      contestRequest  true  "Contest details"
// @Success      201   {object}  createdResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /contests [post]
func (h *ContestHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req contestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	id, err := h.contests.Create(c.Request().Context(), req.toDetails(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createdResponse{ID: id})
}

// Edit replaces the details of a pending contest.
//
// @Summary      Edit a pending contest
// @Tags         contests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Contest id"
// @Param        body  body      contestRequest  true  "Contest details"
// @Success      200   {object}  domain.Contest
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /contests/{id} [put]
func (h *ContestHandler) Edit(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req contestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	contest, err := h.contests.Edit(c.Request().Context(), c.Param("id"), req.toDetails(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contest)
}

// ListMine returns the caller's contests in every status.
//
// @Summary      List the caller's contests
// @Tags         contests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Contest
// @Failure      403  {object}  errorResponse
// @Router       /my-contests [get]
func (h *ContestHandler) ListMine(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	contests, err := h.contests.ListByCreator(c.Request().Context(), actor.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contests)
}

// Delete removes a contest. Creators may delete their own pending contests;
// admins may delete any contest that is not approved.
//
// @Summary      Delete a contest
// @Tags         contests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contest id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /my-contests/{id} [delete]
// @Router       /admin/contests/{id} [delete]
func (h *ContestHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.contests.Delete(c.Request().Context(), c.Param("id"), actor); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "contest deleted"})
}

// ListAll returns every contest regardless of status.
//
// @Summary      List all contests
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Contest
// @Failure      403  {object}  errorResponse
// @Router       /admin/contests [get]
func (h *ContestHandler) ListAll(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	contests, err := h.contests.ListAll(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contests)
}

// Decide approves or rejects a pending contest.
//
// @Summary      Approve or reject a contest
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Contest id"
// @Param        body  body      decideContestRequest  true  "Decision"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /admin/contests/{id}/status [patch]
func (h *ContestHandler) Decide(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req decideContestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.contests.Decide(c.Request().Context(), c.Param("id"), domain.ContestStatus(req.Status), actor); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "contest " + req.Status})
}
