package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/contesthub/contest-service/internal/core/domain"
	"github.com/contesthub/contest-service/internal/core/ports"
)

// SubmissionHandler serves task submissions and winner declaration.
type SubmissionHandler struct {
	submissions ports.SubmissionService
	winners     ports.WinnerService
}

func NewSubmissionHandler(submissions ports.SubmissionService, winners ports.WinnerService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, winners: winners}
}

// ListForContest returns every submission of a contest to its creator.
//
// @Summary      List a contest's submissions
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contest id"
// @Success      200  {array}   domain.Submission
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /contests/{id}/submissions [get]
func (h *SubmissionHandler) ListForContest(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	subs, err := h.submissions.GetForContest(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, subs)
}

// GetMine returns the caller's submission for a contest, if any.
//
// @Summary      Get the caller's submission
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contest id"
// @Success      200  {object}  mySubmissionResponse
// @Router       /contests/{id}/submissions/me [get]
func (h *SubmissionHandler) GetMine(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	sub, err := h.submissions.GetMine(c.Request().Context(), c.Param("id"), actor.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mySubmissionResponse{Submitted: sub != nil, Submission: sub})
}

// Submit records or replaces the caller's entry for a contest.
//
// @Summary      Submit a task
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Contest id"
// @Param        body  body      submitTaskRequest  true  "Submission"
// @Success      200   {object}  domain.Submission
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /contests/{id}/submissions [post]
func (h *SubmissionHandler) Submit(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req submitTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	sub, err := h.submissions.Submit(c.Request().Context(), ports.SubmitInput{
		ContestID: c.Param("id"),
		Participant: domain.Participant{
			Email: actor.Email,
			Name:  req.ParticipantName,
			Image: req.ParticipantImage,
		},
		Link: req.SubmissionLink,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sub)
}

// DeclareWinner makes a submission the winner of its contest.
//
// @Summary      Declare a winner
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Submission id"
// @Success      200  {object}  domain.Contest
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /submissions/{id}/winner [post]
func (h *SubmissionHandler) DeclareWinner(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	contest, err := h.winners.Declare(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contest)
}

// ListWinnings returns the contests the caller has won.
//
// @Summary      List the caller's winnings
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Contest
// @Router       /my-winnings [get]
func (h *SubmissionHandler) ListWinnings(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	contests, err := h.winners.ListWinnings(c.Request().Context(), actor.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contests)
}
