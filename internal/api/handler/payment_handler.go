package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/contesthub/contest-service/internal/core/domain"
	"github.com/contesthub/contest-service/internal/core/ports"
)

// PaymentHandler serves checkout and payment reconciliation.
type PaymentHandler struct {
	payments ports.PaymentService
}

func NewPaymentHandler(payments ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// StartCheckout opens a hosted checkout session for the caller.
//
// @Summary      Start checkout for a contest
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      checkoutRequest  true  "Checkout"
// @Success      200   {object}  checkoutResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /payments/checkout [post]
func (h *PaymentHandler) StartCheckout(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	url, err := h.payments.StartCheckout(c.Request().Context(), ports.CheckoutInput{
		ContestID: req.ContestID,
		Participant: domain.Participant{
			Email: actor.Email,
			Name:  req.Participant.Name,
			Image: req.Participant.Image,
		},
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, checkoutResponse{URL: url})
}

// Confirm reconciles a checkout session into a payment. Safe to call any
// number of times for the same session.
//
// @Summary      Confirm a checkout session
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      confirmPaymentRequest  true  "Session"
// @Success      200   {object}  ports.ConfirmResult
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /payments/confirm [post]
func (h *PaymentHandler) Confirm(c echo.Context) error {
	var req confirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.payments.Confirm(c.Request().Context(), req.SessionID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// HasPaid reports whether the caller has paid for a contest.
//
// @Summary      Check registration for a contest
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contest id"
// @Success      200  {object}  hasPaidResponse
// @Router       /payments/contests/{id}/status [get]
func (h *PaymentHandler) HasPaid(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	paid, err := h.payments.HasPaid(c.Request().Context(), c.Param("id"), actor.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hasPaidResponse{Paid: paid})
}

// ListParticipated returns the caller's payments joined with contest state.
//
// @Summary      List contests the caller entered
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  participatedResponse
// @Router       /my-participated [get]
func (h *PaymentHandler) ListParticipated(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	items, err := h.payments.ListMine(c.Request().Context(), actor.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toParticipatedResponse(items))
}
