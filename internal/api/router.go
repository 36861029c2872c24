package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/contesthub/contest-service/internal/api/handler"
	"github.com/contesthub/contest-service/internal/api/middleware"
	"github.com/contesthub/contest-service/internal/core/domain"
	"github.com/contesthub/contest-service/internal/core/ports"
	"github.com/contesthub/contest-service/internal/infrastructure/http/handlers"
)

// Services are the core operations exposed over HTTP.
type Services struct {
	Roles       ports.RoleService
	Contests    ports.ContestService
	Submissions ports.SubmissionService
	Payments    ports.PaymentService
	Winners     ports.WinnerService
}

// RouterOptions carries the transport-level collaborators.
type RouterOptions struct {
	Verifier     ports.IdentityVerifier
	ClientDomain string
	MongoPing    handlers.Pinger
	RedisPing    handlers.Pinger
	Log          zerolog.Logger
	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts RouterOptions) *echo.Echo {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(opts.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{opts.ClientDomain},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "contests",
		Registerer: opts.Registerer,
	}))

	// --- Handlers ---
	users := handler.NewUserHandler(svc.Roles)
	contests := handler.NewContestHandler(svc.Contests)
	submissions := handler.NewSubmissionHandler(svc.Submissions, svc.Winners)
	payments := handler.NewPaymentHandler(svc.Payments)

	auth := middleware.Auth(opts.Verifier)
	loadActor := middleware.LoadActor(svc.Roles)
	withRoles := func(roles ...domain.Role) []echo.MiddlewareFunc {
		return []echo.MiddlewareFunc{auth, loadActor, middleware.RBAC(roles...)}
	}

	authed := []echo.MiddlewareFunc{auth, loadActor}
	registered := withRoles(domain.RoleUser, domain.RoleCreator, domain.RoleAdmin)
	creator := withRoles(domain.RoleCreator)
	admin := withRoles(domain.RoleAdmin)

	// --- Public routes ---
	e.GET("/users/:email", users.Get)
	e.GET("/contests", contests.ListApproved)
	e.GET("/contests/popular", contests.ListPopular)
	e.GET("/contests/:id", contests.Get)
	e.POST("/payments/confirm", payments.Confirm)

	// --- Users ---
	e.POST("/users", users.Register, authed...)
	e.GET("/role", users.Role, registered...)
	e.PATCH("/users/me", users.UpdateProfile, registered...)
	e.GET("/users", users.List, admin...)
	e.PATCH("/users/:email/role", users.SetRole, admin...)

	// --- Creator requests ---
	e.POST("/creator-requests", users.RequestPromotion, registered...)
	e.GET("/creator-requests", users.ListRequests, admin...)
	e.PATCH("/creator-requests/:email/approve", users.ApprovePromotion, admin...)
	e.DELETE("/creator-requests/:email", users.RejectPromotion, admin...)

	// --- Contests ---
	e.POST("/contests", contests.Create, creator...)
	e.PUT("/contests/:id", contests.Edit, creator...)
	e.GET("/my-contests", contests.ListMine, creator...)
	e.DELETE("/my-contests/:id", contests.Delete, creator...)
	e.GET("/admin/contests", contests.ListAll, admin...)
	e.PATCH("/admin/contests/:id/status", contests.Decide, admin...)
	e.DELETE("/admin/contests/:id", contests.Delete, admin...)

	// --- Submissions and winners ---
	e.GET("/contests/:id/submissions", submissions.ListForContest, creator...)
	e.GET("/contests/:id/submissions/me", submissions.GetMine, registered...)
	e.POST("/contests/:id/submissions", submissions.Submit, registered...)
	e.POST("/submissions/:id/winner", submissions.DeclareWinner, creator...)
	e.GET("/my-winnings", submissions.ListWinnings, registered...)

	// --- Payments ---
	e.POST("/payments/checkout", payments.StartCheckout, registered...)
	e.GET("/payments/contests/:id/status", payments.HasPaid, registered...)
	e.GET("/my-participated", payments.ListParticipated, registered...)

	// --- Operations (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(opts.MongoPing, opts.RedisPing)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: opts.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog access entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
