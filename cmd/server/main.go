// @title                       Contest Hub API
// @version                     1.0
// @description                 Contest lifecycle, submissions, payments and winner selection.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/contesthub/contest-service/docs"
	"github.com/contesthub/contest-service/internal/api"
	"github.com/contesthub/contest-service/internal/core/ports"
	"github.com/contesthub/contest-service/internal/core/service"
	mongodb "github.com/contesthub/contest-service/internal/infrastructure/db/mongo"
	redisdb "github.com/contesthub/contest-service/internal/infrastructure/db/redis"
	"github.com/contesthub/contest-service/internal/infrastructure/http/handlers"
	"github.com/contesthub/contest-service/internal/infrastructure/identity"
	"github.com/contesthub/contest-service/internal/infrastructure/payment"
	"github.com/contesthub/contest-service/internal/pkg/config"
	"github.com/contesthub/contest-service/pkg/logger"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "contest-service",
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found; relying on existing environment")
	}

	ctx := context.Background()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongodb")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		// The cache is a fast path only; confirmations stay correct without it.
		log.Warn().Err(err).Msg("redis unavailable, payment confirmation cache disabled")
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	requests := mongodb.NewCreatorRequestRepository(db)
	contests := mongodb.NewContestRepository(db)
	submissions := mongodb.NewSubmissionRepository(db)
	payments := mongodb.NewPaymentRepository(db)

	// --- External providers ---
	verifier := identity.NewJWTVerifier(identity.Config{
		Secret:   cfg.Identity.Secret,
		Issuer:   cfg.Identity.Issuer,
		Audience: cfg.Identity.Audience,
	})
	gateway := payment.NewStripeGateway(payment.Config{
		SecretKey:    cfg.Stripe.SecretKey,
		Currency:     cfg.Stripe.Currency,
		ClientDomain: cfg.ClientDomain,
		Timeout:      cfg.Stripe.Timeout,
	}, logger.Component("stripe"))

	// --- Services ---
	roleSvc := service.NewRoleService(users, requests, logger.Component("roles"))
	contestSvc := service.NewContestService(contests, users, roleSvc, logger.Component("contests"))
	submissionSvc := service.NewSubmissionService(submissions, contests, payments, logger.Component("submissions"))
	winnerSvc := service.NewWinnerService(contests, submissions, roleSvc, logger.Component("winners"))

	var cache ports.ConfirmationCache
	if rdb != nil {
		cache = redisdb.NewConfirmationCache(rdb, cfg.Redis.CacheTTL)
	}
	paymentSvc := service.NewPaymentService(payments, contests, contestSvc, roleSvc, gateway, cache, logger.Component("payments"))

	e := api.NewRouter(api.Services{
		Roles:       roleSvc,
		Contests:    contestSvc,
		Submissions: submissionSvc,
		Payments:    paymentSvc,
		Winners:     winnerSvc,
	}, api.RouterOptions{
		Verifier:     verifier,
		ClientDomain: cfg.ClientDomain,
		MongoPing:    handlers.MongoPinger(db),
		RedisPing:    handlers.RedisPinger(rdb),
		Log:          logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("contest service listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.ShutdownTimeout))
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	log.Info().Msg("contest service stopped")
}

func shutdownTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}
