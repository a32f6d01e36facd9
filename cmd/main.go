// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/auth"
	"github.com/Shivanand-hulikatti/campus-events/internal/config"
	"github.com/Shivanand-hulikatti/campus-events/internal/database"
	"github.com/Shivanand-hulikatti/campus-events/internal/handler"
	"github.com/Shivanand-hulikatti/campus-events/internal/logger"
	"github.com/Shivanand-hulikatti/campus-events/internal/metrics"
	"github.com/Shivanand-hulikatti/campus-events/internal/middleware"
	"github.com/Shivanand-hulikatti/campus-events/internal/realtime"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"github.com/Shivanand-hulikatti/campus-events/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger.SetupDefault()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Database ───────────────────────────────────────────────────────
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("migrations")
	}
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()
	log.Info().Msg("connected to PostgreSQL")

	// ── 2. Metrics and realtime plumbing ─────────────────────────────────
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	hub := realtime.NewHub()
	listener := realtime.NewListener(pool, hub)

	// ── 3. Repositories and services ─────────────────────────────────────
	userRepo := repository.NewPostgresUserRepo(pool)
	eventRepo := repository.NewPostgresEventRepo(pool)
	regRepo := repository.NewPostgresRegistrationRepo(pool)
	sessionRepo := repository.NewPostgresSessionRepo(pool)
	tokenRepo := repository.NewPostgresVerificationTokenRepo(pool)

	authSvc := auth.NewService(userRepo, sessionRepo, tokenRepo, auth.Config{
		JWTSecret:      cfg.JWTSecret,
		SessionTTL:     cfg.SessionTTL,
		VerifyTokenTTL: cfg.VerifyTokenTTL,
		BaseURL:        cfg.BaseURL,
		GoogleClientID: cfg.GoogleClientID,
	})
	eventSvc := service.NewEventService(eventRepo, hub)
	regSvc := service.NewRegistrationService(regRepo, hub, collector)
	userSvc := service.NewUserService(userRepo)

	// ── 4. HTTP layer ────────────────────────────────────────────────────
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralPerMinute:  cfg.RateLimitGeneral,
		RegisterPerMinute: cfg.RateLimitRegister,
		CleanupInterval:   5 * time.Minute,
	})
	defer rateLimiter.Stop()

	router := handler.NewRouter(handler.RouterDeps{
		Auth:          handler.NewAuthHandler(authSvc),
		Events:        handler.NewEventHandler(eventSvc),
		Registrations: handler.NewRegistrationHandler(regSvc, eventSvc, collector),
		Users:         handler.NewUserHandler(userSvc),
		Resolver:      authSvc,
		RateLimiter:   rateLimiter,
		Recorder:      collector,
		AllowedOrigin: cfg.CORSAllowedOrigin,
	})

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	metricsSrv := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metrics.Handler(registry),
	}

	// ── 5. Run everything until a shutdown signal ────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", metricsSrv.Addr).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return listener.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}
