package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"runclub-dashboard/internal/config"
	"runclub-dashboard/internal/database"
	"runclub-dashboard/internal/handlers"
	"runclub-dashboard/internal/metrics"
	"runclub-dashboard/internal/middleware"
	"runclub-dashboard/internal/poller"
	"runclub-dashboard/internal/roster"
	"runclub-dashboard/internal/scheduler"
	"runclub-dashboard/internal/strava"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Set up logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting runclub-dashboard server",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.DatabasePath,
		"club_id", cfg.StravaClubID,
		"log_level", cfg.LogLevel)

	// Open database
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("Database opened successfully")

	// Load roster
	clubRoster, err := roster.Load(cfg.RosterPath)
	if err != nil {
		logger.Error("Failed to load roster", "error", err)
		os.Exit(1)
	}
	logger.Info("Roster loaded", "members", len(clubRoster.Members()))

	// Create Strava client and poller
	stravaClient := strava.NewClient(cfg.StravaClientID, cfg.StravaClientSecret)
	feedPoller := poller.New(cfg, db, stravaClient)

	// Create handlers
	pollHandler := handlers.NewPollHandler(cfg, feedPoller)
	refreshHandler := handlers.NewRefreshHandler(db, feedPoller)
	queryHandler := handlers.NewQueryHandler(db, cfg, clubRoster)
	oauthHandler := handlers.NewOAuthHandler(cfg, db, stravaClient)

	// Set up HTTP routes
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.MetricsMiddleware(metrics.EndpointClubPoll)).
			Get("/cron/club-poll", pollHandler.HandlePoll)
		r.With(middleware.MetricsMiddleware(metrics.EndpointClubPoll)).
			Post("/cron/club-poll", pollHandler.HandlePoll)

		r.With(middleware.MetricsMiddleware(metrics.EndpointPublicRefresh)).
			Post("/public/refresh", refreshHandler.HandleRefresh)

		r.With(middleware.MetricsMiddleware(metrics.EndpointClubStats)).
			Get("/club/stats", queryHandler.HandleClubStats)
		r.With(middleware.MetricsMiddleware(metrics.EndpointTimeseries)).
			Get("/club/timeseries", queryHandler.HandleTimeseries)
		r.With(middleware.MetricsMiddleware(metrics.EndpointLatest)).
			Get("/club/latest", queryHandler.HandleLatest)
		r.With(middleware.MetricsMiddleware(metrics.EndpointActivities)).
			Get("/activities/{period}", queryHandler.HandleActivities)
		r.With(middleware.MetricsMiddleware(metrics.EndpointAthletes)).
			Get("/athletes", queryHandler.HandleAthletes)
		r.With(middleware.MetricsMiddleware(metrics.EndpointTrainingData)).
			Get("/athletes/training_data", queryHandler.HandleTrainingData)
		r.With(middleware.MetricsMiddleware(metrics.EndpointTeamStats)).
			Get("/team_stats", queryHandler.HandleTeamStats)
		r.With(middleware.MetricsMiddleware(metrics.EndpointWeeklyWinners)).
			Get("/weekly_winners", queryHandler.HandleWeeklyWinners)

		r.With(middleware.MetricsMiddleware(metrics.EndpointOAuthStart)).
			Get("/auth/strava/start", oauthHandler.HandleAuthStart)
		r.With(middleware.MetricsMiddleware(metrics.EndpointOAuthCallback)).
			Get("/auth/strava/callback", oauthHandler.HandleCallback)
	})

	r.With(middleware.MetricsMiddleware(metrics.EndpointHealth)).
		Get("/health", queryHandler.HandleHealth)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second, // a full poll can take a while
		IdleTimeout:  120 * time.Second,
	}

	// Start optional cron poll trigger
	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	defer backgroundCancel()

	pollScheduler := scheduler.New(cfg, feedPoller)
	if err := pollScheduler.Start(backgroundCtx); err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// Start storage gauge collector if metrics are enabled
	if cfg.MetricsEnabled {
		go func() {
			logger.Info("Starting storage collector")
			metrics.StartStorageCollector(backgroundCtx, db, 15*time.Second)
		}()
	}

	// Start metrics server if enabled
	var metricsServer *http.Server
	if cfg.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())

		metricsAddr := fmt.Sprintf("%s:%d", cfg.MetricsHost, cfg.MetricsPort)
		metricsServer = &http.Server{
			Addr:    metricsAddr,
			Handler: metricsMux,
		}

		go func() {
			logger.Info("Metrics server listening", "addr", metricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Start HTTP server in background
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down gracefully...")

	backgroundCancel()
	pollScheduler.Stop()

	// Shutdown HTTP servers with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server shutdown failed", "error", err)
		}
	}

	logger.Info("Server stopped")
}
