// Package main is the entrypoint for the Rallypoint API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rallypoint/rallypoint/internal/bus"
	"github.com/rallypoint/rallypoint/internal/cache"
	"github.com/rallypoint/rallypoint/internal/config"
	"github.com/rallypoint/rallypoint/internal/handler"
	"github.com/rallypoint/rallypoint/internal/metrics"
	"github.com/rallypoint/rallypoint/internal/middleware"
	"github.com/rallypoint/rallypoint/internal/repository"
	"github.com/rallypoint/rallypoint/internal/server"
	"github.com/rallypoint/rallypoint/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize event broker and services
	metricsRecorder := metrics.NewInMemory()
	broker := bus.New(logger, metricsRecorder)

	accountService := service.NewAccountService(repo, []byte(cfg.TokenSecret), logger)
	beaconService := service.NewBeaconService(repo, cacheClient, broker, cfg.BeaconTTL, logger, metricsRecorder)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	accountHandler := handler.NewAccountHandler(accountService, logger)
	beaconHandler := handler.NewBeaconHandler(beaconService, logger)
	landmarkHandler := handler.NewLandmarkHandler(beaconService, logger)
	streamHandler := handler.NewStreamHandler(beaconService, broker, logger)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	// Setup router
	r := setupRouter(routerDeps{
		root:      h,
		health:    healthHandler,
		accounts:  accountHandler,
		beacons:   beaconHandler,
		landmarks: landmarkHandler,
		streams:   streamHandler,
		metrics:   metricsHandler,
		repo:      repo,
		cache:     cacheClient,
		cfg:       cfg,
		logger:    logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Closing the broker ends all live event streams.
	srv.OnShutdown("event broker", func(ctx context.Context) error {
		broker.Close()
		return nil
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routerDeps bundles everything setupRouter needs.
type routerDeps struct {
	root      *handler.Handler
	health    *handler.HealthHandler
	accounts  *handler.AccountHandler
	beacons   *handler.BeaconHandler
	landmarks *handler.LandmarkHandler
	streams   *handler.StreamHandler
	metrics   *handler.MetricsHandler
	repo      *repository.Repository
	cache     *cache.Cache
	cfg       *config.Config
	logger    *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = deps.cfg.IsDevelopment()
	r.Use(middleware.Security(securityCfg))

	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)

	// Root info endpoint
	r.Get("/", deps.root.Hello)

	// Auth middleware configuration. Requests without a valid token
	// proceed anonymously; operations decide what they require.
	authCfg := middleware.AuthConfig{
		Logger:      deps.logger,
		Users:       deps.repo,
		Cache:       deps.cache,
		TokenSecret: []byte(deps.cfg.TokenSecret),
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

		// Accounts
		r.Post("/users", deps.accounts.Register)
		r.Post("/auth/login", deps.accounts.Login)
		r.Get("/users/me", deps.accounts.Me)

		// Beacon sessions
		r.Route("/beacons", func(r chi.Router) {
			r.Get("/nearby", deps.beacons.Nearby)
			r.Post("/", deps.beacons.Create)
			r.Post("/join", deps.beacons.Join)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", deps.beacons.Get)
				r.Put("/location", deps.beacons.UpdateLocation)
				r.Put("/members/me/location", deps.beacons.UpdateMemberLocation)
				r.Put("/leader", deps.beacons.ChangeLeader)

				r.Post("/landmarks", deps.landmarks.Create)
				r.Get("/landmarks", deps.landmarks.List)

				// Live event streams (SSE)
				r.Get("/events/location", deps.streams.BeaconLocation)
				r.Get("/events/members", deps.streams.MemberLocations)
				r.Get("/events/joins", deps.streams.Joins)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(deps.root.NotFound)
	r.MethodNotAllowed(deps.root.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
