package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"bizprofile/docs"
	"bizprofile/internal/broker"
	"bizprofile/internal/config"
	"bizprofile/internal/database"
	"bizprofile/internal/database/migration"
	handlers "bizprofile/internal/http/handler"
	"bizprofile/internal/http/middleware"
	applog "bizprofile/internal/log"
	"bizprofile/internal/otel"
	"bizprofile/internal/repository/postgres"
	"bizprofile/internal/service"
	"bizprofile/internal/storage"
)

// @title       Business Profile API
// @version     1.0
// @BasePath    /api
func main() {
	cfg := config.Load()
	log := applog.New(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to initialize blob storage")
	}

	brokerClient, err := broker.NewClient(cfg.Auth.BrokerURL, cfg.Auth.BrokerTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth broker client")
	}

	userRepo := postgres.NewUserPostgres(db)
	sessionRepo := postgres.NewSessionPostgres(db)
	businessRepo := postgres.NewBusinessPostgres(db)

	sessions := service.NewSessionManager(sessionRepo, userRepo, cfg.Auth.SessionTTL, log)
	authSvc := service.NewAuthService(brokerClient, userRepo, sessions, log)
	businessSvc := service.NewBusinessService(businessRepo, store, log)
	uploadSvc := service.NewUploadService(businessRepo, store, cfg.APIPrefix, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg, "/healthz", "/health")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	app := fiber.New(fiber.Config{
		AppName:               "bizprofile",
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             cfg.BodyLimitBytes,
		DisableStartupMessage: cfg.Environment == "production",
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.Environment != "production"}))
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())
	app.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:         db,
		Sessions:   sessions,
		Auth:       authSvc,
		Businesses: businessSvc,
		Uploads:    uploadSvc,
		Cookie: handlers.CookieConfig{
			Secure: cfg.Auth.CookieSecure,
			MaxAge: cfg.Auth.SessionTTL,
		},
		RateLimiter: middleware.NewRateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst),
		Metrics:     reg,
		Prefix:      cfg.APIPrefix,
	})

	// Swagger UI with dynamic host and scheme
	docs.SwaggerInfo.BasePath = cfg.APIPrefix
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("storage", cfg.Storage.Driver).Msg("server starting")
		serverErr <- app.Listen(addr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown failed")
	}
}

// corsConfig allows credentialed requests from the configured origins. A
// wildcard cannot be combined with credentials, so "*" disables them.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Session-ID, X-Request-ID",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
		ExposeHeaders:    "X-Request-ID, Content-Disposition",
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowOrigins = "*"
			cfg.AllowCredentials = false
			break
		}
	}
	return cfg
}
