package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"statementapi/docs"
	"statementapi/internal/audit"
	"statementapi/internal/auth"
	"statementapi/internal/config"
	"statementapi/internal/database"
	"statementapi/internal/database/migration"
	handlers "statementapi/internal/http/handler"
	"statementapi/internal/http/middleware"
	"statementapi/internal/logging"
	"statementapi/internal/metrics"
	"statementapi/internal/notify"
	"statementapi/internal/otel"
	"statementapi/internal/repository/postgres"
	"statementapi/internal/service"
	"statementapi/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// @title Financial Statement API
// @version 1.0
// @description Tokenized download links for financial statements.
// @BasePath /
func main() {
	if err := run(); err != nil {
		// logger may not exist yet
		os.Stderr.WriteString("statementapi: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel, os.Stdout)
	defer log.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return err
	}
	if cfg.Links.Secret == "" {
		log.Warn("LINK_SECRET not set, using the built-in development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return err
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Error("failed to migrate database", zap.Error(err))
		return err
	}

	objStore, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Error("failed to initialize object storage", zap.Error(err))
		return err
	}
	log.Info("object storage ready",
		zap.String("driver", cfg.Storage.Driver),
		zap.String(logging.FieldBucket, storage.Bucket(cfg.Storage)),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	domainMetrics, err := metrics.New(reg)
	if err != nil {
		return err
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	statementRepo := postgres.NewStatementPostgres(db)
	shareRepo := postgres.NewShareLogPostgres(db)
	accessRepo := postgres.NewAccessLogPostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	requestRepo := postgres.NewAccessRequestPostgres(db)

	recorder := audit.NewRecorder(shareRepo, accessRepo, log)

	trustedOrigins := cfg.TrustedOrigins
	if len(trustedOrigins) == 0 && cfg.PublicBaseURL != "" {
		trustedOrigins = []string{cfg.PublicBaseURL}
	}

	statementSvc := service.NewStatementService(objStore, statementRepo)
	linkSvc := service.NewLinkService(statementRepo, shareRepo, recorder, domainMetrics, service.LinkOptions{
		Secret:     cfg.LinkSecret(),
		DefaultTTL: cfg.Links.DefaultTTL,
		MaxTTL:     cfg.Links.MaxTTL,
		Window:     cfg.Links.TokenWindow,
		BaseURL:    cfg.PublicBaseURL,
	}, log)
	downloadSvc := service.NewDownloadService(statementRepo, shareRepo, accessRepo, objStore, recorder, domainMetrics, service.DownloadOptions{
		Secret:         cfg.LinkSecret(),
		Window:         cfg.Links.TokenWindow,
		CacheMaxAge:    cfg.Links.CacheMaxAge,
		LegacyPathOpen: cfg.Links.LegacyPathOpen,
		TrustedOrigins: trustedOrigins,
	}, log)
	sessions := auth.NewSessionManager(cfg.SessionKey(), cfg.Auth.SessionTTL)
	accountSvc := service.NewAccountService(userRepo, requestRepo, sessions, notify.New(cfg.Mail), log)

	if cfg.Auth.BootstrapAdminEmail != "" {
		if _, err := accountSvc.EnsureSuperAdmin(ctx, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPassword); err != nil {
			log.Error("failed to bootstrap super admin", zap.Error(err))
			return err
		}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		BodyLimit:             32 << 20,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:         db,
		Statements: statementSvc,
		Links:      linkSvc,
		Downloads:  downloadSvc,
		Accounts:   accountSvc,
		Cookie: handlers.SessionCookie{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure || cfg.IsProduction(),
		},
		Log: log,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("server listening", zap.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", zap.Error(err))
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := app.ShutdownWithContext(sctx); err != nil {
		errs = append(errs, err)
	}
	recorder.Wait()
	if err := shutdownTracing(sctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
