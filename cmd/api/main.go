package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/kursadbilgin/registration-engine/internal/config"
	"github.com/kursadbilgin/registration-engine/internal/handler"
	"github.com/kursadbilgin/registration-engine/internal/infra/postgresql"
	"github.com/kursadbilgin/registration-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/registration-engine/internal/infra/redis"
	"github.com/kursadbilgin/registration-engine/internal/mail"
	"github.com/kursadbilgin/registration-engine/internal/notify"
	"github.com/kursadbilgin/registration-engine/internal/observability"
	"github.com/kursadbilgin/registration-engine/internal/password"
	"github.com/kursadbilgin/registration-engine/internal/repository"
	"github.com/kursadbilgin/registration-engine/internal/service"
	"github.com/kursadbilgin/registration-engine/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel, "api")
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("registration-engine api stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := postgresql.NewPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("postgres initialization failed: %w", err)
	}
	if err := migrations.Migrate(db); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("postgres underlying db init failed: %w", err)
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis initialization failed: %w", err)
	}
	defer rdb.Close()

	metrics := observability.NewMetrics()

	cache, err := infraredis.NewSiteConfigCache(rdb, cfg.SettingsCacheTTL())
	if err != nil {
		return err
	}
	limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RegistrationRateLimit, cfg.RegistrationRateWindow())
	if err != nil {
		return err
	}

	renderer, err := notify.NewRenderer(cfg.TemplateDir)
	if err != nil {
		return fmt.Errorf("template loading failed: %w", err)
	}
	mailer, err := newMailTransport(cfg)
	if err != nil {
		return fmt.Errorf("mail transport initialization failed: %w", err)
	}
	hasher, err := password.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}

	settings, err := service.NewSettingsService(repository.NewGormSettingRepo(db), cache, cfg.SiteBasePath, logger)
	if err != nil {
		return err
	}
	registrations, err := service.NewRegistrationService(
		repository.NewGormUserRepo(db),
		repository.NewGormTxManager(db),
		renderer,
		mailer,
		password.NewGenerator(nil),
		hasher,
		logger,
	)
	if err != nil {
		return err
	}
	registrations.SetMetrics(metrics)

	app := fiber.New(fiber.Config{
		AppName:               "registration-engine",
		DisableStartupMessage: true,
		ErrorHandler:          transport.ErrorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(handler.CorrelationMiddleware())
	app.Use(metrics.HTTPMiddleware())

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app, handler.PostgresCheck(sqlDB), handler.RedisCheck(rdb))
	if err := handler.RegisterRegistrationRoutes(app, registrations, settings, limiter, metrics, logger); err != nil {
		return err
	}
	if err := handler.RegisterLanguageRoutes(app, repository.NewGormLanguageRepo(db)); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("registration-engine api started",
			zap.Int("port", cfg.APIPort),
			zap.String("mailTransport", cfg.MailTransport),
		)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout()))
		return app.ShutdownWithTimeout(cfg.ShutdownTimeout())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newMailTransport(cfg *config.Config) (mail.Transport, error) {
	if cfg.MailTransport == config.MailTransportRelay {
		return mail.NewRelayTransport(cfg.MailRelayURL)
	}
	return mail.NewSMTPTransport(mail.SMTPOptions{
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		TLSPolicy: cfg.SMTPTLSPolicy,
		Timeout:   cfg.SMTPTimeout(),
	})
}
