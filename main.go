package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/meinhoongagan/carehub/config"
	"github.com/meinhoongagan/carehub/controllers"
	"github.com/meinhoongagan/carehub/controllers/caregiver"
	"github.com/meinhoongagan/carehub/controllers/consumer"
	"github.com/meinhoongagan/carehub/cron"
	"github.com/meinhoongagan/carehub/db"
	"github.com/meinhoongagan/carehub/events"
	"github.com/meinhoongagan/carehub/logging"
	"github.com/meinhoongagan/carehub/metrics"
	"github.com/meinhoongagan/carehub/middleware"
	cache "github.com/meinhoongagan/carehub/redis"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/meinhoongagan/carehub/routes"
	"github.com/meinhoongagan/carehub/service"
	"github.com/meinhoongagan/carehub/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "carehub: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(conn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	store := repository.NewGormStore(conn)

	checks := map[string]controllers.Check{
		"database": func(ctx context.Context) error { return db.Ping(ctx, conn) },
	}
	var limiter middleware.Limiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewLocalLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return cache.Ping(ctx, rdb) }
		if cfg.RateLimit.Enabled {
			limiter = cache.NewRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		}
	}

	var mailer service.Mailer
	if cfg.Mail.Enabled() {
		mailer = utils.NewMailer(cfg.Mail)
	}

	clock := service.Clock(service.SystemClock)
	bus := events.NewEventBus(logger)
	profiles := service.NewProfileAggregator(store, clock, logger)
	stats := service.NewBookingStats(store, clock, logger)
	ratings := service.NewRatingAccumulator(store, logger)
	search := service.NewSearchEngine(store, profiles, logger)
	dashboards := service.NewDashboardComposer(store, stats, clock, logger)
	caregivers := service.NewCaregiverManager(store, profiles, stats, clock, logger)
	bookings := service.NewBookingManager(store, stats, bus, clock, logger)
	reviews := service.NewReviewService(store, ratings, bus, logger)
	admins := service.NewAdminService(store, profiles, bus, logger)
	catalog := service.NewCatalog(store, logger)
	users := service.NewUserService(store, logger)
	notifier := service.NewNotifier(store, mailer, clock, logger)
	notifier.Subscribe(bus)

	if cfg.Catalog.SeedDefaults {
		if _, err := catalog.SeedDefaults(ctx); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	if _, err := admins.Bootstrap(ctx, users, cfg.Admin.BootstrapEmail, cfg.Admin.BootstrapPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	app := routes.NewApp(cfg.Server, limiter, logger)
	metrics.Register()
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	routes.Setup(app, &routes.Handlers{
		Auth: controllers.NewAuthController(users, mailer, controllers.AuthSettings{
			Secret:          cfg.Auth.JWTSecret,
			TokenTTL:        cfg.Auth.TokenTTL,
			VerificationTTL: cfg.Auth.VerificationTTL,
			VerifyURL:       cfg.Auth.VerifyURL,
		}, clock, logger),
		Users:         controllers.NewUserController(users),
		Services:      controllers.NewServiceController(catalog),
		Bookings:      controllers.NewBookingController(bookings),
		Notifications: controllers.NewNotificationController(notifier),
		Permissions:   controllers.NewPermissionController(admins),
		Approvals:     controllers.NewApprovalController(admins),
		Dashboard:     controllers.NewDashboardController(dashboards),
		Health:        controllers.NewHealthController(checks, logger),
		Caregivers:    consumer.NewCaregiverController(search, profiles, caregivers),
		Reviews:       consumer.NewReviewController(reviews),
		Caregiver:     caregiver.NewController(profiles, caregivers),
		Protected:     middleware.Protected(cfg.Auth.JWTSecret),
		Checker:       admins,
		Logger:        logger,
	})

	scheduler, err := cron.New(cfg.Jobs, notifier, logger)
	if err != nil {
		return err
	}
	scheduler.Start()

	return serve(ctx, app, cfg.Server.Port, scheduler, logger)
}

func serve(ctx context.Context, app *fiber.App, port int, scheduler *cron.Scheduler, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Int("port", port).Msg("server started")
		errCh <- app.Listen(fmt.Sprintf(":%d", port))
	}()

	var listenErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case listenErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	scheduler.Stop(shutdownCtx)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error().Err(err).Msg("server shutdown")
	}
	return listenErr
}
