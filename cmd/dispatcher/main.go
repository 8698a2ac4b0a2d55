package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kursadbilgin/lead-dispatcher/internal/config"
	"github.com/kursadbilgin/lead-dispatcher/internal/handler"
	"github.com/kursadbilgin/lead-dispatcher/internal/hours"
	"github.com/kursadbilgin/lead-dispatcher/internal/infra/sqlite"
	"github.com/kursadbilgin/lead-dispatcher/internal/infra/sqlite/migrations"
	"github.com/kursadbilgin/lead-dispatcher/internal/observability"
	"github.com/kursadbilgin/lead-dispatcher/internal/provider"
	"github.com/kursadbilgin/lead-dispatcher/internal/reader"
	"github.com/kursadbilgin/lead-dispatcher/internal/repository"
	"github.com/kursadbilgin/lead-dispatcher/internal/service"
	"github.com/kursadbilgin/lead-dispatcher/internal/transport"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger = logger.With(zap.String("runId", uuid.NewString()))

	db, err := sqlite.NewSQLite(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("sqlite initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("sqlite underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	leads, err := reader.Load(cfg.LeadFilePath, logger)
	if err != nil {
		logger.Fatal("failed to load lead file", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	repo := repository.NewGormLeadRepo(db)
	client := provider.NewHTTPClient(logger)

	pool, err := provider.NewPool(client, cfg.APIEndpoints, logger)
	if err != nil {
		logger.Fatal("endpoint pool initialization failed", zap.Error(err))
	}
	pool.SetProbeFailureHook(metrics.IncEndpointProbeFailure)

	dispatcher, err := service.NewDispatcher(pool, client, repo, logger)
	if err != nil {
		logger.Fatal("dispatcher initialization failed", zap.Error(err))
	}
	dispatcher.SetMetrics(metrics)

	gate := hours.NewGate(cfg.Location())
	scheduler, err := service.NewScheduler(repo, dispatcher, gate, cfg.CountryCode, cfg.MaxSendDelay(), logger)
	if err != nil {
		logger.Fatal("scheduler initialization failed", zap.Error(err))
	}
	scheduler.SetMetrics(metrics)
	scheduler.Load(leads)

	monitor := cron.New(cron.WithLocation(cfg.Location()))
	if _, err := monitor.AddFunc(cfg.HoursMonitorSpec, scheduler.Recheck); err != nil {
		logger.Fatal("hours monitor initialization failed", zap.Error(err))
	}
	monitor.Start()
	defer monitor.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler:          transport.ErrorHandler(logger),
		DisableStartupMessage: true,
	})
	app.Use(metrics.HTTPMiddleware())
	handler.RegisterHealthRoutes(app, sqlDB)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		// The ops server lives only as long as the dispatch run.
		defer cancel()
		logger.Info("dispatch run starting",
			zap.Int("leads", len(leads)),
			zap.Int("endpoints", pool.Size()),
		)
		return scheduler.Run(gctx)
	})

	g.Go(func() error {
		return app.Listen(fmt.Sprintf(":%d", cfg.OpsPort))
	})

	g.Go(func() error {
		<-gctx.Done()
		return app.Shutdown()
	})

	if err := g.Wait(); err != nil {
		logger.Error("run finished with error", zap.Error(err))
		return
	}
	logger.Info("run finished")
}
