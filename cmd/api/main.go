package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/campusfix/hostel-desk/internal/api/http"
	"github.com/campusfix/hostel-desk/internal/api/http/handlers"
	"github.com/campusfix/hostel-desk/internal/config"
	"github.com/campusfix/hostel-desk/internal/observability"
	"github.com/campusfix/hostel-desk/internal/persistence"
	"github.com/campusfix/hostel-desk/internal/repository"
	"github.com/campusfix/hostel-desk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var (
		users   repository.UserRepository
		tickets repository.TicketRepository
		health  = map[string]handlers.Pinger{"postgres": nil}
	)
	if pg.Configured() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		users = repository.NewUserRepository(pg.PoolHandle())
		tickets = repository.NewTicketRepository(pg.PoolHandle())
		health["postgres"] = pg
	} else {
		store := repository.NewMemoryStore()
		users, tickets = store.Users(), store.Tickets()
	}

	notifications := worker.StartNotificationWorker(cfg.Notification, 0, logger, nil)

	app := httptransport.NewApp(httptransport.AppDependencies{
		Config:     *cfg,
		Logger:     logger,
		Metrics:    observability.NewMetrics(),
		Users:      users,
		Tickets:    tickets,
		Dispatcher: notifications,
		Health:     health,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("hostel-desk backend listening", zap.String("addr", cfg.App.Addr()))

	waitForShutdown(logger)

	_ = app.Shutdown()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer drainCancel()
	if err := notifications.Close(drainCtx); err != nil {
		logger.Warn("notification queue not drained", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
