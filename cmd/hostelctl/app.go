package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/campusfix/hostel-desk/internal/config"
	"github.com/campusfix/hostel-desk/internal/events"
	"github.com/campusfix/hostel-desk/internal/gateway"
	"github.com/campusfix/hostel-desk/internal/observability"
	"github.com/campusfix/hostel-desk/internal/persistence"
	"github.com/campusfix/hostel-desk/internal/service"
	"github.com/campusfix/hostel-desk/internal/session"
)

// errLoginAgain is appended to errors that cost the user their session.
var errLoginAgain = errors.New("your session is no longer valid; run 'hostelctl login' to sign in again")

// app holds the client services shared by every command.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
	notice io.Writer

	sessions  *session.Store
	auth      *service.AuthService
	tickets   *service.TicketService
	queries   *service.QueryService
	stats     *service.StatsService
	dashboard *service.DashboardService

	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, out, notice io.Writer) (*app, error) {
	a := &app{cfg: cfg, logger: logger, out: out, notice: notice}

	persister, err := a.sessionPersister(ctx)
	if err != nil {
		return nil, err
	}
	a.sessions = session.NewStore(persister, logger)
	if _, _, err := a.sessions.Load(ctx); err != nil {
		logger.Warn("could not restore session", zap.Error(err))
	}

	client, err := gateway.NewClient(gateway.ClientConfig{
		BaseURL:  cfg.API.BaseURL,
		Timeout:  cfg.API.RequestTimeout(),
		Sessions: a.sessions,
		Logger:   logger,
		Metrics:  observability.NewMetrics(),
	})
	if err != nil {
		a.close()
		return nil, err
	}

	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, logger, cfg.Notification, func(msg string) {
		fmt.Fprintln(a.notice, faintStyle.Render(msg))
	}).RegisterHandlers()

	a.auth = service.NewAuthService(client, a.sessions, dispatcher, logger)
	a.queries = service.NewQueryService(client, a.sessions, cfg.API.PageSize, logger)
	a.tickets = service.NewTicketService(service.TicketDependencies{
		API:               client,
		Sessions:          a.sessions,
		Dispatcher:        dispatcher,
		Logger:            logger,
		StrictTransitions: cfg.Lifecycle.StrictTransitions,
	})
	a.stats = service.NewStatsService(client, service.FoldOptions{AssignedAsInProgress: cfg.Lifecycle.AssignedAsInProgress}, logger)
	a.dashboard = service.NewDashboardService(a.queries, a.stats, a.tickets, logger)
	return a, nil
}

func (a *app) sessionPersister(ctx context.Context) (session.Persister, error) {
	switch a.cfg.Session.Backend {
	case config.SessionBackendMemory:
		return nil, nil
	case config.SessionBackendRedis:
		rdb := persistence.NewRedis(ctx, a.cfg.Redis, a.logger)
		a.closers = append(a.closers, rdb.Close)
		return rdb.SessionPersister(a.cfg.Session.RedisKey), nil
	case config.SessionBackendFile, "":
		return session.NewFilePersister(a.cfg.Session.FilePath), nil
	default:
		return nil, fmt.Errorf("unsupported session backend %q", a.cfg.Session.Backend)
	}
}

// guard applies the credential rejection policy to a command's error.
func (a *app) guard(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if a.auth.HandleError(ctx, err) {
		return fmt.Errorf("%w\n%w", err, errLoginAgain)
	}
	return err
}

func (a *app) close() {
	for _, fn := range a.closers {
		fn()
	}
}
