// Package server initializes and runs the relay application: it selects the
// identity storage backend, wires the auth pipeline, the inbox store and the
// delivery registry into the HTTP/WebSocket endpoint, and handles graceful
// shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/sealpost/internal/logging"
	"github.com/dmitrijs2005/sealpost/internal/server/auth"
	"github.com/dmitrijs2005/sealpost/internal/server/config"
	"github.com/dmitrijs2005/sealpost/internal/server/db"
	"github.com/dmitrijs2005/sealpost/internal/server/delivery"
	"github.com/dmitrijs2005/sealpost/internal/server/httpapi"
	"github.com/dmitrijs2005/sealpost/internal/server/identity"
	"github.com/dmitrijs2005/sealpost/internal/server/inbox"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  db.RepositoryManager
	api    *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	rm, err := db.NewRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	identities := identity.NewService(rm.Identities())
	inboxStore := inbox.NewStore()
	registry := delivery.NewRegistry()
	guard := auth.NewGuard(identities, auth.NewReplayGuard(cfg.ReplayTTLFloor), cfg.TokenLeeway)

	api := httpapi.NewServer(cfg.EndpointAddr, logger, identities, inboxStore, registry, guard, cfg.AllowedOrigins)

	return &App{config: cfg, logger: logger, repos: rm, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.api.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.repos.RunMigrations(ctx); err != nil {
		app.logger.Error(ctx, "migrations failed", "error", err)
		return
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "repository close failed", "error", err)
	}
}
