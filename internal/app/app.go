package app

import (
	"context"
	"net/http"
	"time"

	"github.com/lfdantoni/dashboard-ai/internal/config"
)

// App couples the HTTP server with the cleanup hook for the infrastructure
// it was wired against. New builds the whole dependency graph; nothing else
// in the tree constructs services directly.
type App struct {
	server  *http.Server
	cleanup func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	router, cleanup, err := setupHTTP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		server: &http.Server{
			Addr:              ":" + cfg.AppPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		cleanup: cleanup,
	}, nil
}

// Run serves until Shutdown is called or the listener fails.
func (a *App) Run() error {
	return a.server.ListenAndServe()
}

// Shutdown drains in-flight requests, then releases the database and redis
// handles. Infra is closed only after the server stops accepting work.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil {
		return err
	}
	if a.cleanup == nil {
		return nil
	}
	return a.cleanup()
}
