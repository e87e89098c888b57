package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/volunteerhq/volunteer-api/internal/action"
	"github.com/volunteerhq/volunteer-api/internal/audit"
	"github.com/volunteerhq/volunteer-api/internal/auth"
	"github.com/volunteerhq/volunteer-api/internal/config"
	"github.com/volunteerhq/volunteer-api/internal/hotels"
	"github.com/volunteerhq/volunteer-api/internal/platform/tracing"
)

// tracerFlushTimeout bounds how long cleanup waits for buffered spans.
const tracerFlushTimeout = 5 * time.Second

type stores struct {
	hotels hotels.Store
	logs   audit.Store
}

// application holds the shared dependencies and releases them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	tracer *tracing.Provider

	stores     stores
	tokens     *auth.Tokens
	dispatcher *action.Dispatcher
}

// newApplication wires the dispatcher, its identity resolver and its tracer.
// db may be nil when the stores do not need closing.
func newApplication(cfg *config.Config, log *slog.Logger, db *sql.DB, tp *tracing.Provider, s stores) (*application, error) {
	tokens, err := auth.NewTokens(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	dispatcher := action.NewDispatcher(
		auth.NewResolver(tokens, cfg.Auth.CookieName),
		action.WithLogger(log),
		action.WithOrigin(cfg.Server.Origin),
		action.WithInputErrorStatus(cfg.Server.InputErrorStatus),
		action.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		action.WithTracer(tp.Tracer()),
	)

	return &application{
		config:     cfg,
		logger:     log,
		db:         db,
		tracer:     tp,
		stores:     s,
		tokens:     tokens,
		dispatcher: dispatcher,
	}, nil
}

// Run serves HTTP until ctx is cancelled or the process is signalled.
func (app *application) Run(ctx context.Context) error {
	router, err := app.setupRouter()
	if err != nil {
		app.cleanup()
		return err
	}
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), tracerFlushTimeout)
	defer cancel()
	if err := app.tracer.Shutdown(ctx); err != nil {
		app.logger.Error("error flushing traces", slog.String("error", err.Error()))
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
}
