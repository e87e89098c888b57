// Package main runs the volunteer API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/volunteerhq/volunteer-api/internal/config"
	"github.com/volunteerhq/volunteer-api/internal/platform/logger"
	"github.com/volunteerhq/volunteer-api/internal/platform/postgres"
	"github.com/volunteerhq/volunteer-api/internal/platform/tracing"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, log, err := initializeApp()
	if err != nil {
		return err
	}

	tp, err := tracing.New(ctx, cfg.Tracing, log)
	if err != nil {
		return err
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}
	log.Info("database connection established")

	if err := postgres.Migrate(ctx, db, log); err != nil {
		_ = db.Close()
		_ = tp.Shutdown(ctx)
		return err
	}

	app, err := newApplication(cfg, log, db, tp, stores{
		hotels: postgres.NewHotelStore(db, log),
		logs:   postgres.NewLogStore(db, log),
	})
	if err != nil {
		_ = db.Close()
		_ = tp.Shutdown(ctx)
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// initializeApp loads the configuration and installs the logger.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Int("input_error_status", cfg.Server.InputErrorStatus))
	return cfg, log, nil
}
