package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/volunteerhq/volunteer-api/internal/audit"
	"github.com/volunteerhq/volunteer-api/internal/hotels"
	"github.com/volunteerhq/volunteer-api/internal/platform/logger"
)

func (app *application) setupRouter() (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(app.logger))
	r.Use(middleware.Recoverer)

	var routeErr error
	r.Route("/api", func(r chi.Router) {
		writeLog := audit.Writer[hotels.Scope, hotels.Row](app.stores.logs, hotels.Kind, time.Now)
		routeErr = hotels.Register(r, app.dispatcher, app.stores.hotels, writeLog, app.logger)
	})
	if routeErr != nil {
		return nil, fmt.Errorf("failed to register routes: %w", routeErr)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r, nil
}
