package hotels

import (
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/volunteerhq/volunteer-api/internal/action"
	"github.com/volunteerhq/volunteer-api/internal/resource"
)

// Register mounts the public options action on GET /events/{event}/hotels
// and the administrative table under /admin/events/{event}/hotels.
func Register(r chi.Router, d *action.Dispatcher, s Store, writeLog WriteLog, log *slog.Logger) error {
	table, err := resource.New(NewResource(s, writeLog, log), resource.WithName(Kind))
	if err != nil {
		return fmt.Errorf("failed to build hotel resource: %w", err)
	}

	r.Get("/events/{event}/hotels", action.Execute(d, OptionsDefinition, Options(s)))
	r.Route("/admin/events/{event}/hotels", func(r chi.Router) {
		table.Mount(r, d)
	})
	return nil
}
