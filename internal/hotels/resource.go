package hotels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/volunteerhq/volunteer-api/internal/action"
	"github.com/volunteerhq/volunteer-api/internal/domain"
	"github.com/volunteerhq/volunteer-api/internal/platform/logger"
	"github.com/volunteerhq/volunteer-api/internal/resource"
	"github.com/volunteerhq/volunteer-api/internal/store"
)

const notFoundMessage = "The hotel could not be found"

type service struct {
	store  Store
	logger *slog.Logger
}

// NewResource builds the administrative hotel resource. Every verb requires
// the hotel management privilege. writeLog may be nil.
func NewResource(s Store, writeLog WriteLog, log *slog.Logger) resource.Implementation[Scope, Row] {
	if log == nil {
		log = slog.Default()
	}
	svc := &service{store: s, logger: log.With(slog.String("component", "hotels"))}
	return resource.Implementation[Scope, Row]{
		AccessCheck: svc.accessCheck,
		List:        svc.list,
		Create:      svc.create,
		Update:      svc.update,
		Delete:      svc.delete,
		WriteLog:    writeLog,
	}
}

func (s *service) accessCheck(_ context.Context, _ resource.AccessCheck[Scope], actx *action.Context) error {
	return actx.RequirePrivilege(domain.PrivilegeEventHotelManagement)
}

func (s *service) list(ctx context.Context, req resource.ListRequest[Scope], _ *action.Context) (resource.ListResponse[Row], error) {
	q := ListQuery{Event: req.Context.Event}
	if req.Pagination != nil {
		q.Offset = req.Pagination.Offset()
		limit := req.Pagination.PageSize
		q.Limit = &limit
	}
	if req.Sort != nil {
		q.SortField = req.Sort.Field
		q.Descending = req.Sort.Descending()
	}

	rows, total, err := s.store.List(ctx, q)
	if err != nil {
		return resource.ListResponse[Row]{}, fmt.Errorf("failed to list hotels: %w", err)
	}
	return resource.ListResponse[Row]{Success: true, RowCount: total, Rows: rows}, nil
}

func (s *service) create(ctx context.Context, req resource.CreateRequest[Scope, Row], _ *action.Context) (resource.CreateResponse[Row], error) {
	id, err := s.store.Create(ctx, req.Context.Event, req.Row)
	if err != nil {
		return resource.CreateResponse[Row]{}, fmt.Errorf("failed to create hotel: %w", err)
	}

	row := req.Row
	row.ID = id
	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "hotel created",
		slog.String("event", req.Context.Event),
		slog.Int64("hotel_id", id))
	return resource.CreateResponse[Row]{Success: true, Row: &row}, nil
}

func (s *service) update(ctx context.Context, req resource.UpdateRequest[Scope, Row], _ *action.Context) (resource.UpdateResponse, error) {
	err := s.store.Update(ctx, req.Context.Event, req.Row)
	if errors.Is(err, store.ErrNotFound) {
		return resource.UpdateResponse{Error: notFoundMessage}, nil
	}
	if err != nil {
		return resource.UpdateResponse{}, fmt.Errorf("failed to update hotel %d: %w", req.ID, err)
	}
	return resource.UpdateResponse{Success: true}, nil
}

func (s *service) delete(ctx context.Context, req resource.DeleteRequest[Scope], _ *action.Context) (resource.DeleteResponse, error) {
	err := s.store.Delete(ctx, req.Context.Event, req.ID)
	if errors.Is(err, store.ErrNotFound) {
		return resource.DeleteResponse{Error: notFoundMessage}, nil
	}
	if err != nil {
		return resource.DeleteResponse{}, fmt.Errorf("failed to delete hotel %d: %w", req.ID, err)
	}
	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "hotel deleted",
		slog.String("event", req.Context.Event),
		slog.Int64("hotel_id", req.ID))
	return resource.DeleteResponse{Success: true}, nil
}
