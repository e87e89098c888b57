package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/volunteerhq/volunteer-api/internal/hotels"
	"github.com/volunteerhq/volunteer-api/internal/platform/logger"
	"github.com/volunteerhq/volunteer-api/internal/store"
)

// hotelColumns maps the sortable row keys onto columns. Only keys listed
// here ever reach an ORDER BY clause.
var hotelColumns = map[string]string{
	"id":          "hotel_id",
	"name":        "hotel_name",
	"description": "hotel_description",
	"roomName":    "room_name",
	"roomPrice":   "room_price",
	"visible":     "visible",
}

const hotelSelect = `
	SELECT hotel_id, hotel_name, hotel_description, room_name, room_price, visible
	FROM hotels
	WHERE event_slug = $1`

// HotelStore implements hotels.Store.
type HotelStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewHotelStore creates a hotel store on db, which may be a connection pool
// or a transaction.
func NewHotelStore(db store.DBTX, log *slog.Logger) *HotelStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &HotelStore{
		db:     db,
		logger: log.With(slog.String("component", "hotel_store")),
	}
}

var _ hotels.Store = (*HotelStore)(nil)

// List returns one page of the event's hotels and the event's total count.
func (s *HotelStore) List(ctx context.Context, q hotels.ListQuery) ([]hotels.Row, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	order := "hotel_id ASC"
	if q.SortField != "" {
		column, ok := hotelColumns[q.SortField]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", store.ErrInvalidSort, q.SortField)
		}
		direction := "ASC"
		if q.Descending {
			direction = "DESC"
		}
		// hotel_id keeps pages stable when the sort column has ties.
		order = fmt.Sprintf("%s %s, hotel_id ASC", column, direction)
	}

	var limit any
	if q.Limit != nil {
		limit = *q.Limit
	}
	query := hotelSelect + ` ORDER BY ` + order + ` LIMIT $2 OFFSET $3`

	var (
		rows  []hotels.Row
		total int
	)
	err := s.snapshot(ctx, func(ctx context.Context, db store.DBTX) error {
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM hotels WHERE event_slug = $1`, q.Event).Scan(&total)
		if err != nil {
			log.Error("failed to count hotels",
				slog.String("event", q.Event),
				slog.String("error", err.Error()))
			return store.NewStoreError("hotel", "count", MapError(err))
		}

		rows, err = queryRows(ctx, db, query, q.Event, limit, q.Offset)
		if err != nil {
			log.Error("failed to list hotels",
				slog.String("event", q.Event),
				slog.String("error", err.Error()))
			return store.NewStoreError("hotel", "list", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	log.Debug("listed hotels",
		slog.String("event", q.Event),
		slog.Int("count", len(rows)),
		slog.Int("total", total))
	return rows, total, nil
}

// ListVisible returns the event's visible hotels grouped by hotel name.
func (s *HotelStore) ListVisible(ctx context.Context, event string) ([]hotels.Row, error) {
	query := hotelSelect + ` AND visible = TRUE ORDER BY hotel_name ASC, room_price ASC, hotel_id ASC`
	rows, err := queryRows(ctx, s.db, query, event)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list visible hotels",
			slog.String("event", event),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("hotel", "list", err)
	}
	return rows, nil
}

// snapshot runs fn so the count and the page agree. A store already bound
// to a transaction runs fn on it directly.
func (s *HotelStore) snapshot(ctx context.Context, fn store.TxFn) error {
	if db, ok := s.db.(store.TxBeginner); ok {
		return store.RunInTransactionWithOptions(ctx, db, store.ReadSnapshot, fn)
	}
	return fn(ctx, s.db)
}

func queryRows(ctx context.Context, db store.DBTX, query string, args ...any) ([]hotels.Row, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]hotels.Row, 0)
	for rows.Next() {
		var row hotels.Row
		if err := rows.Scan(&row.ID, &row.Name, &row.Description, &row.RoomName, &row.RoomPrice, &row.Visible); err != nil {
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return result, nil
}

// Create inserts row into the event and returns the id it was given.
func (s *HotelStore) Create(ctx context.Context, event string, row hotels.Row) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO hotels (event_slug, hotel_name, hotel_description, room_name, room_price, visible)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING hotel_id`,
		event, row.Name, row.Description, row.RoomName, row.RoomPrice, row.Visible,
	).Scan(&id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create hotel",
			slog.String("event", event),
			slog.String("error", err.Error()))
		return 0, store.NewStoreError("hotel", "create", MapError(err))
	}
	return id, nil
}

// Update replaces the hotel with row.ID. It returns store.ErrHotelNotFound
// when the hotel does not belong to the event.
func (s *HotelStore) Update(ctx context.Context, event string, row hotels.Row) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE hotels
		SET hotel_name = $3, hotel_description = $4, room_name = $5,
		    room_price = $6, visible = $7, updated_at = NOW()
		WHERE event_slug = $1 AND hotel_id = $2`,
		event, row.ID, row.Name, row.Description, row.RoomName, row.RoomPrice, row.Visible,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update hotel",
			slog.Int64("hotel_id", row.ID),
			slog.String("error", err.Error()))
		return store.NewStoreError("hotel", "update", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrHotelNotFound)
}

// Delete removes the hotel. It returns store.ErrHotelNotFound when the
// hotel does not belong to the event.
func (s *HotelStore) Delete(ctx context.Context, event string, id int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM hotels WHERE event_slug = $1 AND hotel_id = $2`, event, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete hotel",
			slog.Int64("hotel_id", id),
			slog.String("error", err.Error()))
		return store.NewStoreError("hotel", "delete", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrHotelNotFound)
}
