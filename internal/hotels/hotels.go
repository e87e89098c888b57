// Package hotels manages the hotel rooms volunteers can book for an event.
//
// Administrators manage rooms through a resource table; volunteers see the
// visible rooms through the public options action.
package hotels

import (
	"context"

	"github.com/volunteerhq/volunteer-api/internal/action"
	"github.com/volunteerhq/volunteer-api/internal/resource"
)

// Kind is the name hotels are logged and traced under.
const Kind = "hotel"

// Scope selects the event every hotel call is made against.
type Scope struct {
	Event string `json:"event" validate:"required,max=64"`
}

// Row is one bookable room. A hotel offering several room types has one
// row per room type, sharing the hotel name.
type Row struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=4096"`
	RoomName    string `json:"roomName" validate:"required,max=255"`
	// RoomPrice is the nightly price in cents.
	RoomPrice int64 `json:"roomPrice" validate:"gte=0"`
	Visible   bool  `json:"visible"`
}

// ListQuery is a page of an event's hotels as the store sees it.
type ListQuery struct {
	Event string
	// Offset and Limit are unset when the caller did not paginate.
	Offset int
	Limit  *int
	// SortField is a Row JSON key; empty keeps the store's default order.
	SortField  string
	Descending bool
}

// Store persists hotel rows.
type Store interface {
	// List returns the requested page and the total number of rows.
	List(ctx context.Context, q ListQuery) ([]Row, int, error)
	// ListVisible returns every visible row of the event ordered by name.
	ListVisible(ctx context.Context, event string) ([]Row, error)
	Create(ctx context.Context, event string, row Row) (int64, error)
	Update(ctx context.Context, event string, row Row) error
	Delete(ctx context.Context, event string, id int64) error
}

// WriteLog is the hook that records committed hotel mutations.
type WriteLog = func(ctx context.Context, change resource.Change[Scope, Row], mutation resource.Mutation, actx *action.Context) error
