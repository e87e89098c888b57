package hotels

import (
	"context"
	"fmt"

	"github.com/volunteerhq/volunteer-api/internal/action"
)

// OptionsRequest asks for the rooms a volunteer can choose from.
type OptionsRequest struct {
	Event string `json:"event" validate:"required,max=64"`
}

// Room is one bookable room type of a hotel.
type Room struct {
	ID    int64  `json:"id" validate:"gt=0"`
	Name  string `json:"name" validate:"required"`
	Price int64  `json:"price" validate:"gte=0"`
}

// Option is a hotel and its visible rooms.
type Option struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Rooms       []Room `json:"rooms" validate:"min=1,dive"`
}

type OptionsResponse struct {
	Success bool     `json:"success"`
	Hotels  []Option `json:"hotels" validate:"dive"`
}

// OptionsDefinition is the public hotel options action.
var OptionsDefinition = action.Definition[OptionsRequest, OptionsResponse]{
	Name: "hotels.options",
}

// Options returns the handler listing the event's visible hotels with
// their rooms grouped under the hotel name, in store order.
func Options(s Store) action.Handler[OptionsRequest, OptionsResponse] {
	return func(ctx context.Context, req OptionsRequest, _ *action.Context) (OptionsResponse, error) {
		rows, err := s.ListVisible(ctx, req.Event)
		if err != nil {
			return OptionsResponse{}, fmt.Errorf("failed to list hotel options: %w", err)
		}
		return OptionsResponse{Success: true, Hotels: group(rows)}, nil
	}
}

func group(rows []Row) []Option {
	options := make([]Option, 0)
	index := make(map[string]int)
	for _, row := range rows {
		if !row.Visible {
			continue
		}
		i, ok := index[row.Name]
		if !ok {
			i = len(options)
			index[row.Name] = i
			options = append(options, Option{Name: row.Name, Description: row.Description})
		}
		options[i].Rooms = append(options[i].Rooms, Room{ID: row.ID, Name: row.RoomName, Price: row.RoomPrice})
	}
	return options
}
