// Package audit records committed mutations of administrative resources.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/volunteerhq/volunteer-api/internal/action"
	"github.com/volunteerhq/volunteer-api/internal/resource"
)

// ErrInvalidEntry is returned by Validate for entries that cannot be stored.
var ErrInvalidEntry = errors.New("invalid audit entry")

// Entry is one row of the mutation log.
type Entry struct {
	// Kind names the resource, e.g. "hotel".
	Kind     string
	Mutation resource.Mutation
	// SourceUserID is the account that made the change. Nil when the
	// change was made anonymously.
	SourceUserID *int64
	TargetID     int64
	Data         json.RawMessage
	Date         time.Time
}

// Validate checks the fields the log table requires.
func (e Entry) Validate() error {
	if e.Kind == "" {
		return fmt.Errorf("%w: kind is required", ErrInvalidEntry)
	}
	if e.Mutation == "" {
		return fmt.Errorf("%w: mutation is required", ErrInvalidEntry)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidEntry)
	}
	if len(e.Data) > 0 && !json.Valid(e.Data) {
		return fmt.Errorf("%w: data is not valid JSON", ErrInvalidEntry)
	}
	return nil
}

// Store persists entries.
type Store interface {
	Insert(ctx context.Context, entry Entry) error
}

// Clock returns the current time. time.Now satisfies it.
type Clock func() time.Time

type payload[C, Row any] struct {
	Context C     `json:"context"`
	ID      int64 `json:"id"`
	Row     *Row  `json:"row,omitempty"`
}

// Writer returns a resource WriteLog hook that stores every committed
// mutation of kind in store. A nil clock uses time.Now.
func Writer[C, Row any](store Store, kind string, clock Clock) func(context.Context, resource.Change[C, Row], resource.Mutation, *action.Context) error {
	if clock == nil {
		clock = time.Now
	}
	return func(ctx context.Context, change resource.Change[C, Row], mutation resource.Mutation, actx *action.Context) error {
		data, err := json.Marshal(payload[C, Row]{Context: change.Context, ID: change.ID, Row: change.Row})
		if err != nil {
			return fmt.Errorf("failed to encode %s log data: %w", kind, err)
		}

		entry := Entry{
			Kind:     kind,
			Mutation: mutation,
			TargetID: change.ID,
			Data:     data,
			Date:     clock().UTC(),
		}
		if actx != nil && actx.User != nil {
			id := actx.User.UserID
			entry.SourceUserID = &id
		}
		if err := entry.Validate(); err != nil {
			return err
		}
		if err := store.Insert(ctx, entry); err != nil {
			return fmt.Errorf("failed to store %s log: %w", kind, err)
		}
		return nil
	}
}
