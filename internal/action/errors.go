package action

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/volunteerhq/volunteer-api/internal/schema"
)

// ErrNoAccess is the no-access signal. A handler may return it, or an error
// wrapping it, at any point to produce a 403 that reveals nothing further.
var ErrNoAccess = errors.New("no access")

// ErrUnsupportedMethod is returned for methods outside GET, HEAD, POST, PUT
// and DELETE. The handler never runs for them.
var ErrUnsupportedMethod = errors.New("unsupported method")

// ErrMalformedBody is returned when a body-carrying request does not hold a
// single JSON object.
var ErrMalformedBody = errors.New("malformed request body")

// NoAccess wraps ErrNoAccess with a reason that is logged but never sent to
// the caller.
func NoAccess(reason string) error {
	return fmt.Errorf("%w: %s", ErrNoAccess, reason)
}

// Failure is the envelope written for every failed dispatch.
type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// StatusFor maps an error returned from any stage of a dispatch onto the
// HTTP status written to the caller.
func (d *Dispatcher) StatusFor(err error) int {
	var verr *schema.Error
	switch {
	case errors.Is(err, ErrNoAccess):
		return http.StatusForbidden
	case errors.Is(err, ErrMalformedBody):
		return d.inputErrorStatus
	case errors.As(err, &verr) && verr.Scope == schema.ScopeRequest:
		return d.inputErrorStatus
	default:
		return http.StatusInternalServerError
	}
}

// isInputError reports whether err was caused by what the caller sent.
func isInputError(err error) bool {
	var verr *schema.Error
	if errors.As(err, &verr) {
		return verr.Scope == schema.ScopeRequest
	}
	return errors.Is(err, ErrMalformedBody)
}
