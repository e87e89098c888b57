package action

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Result is the outcome of a dispatch, ready to be written.
type Result struct {
	Status int
	Body   any
	// Header holds the headers the handler set on its Context.
	Header http.Header
}

// Write sends res to w. Handler headers are added next to whatever w
// already carries, so repeated names keep every value.
func (res Result) Write(w http.ResponseWriter) {
	for name, values := range res.Header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	if err := json.NewEncoder(w).Encode(res.Body); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
