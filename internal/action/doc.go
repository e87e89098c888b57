// Package action turns HTTP requests into calls on typed handlers.
//
// Every endpoint is described by a Definition naming its request and
// response types. The Dispatcher distils the inbound request into a single
// payload (query string for GET and HEAD, JSON body for POST, PUT and
// DELETE, route parameters filling whatever is still missing), decodes and
// validates that payload into the request type, resolves the caller's
// identity, invokes the handler, and validates what the handler returned
// before it is written out.
//
// Responses share one envelope. Success is a 200 carrying the validated
// response value. A handler that returns ErrNoAccess produces a 403 with the
// body {"success":false} and nothing else. Every other failure is a 500 with
// {"success":false,"error":"..."}; input validation failures use the
// configured input error status instead, which defaults to 500.
package action
