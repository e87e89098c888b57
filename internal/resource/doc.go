// Package resource exposes a tabular resource as four CRUD endpoints built
// on the action dispatcher.
//
// A caller supplies an Implementation with a mandatory List and optional
// Create, Update and Delete functions, plus optional AccessCheck and
// WriteLog hooks. New derives the request and response definitions for each
// verb from the row type and the caller's context type, and Mount attaches
// them to a chi router:
//
//	GET    /      list
//	POST   /      create
//	PUT    /{id}  update
//	DELETE /{id}  delete
//
// The context type is flattened into every verb request with the json
// ",squash" option, so its keys sit next to the verb's own keys and can be
// supplied by route parameters such as {event}.
package resource
