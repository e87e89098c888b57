// Package schema validates loosely typed payloads against Go types.
//
// A schema is a struct type: JSON tags name its keys and go-playground
// validator tags express its rules. Decode turns a payload assembled from a
// query string, a JSON body or route parameters into a typed value and reports
// every problem as an Issue carrying the dotted path of the offending field.
// Roundtrip performs the same check on a value that is about to leave the
// process, which is how handler responses are verified.
//
// A field tagged `json:",squash"` contributes its own keys to its parent, so
// a caller-supplied context struct can be composed with per-operation fields
// without nesting.
package schema
