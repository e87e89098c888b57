package resource

import "errors"

var (
	// ErrNotImplemented is returned when a verb is called that the
	// implementation does not provide.
	ErrNotImplemented = errors.New("verb not implemented")

	// ErrMissingList is returned by New when the implementation has no List.
	ErrMissingList = errors.New("resource implementation must provide List")

	// ErrInvalidType is returned by New when the context or row type cannot
	// describe a resource.
	ErrInvalidType = errors.New("invalid resource type")
)
