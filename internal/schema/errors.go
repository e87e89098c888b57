package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Scope names which side of an exchange failed validation.
type Scope string

const (
	ScopeRequest  Scope = "request"
	ScopeResponse Scope = "response"
)

// Issue is a single validation problem.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Error is returned when a payload does not satisfy its schema.
type Error struct {
	Scope  Scope
	Issues []Issue
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	scope := e.Scope
	if scope == "" {
		scope = ScopeRequest
	}
	return fmt.Sprintf("%s validation failed: %s", scope, strings.Join(parts, "; "))
}

// Issuef builds a single-issue validation error. It is meant for refinements
// that cannot be expressed as struct tags.
func Issuef(path, format string, args ...any) *Error {
	return &Error{Issues: []Issue{{Path: path, Message: fmt.Sprintf(format, args...)}}}
}

// IsValidationError reports whether err is, or wraps, a *Error.
func IsValidationError(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}

// WithScope returns a copy of err carrying scope when err is a validation
// error. Other errors are returned unchanged.
func WithScope(err error, scope Scope) error {
	var verr *Error
	if errors.As(err, &verr) {
		return &Error{Scope: scope, Issues: verr.Issues}
	}
	return err
}
