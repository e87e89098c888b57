package domain

import "errors"

// ErrInvalidPrivilege is returned when a privilege name is not known.
var ErrInvalidPrivilege = errors.New("invalid privilege")
