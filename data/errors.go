package data

import "errors"

// Common errors returned by buffer operations. All failures are reported
// through error returns; no operation in this package panics on bad input.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfRange      = errors.New("offset out of range")
)
