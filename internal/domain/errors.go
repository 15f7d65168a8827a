package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. HTTP handlers map these to status
// codes in httputil; services wrap them with context via fmt.Errorf and %w.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrTierRestricted = errors.New("tier restricted")
	ErrUpstream       = errors.New("upstream provider error")
)

// ValidationError carries a user-facing message for a 400 response. Unlike
// internal failures, the message is returned to the client verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
