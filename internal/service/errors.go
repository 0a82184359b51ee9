package service

import (
	"errors"
	"fmt"
)

// Error taxonomy surfaced to controllers. Sequencer and session mutations are
// all-or-nothing: any of these returned mid-sequence means the pre-call state
// survived.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrSessionExpired = errors.New("session expired")
	ErrSessionClosed  = errors.New("session closed")
	ErrIntegrity      = errors.New("integrity error")
)

// ValidationError rejects bad input before any mutation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, v ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, v...)}
}

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
