package util

import "errors"

// ErrPublic is an error whose message is safe to show to the end user as-is.
type ErrPublic string

func (e ErrPublic) Error() string {
	return string(e)
}

// ErrConflict is returned by storage helpers in place of the driver-specific
// unique-constraint error, so callers can branch on a typed error rather than
// sniff at the shape of whatever the driver produced.
var ErrConflict = errors.New("unique constraint violation")
