package errors

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Sentinels shared by the client packages. Callers wrap them with Wrapf and test with Is.
var (
	// Session errors
	ErrNotLoggedIn = errors.New("not logged in")

	// Request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrMissingUserID  = errors.New("user ID is required")
)

// Wrapf annotates err with a message and a stack trace. It returns nil when err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return pkgerrors.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
