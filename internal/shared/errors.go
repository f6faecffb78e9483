package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness or state conflict.
	ErrConflict = errors.New("conflict")
)

// UserSafeMessage returns an error text suitable for API consumers without
// leaking internals.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested record does not exist"
	case errors.Is(err, ErrConflict):
		return "The request conflicts with the current state"
	default:
		return "The request could not be processed"
	}
}
