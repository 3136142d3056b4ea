package compare

import (
	"errors"
	"fmt"
)

// ValidationError rejects a malformed request before any I/O.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NoPlayerDataError means every recent match of the player was skipped.
type NoPlayerDataError struct {
	RiotID    string
	Attempted int
	Last      error
}

func (e *NoPlayerDataError) Error() string {
	if e.Attempted == 0 {
		return fmt.Sprintf("no recent ranked matches found for %s", e.RiotID)
	}
	return fmt.Sprintf("no valid matches fetched for %s (%d attempted, last error: %v)", e.RiotID, e.Attempted, e.Last)
}

func (e *NoPlayerDataError) Unwrap() error { return e.Last }

// EmptyFilterResultError means one side had no rows left after filtering.
type EmptyFilterResultError struct {
	Side     string // "rank" or "player"
	Role     string
	Champion string
}

func (e *EmptyFilterResultError) Error() string {
	return fmt.Sprintf("%s dataset is empty after filters (role=%q champion=%q)", e.Side, e.Role, e.Champion)
}

// IsNotFound reports whether err means the requested data does not exist,
// as opposed to a transport or credential failure.
func IsNotFound(err error) bool {
	var npd *NoPlayerDataError
	var efr *EmptyFilterResultError
	return errors.As(err, &npd) || errors.As(err, &efr)
}
