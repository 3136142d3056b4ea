package riot

import (
	"errors"
	"fmt"
)

const maxErrorBody = 300

// AuthError means the credential was rejected. Nothing downstream can succeed.
type AuthError struct {
	Status int
	URL    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("riot api rejected credential (status %d) for %s", e.Status, e.URL)
}

// NotFoundError means the upstream resource does not exist.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("riot api returned 404 for %s", e.URL)
}

// UpstreamError is any other failure, including exhausted retries.
// Status is 0 when no response was received.
type UpstreamError struct {
	Status int
	URL    string
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("riot api request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("riot api returned status %d for %s: %s", e.Status, e.URL, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsAuthError reports whether err wraps an *AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsNotFound reports whether err wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func truncateBody(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(b)
}
