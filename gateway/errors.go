package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrRefreshFailed is returned when a 401 could not be recovered by refreshing the
	// session. The session has been cleared and the user sent to the login route.
	ErrRefreshFailed = errors.New("session refresh failed")
	// ErrAuthRequired is returned when a mutating call was aborted before sending because
	// the session had expired and could not be refreshed.
	ErrAuthRequired = errors.New("authentication required")

	ErrNoSession         = errors.New("no active session")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrMalformedResponse = errors.New("malformed response")
)

// HTTPError is any non-2xx response other than a 401 the gateway recovered from.
type HTTPError struct {
	Status   int
	Method   string
	Endpoint string
	Body     []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: http status %d", e.Method, e.Endpoint, e.Status)
}

// NetworkError is a request that never produced a response.
type NetworkError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// BusinessError is an envelope with isSuccess:false. The gateway never returns it on its
// own; callers opt in through Envelope.Err.
type BusinessError struct {
	Code    string
	Message string
}

func (e *BusinessError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// StatusCode extracts the HTTP status from err, or 0 when err carries none.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}
