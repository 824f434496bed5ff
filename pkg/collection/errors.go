package collection

import (
	"errors"
	"fmt"
)

// NetworkError reports a request that never produced an HTTP response.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError reports a response with a status outside 2xx.
type ServerError struct {
	Op         string
	URL        string
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Op, e.URL, e.StatusCode, e.Detail)
}

// NotFound reports whether the backend said the record does not exist.
func (e *ServerError) NotFound() bool { return e.StatusCode == 404 }

// IsRemote reports whether err came from the backend or the transport.
func IsRemote(err error) bool {
	var ne *NetworkError
	var se *ServerError
	return errors.As(err, &ne) || errors.As(err, &se)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
