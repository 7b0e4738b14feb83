package client

import "fmt"

// APIError is a non-2xx response from the hunt API. Message carries the
// server-provided error field when the body had one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NetworkError is a transport failure (DNS, connection refused, timeout).
// It carries no server payload.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
