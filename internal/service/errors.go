package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the credential is missing or rejected.
	ErrUnauthorized = errors.New("not authorized")

	// ErrNotFound is returned when the server has no such resource.
	ErrNotFound = errors.New("not found")

	// ErrTimeout is returned when a request exceeds its deadline.
	ErrTimeout = errors.New("request timed out")
)

// RequestError describes a failed call to the remote service.
type RequestError struct {
	// Op names the operation, e.g. "list tasks".
	Op string

	// Status is the HTTP status, or 0 if no response was received.
	Status int

	// Message is the server's error message, if any.
	Message string

	// Err is the classified cause (ErrUnauthorized, ErrNotFound, ErrTimeout)
	// or the transport error.
	Err error
}

func (e *RequestError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: server returned %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether err means the session must be re-established.
func IsAuth(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
