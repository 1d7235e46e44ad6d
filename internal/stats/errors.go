package stats

import (
	"errors"
	"fmt"
)

var (
	// ErrStatus is matched by every StatusError
	ErrStatus = errors.New("unexpected response status")
	// ErrShape is matched by every ShapeError
	ErrShape = errors.New("response does not match endpoint contract")
	// ErrBodyTooLarge means a response body exceeded the read limit
	ErrBodyTooLarge = errors.New("response body too large")
)

// StatusError reports a non-2xx backend response
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d", e.Endpoint, e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// ShapeError reports a body that failed validation. Path is the gjson path of
// the offending value, empty for the document root.
type ShapeError struct {
	Endpoint string
	Path     string
	Reason   string
}

func (e *ShapeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Endpoint, e.Path, e.Reason)
}

func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}
