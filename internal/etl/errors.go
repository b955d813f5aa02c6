package etl

import "fmt"

// StatusError is returned by the extract step when the upstream answers
// with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// MissingFieldError is returned by the transform step when a raw post
// lacks one of the projected attributes.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("post %d: missing required field %q", e.Index, e.Field)
}
