package oracle

import "fmt"

// UnavailableError signals that the distance oracle failed or timed out.
// It is a transient infrastructure failure, not a business-rule rejection:
// callers abort the current request cleanly and may retry later.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("distance oracle unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Unavailable wraps err as an UnavailableError unless it already is one.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	if u, ok := err.(*UnavailableError); ok {
		return u
	}
	return &UnavailableError{Err: err}
}
