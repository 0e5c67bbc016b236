package device

import "fmt"

// QueryError reports a failed driver or surface query while describing a
// physical device. The descriptor is never returned when one occurs.
type QueryError struct {
	Device string
	Query  string
	Err    error
}

func (e *QueryError) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("physical device query %q failed: %v", e.Query, e.Err)
	}
	return fmt.Sprintf("physical device %q: query %q failed: %v", e.Device, e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
