package introspect

import (
	"errors"
	"fmt"
)

// ErrInvalidHeaderValue is wrapped by every InvalidHeaderError.
var ErrInvalidHeaderValue = errors.New("header value is not valid UTF-8")

// InvalidHeaderError reports a header whose value could not be decoded as
// text. It is fatal for the request that carried it and nothing else.
type InvalidHeaderError struct {
	// Name is the header name as received.
	Name string
}

// Error returns the error message.
func (e *InvalidHeaderError) Error() string {
	return fmt.Sprintf("header %q: %v", e.Name, ErrInvalidHeaderValue)
}

// Unwrap returns ErrInvalidHeaderValue.
func (e *InvalidHeaderError) Unwrap() error {
	return ErrInvalidHeaderValue
}
