package model

import (
	"errors"
	"fmt"
)

// ErrServiceUnavailable is returned when no matched model and vocabulary pair
// is loaded. Callers must report it as a degraded service, not a bad request.
var ErrServiceUnavailable = errors.New("risk model not loaded")

// EncodingError reports a categorical value that is absent from the fitted
// vocabulary. It is a client input error.
type EncodingError struct {
	Field string
	Value string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("invalid value %q for %s", e.Value, e.Field)
}
