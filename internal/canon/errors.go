package canon

import "fmt"

// InvalidJSONError wraps a decoding/encoding failure. Callers that need
// to surface this as the core's InvalidJSON error kind can match it with
// errors.As.
type InvalidJSONError struct {
	cause error
}

func newInvalidJSON(cause error) *InvalidJSONError {
	return &InvalidJSONError{cause: cause}
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("canon: invalid JSON: %v", e.cause)
}

func (e *InvalidJSONError) Unwrap() error {
	return e.cause
}
