package store

import (
	"errors"
	"fmt"
)

// ErrInvalidKey is the sentinel matched by InvalidKeyError.
var ErrInvalidKey = errors.New("invalid key")

// InvalidKeyError reports a blank or oversized identifier passed to the store.
type InvalidKeyError struct {
	Field string
	Value string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}
func (e *InvalidKeyError) ErrorCode() string { return "INVALID_KEY" }
func (e *InvalidKeyError) Context() map[string]string {
	return map[string]string{"field": e.Field, "value": e.Value}
}
func (e *InvalidKeyError) SuggestedAction() string {
	return fmt.Sprintf("pass a non-empty %s of at most %d characters", e.Field, maxKeyLength)
}
func (e *InvalidKeyError) Is(target error) bool { return target == ErrInvalidKey }

const maxKeyLength = 256

func validateKey(field, value string) error {
	if value == "" || len(value) > maxKeyLength {
		return &InvalidKeyError{Field: field, Value: value}
	}
	return nil
}
