package guests

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the referenced guest does not exist.
var ErrNotFound = errors.New("guest not found")

// StoreError wraps a failure talking to the database.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsStoreError reports whether err is (or wraps) a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
