package storage

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when an operation reaches a store whose
// initialization has not completed. The tracking manager awaits
// initialization internally, so this normally never escapes to users.
var ErrNotInitialized = errors.New("storage not initialized")

// ErrMalformedInput marks input that cannot be persisted (missing URL,
// invalid domain). Callers skip the offending event and keep tracking.
var ErrMalformedInput = errors.New("malformed input")

// StoreError wraps a failure of the underlying storage engine (quota,
// I/O, aborted transaction). Best-effort paths log and drop it;
// user-triggered reads surface it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
