package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrBusy indicates a mutation for the same variant is already in
	// flight. Purely a local guard, not a failure of the remote system.
	ErrBusy = errors.New("variant mutation already in flight")
)

// TransportError wraps a remote call that could not complete (network,
// timeout, malformed response). The local cart is left untouched.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cart request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PlatformError means the platform processed the request but declined it
// (out of stock, invalid variant, expired cart). Message is the platform's
// own text and is shown to the user verbatim.
type PlatformError struct {
	Code    string
	Message string
}

func (e *PlatformError) Error() string { return e.Message }
