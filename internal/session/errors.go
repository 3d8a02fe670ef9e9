package session

import (
	"errors"
	"fmt"
)

// Error taxonomy. All three are terminal at the session level; none are
// silently retried.
var (
	// ErrMediaAccess covers permission denial and missing devices.
	ErrMediaAccess = errors.New("media access failed")

	// ErrSignalingFailed covers negotiation failure reported by the peer
	// session capability.
	ErrSignalingFailed = errors.New("negotiation failed")

	// ErrTransportClosed covers loss of the signaling channel itself. The
	// descriptors already exchanged are not replayable, so the caller must
	// redial.
	ErrTransportClosed = errors.New("signaling transport closed")
)

// CallError decorates a taxonomy error with the failing operation and the
// underlying detail.
type CallError struct {
	Op      string
	Err     error
	Details string
}

func (e *CallError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// NewError creates a CallError without detail text.
func NewError(op string, err error) *CallError {
	return &CallError{Op: op, Err: err}
}

// WrapError creates a CallError carrying the underlying detail.
func WrapError(op string, err error, details string) *CallError {
	return &CallError{Op: op, Err: err, Details: details}
}
