package client

import (
	"errors"
	"fmt"
)

// Connection errors.
var (
	// ErrNotConnected indicates an operation that needs a live transport.
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadyConnected indicates a Connect on a live connection.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrNilHandler indicates a Subscribe with no handler.
	ErrNilHandler = errors.New("nil message handler")

	// ErrReadTimeout indicates the broker sent nothing for longer than
	// the configured read timeout.
	ErrReadTimeout = errors.New("read timeout")
)

// HandlerNotFoundError indicates an inbound MSG frame carrying a sid
// this connection never issued. The dispatch loop halts and surfaces
// it; the stream position after the offending frame is undefined.
type HandlerNotFoundError struct {
	// SID is the unrecognized subscription id.
	SID string

	// Subject is the subject the broker routed.
	Subject string
}

// Error returns the failure description.
func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("no handler registered for sid %q (subject %q)", e.SID, e.Subject)
}
