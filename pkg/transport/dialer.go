package transport

import (
	"context"
	"fmt"
	"net"
	"time"
)

// DefaultConnectTimeout bounds connection establishment.
const DefaultConnectTimeout = 10 * time.Second

// Dialer opens Plume transport connections.
type Dialer struct {
	// ConnectTimeout bounds connection establishment (default: 10s).
	// Ignored when the context already carries a deadline.
	ConnectTimeout time.Duration

	// Config is applied to established connections.
	Config Config
}

// Dial opens a TCP stream to address (host:port).
// Failure to open the stream is reported as ErrUnavailable; the
// caller must not treat the connection as usable afterwards.
func (d *Dialer) Dial(ctx context.Context, address string) (*Conn, error) {
	timeout := d.ConnectTimeout
	if timeout == 0 {
		timeout = DefaultConnectTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	nc, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrUnavailable, address, err)
	}

	return NewConn(nc, d.Config), nil
}
