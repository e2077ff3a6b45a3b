package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/plume-protocol/plume-go/pkg/log"
	"github.com/plume-protocol/plume-go/pkg/subscription"
	"github.com/plume-protocol/plume-go/pkg/transport"
	"github.com/plume-protocol/plume-go/pkg/wire"
)

// readWakeInterval is how often a blocked read wakes up to check for
// cancellation and the read timeout.
const readWakeInterval = 250 * time.Millisecond

// Wait drives the dispatch loop: it reads protocol lines from the
// transport, answers PING with PONG, and routes MSG frames to the
// registered handlers, in arrival order.
//
// With quantity > 0 the loop returns nil after exactly that many
// handler deliveries. With quantity <= 0 it runs until end-of-stream,
// cancellation, or an error.
//
// End-of-stream is graceful: the connection is closed and nil is
// returned. A MSG for an unknown sid returns *HandlerNotFoundError; a
// malformed line returns *wire.ParseError. The loop halts on the first
// error and never reconnects on its own.
//
// Wait is the sole reader of the transport. Concurrent publishes and
// subscriptions are fine; a second concurrent Wait blocks until the
// first returns.
func (c *Conn) Wait(ctx context.Context, quantity int) error {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	tr := c.transport()
	if tr == nil {
		return ErrNotConnected
	}

	delivered := 0
	lastActivity := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			tr.SetReadDeadline(time.Time{})
			return err
		}

		tr.SetReadDeadline(time.Now().Add(readWakeInterval))
		line, err := tr.ReadLine()
		if err != nil {
			var nerr net.Error
			switch {
			case errors.As(err, &nerr) && nerr.Timeout():
				if c.config.ReadTimeout > 0 && time.Since(lastActivity) >= c.config.ReadTimeout {
					return fmt.Errorf("%w: no data for %v", ErrReadTimeout, c.config.ReadTimeout)
				}
				continue

			case err == io.EOF:
				// Graceful end of stream.
				c.Close()
				return nil

			case c.State() != StateConnected:
				// Transport closed under us by Close/Reconnect.
				return nil

			default:
				c.logError(log.LayerTransport, err, "read line")
				return err
			}
		}
		lastActivity = time.Now()

		cmd, err := wire.ParseLine(line)
		if err != nil {
			c.logError(log.LayerProtocol, err, "parse line")
			return err
		}

		switch cmd.Kind {
		case wire.KindEmpty:
			// No-op keepalive.

		case wire.KindPing:
			c.logControl(log.DirectionIn, log.ControlPing)
			if err := tr.WriteCommand(wire.AppendPong(nil)); err != nil {
				return err
			}
			c.logControl(log.DirectionOut, log.ControlPong)

		case wire.KindPong:
			c.logControl(log.DirectionIn, log.ControlPong)
			c.pongReceived()

		case wire.KindMsg:
			done, err := c.dispatchMsg(tr, cmd, quantity, &delivered)
			if err != nil {
				return err
			}
			if done {
				return nil
			}

		case wire.KindUnknown:
			// Not an error; keep for diagnostics.
			c.logLine(log.DirectionIn, "", []byte(cmd.Raw))
		}
	}
}

// dispatchMsg reads the payload block for a MSG header and invokes the
// matching handler. It reports done=true once the requested quantity
// has been delivered.
func (c *Conn) dispatchMsg(tr *transport.Conn, cmd wire.Command, quantity int, delivered *int) (done bool, err error) {
	// The payload follows immediately; don't let the wake-up interval
	// cut a large block short.
	if c.config.ReadTimeout > 0 {
		tr.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	} else {
		tr.SetReadDeadline(time.Time{})
	}

	payload, err := tr.ReadPayload(cmd.PayloadSize)
	if err != nil {
		c.logError(log.LayerTransport, err, "read payload")
		return false, err
	}

	c.logLine(log.DirectionIn, wire.VerbMsg, []byte(cmd.Raw))

	handler, err := c.registry.Lookup(cmd.SID)
	switch {
	case err == nil:
		c.msgsReceived.Add(1)
		handler(Msg{Subject: cmd.Subject, SID: cmd.SID, Data: payload})
		*delivered++
		if quantity > 0 && *delivered >= quantity {
			return true, nil
		}

	case errors.Is(err, subscription.ErrInactive):
		// Late delivery racing an unsubscribe; drop it.

	default:
		return false, &HandlerNotFoundError{SID: cmd.SID, Subject: cmd.Subject}
	}

	return false, nil
}
