package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/plume-protocol/plume-go/pkg/log"
	"github.com/plume-protocol/plume-go/pkg/subscription"
	"github.com/plume-protocol/plume-go/pkg/transport"
	"github.com/plume-protocol/plume-go/pkg/wire"
)

// Connection states.
type State int32

const (
	// StateDisconnected indicates no connection.
	StateDisconnected State = iota

	// StateConnecting indicates connection in progress.
	StateConnecting

	// StateConnected indicates an active connection.
	StateConnected
)

// String returns the connection state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// Msg is one dispatched message.
type Msg = subscription.Msg

// MsgHandler is invoked by the dispatch loop for each matching message.
type MsgHandler = subscription.Handler

// Conn is a Plume client connection.
//
// The zero value is not usable; construct with New. All methods are
// safe for concurrent use, but only one goroutine may drive Wait at a
// time.
type Conn struct {
	config  Config
	address string
	dialer  transport.Dialer

	// Subscription registry; lives across reconnects.
	registry *subscription.Registry

	// State
	state atomic.Int32

	// Transport; non-nil only while connected.
	mu     sync.RWMutex
	tr     *transport.Conn
	connID string

	// Dispatch loop exclusivity.
	readMu sync.Mutex

	// Keep-alive
	kaMu      sync.Mutex
	keepAlive *KeepAlive

	// Counters; monotonic, survive reconnects.
	pingCount      atomic.Uint64
	publishCount   atomic.Uint64
	reconnectCount atomic.Uint64
	msgsReceived   atomic.Uint64
}

// New creates a new connection (not yet connected).
// Zero config fields fall back to defaults.
func New(config Config) *Conn {
	if config.Host == "" {
		config.Host = DefaultHost
	}
	if config.Port == 0 {
		config.Port = DefaultPort
	}

	c := &Conn{
		config:   config,
		address:  config.composeAddress(),
		registry: subscription.NewRegistry(),
		dialer: transport.Dialer{
			ConnectTimeout: config.ConnectTimeout,
			Config: transport.Config{
				MaxLineLength:  config.MaxLineLength,
				MaxPayloadSize: config.MaxPayloadSize,
				WriteTimeout:   config.WriteTimeout,
			},
		},
	}
	c.state.Store(int32(StateDisconnected))

	return c
}

// State returns the current connection state.
func (c *Conn) State() State {
	return State(c.state.Load())
}

// Address returns the composed endpoint string (scheme://host:port).
// Set at construction, immutable thereafter.
func (c *Conn) Address() string {
	return c.address
}

// ConnID returns the id of the current transport connection, used to
// correlate protocol log events. Empty while disconnected.
func (c *Conn) ConnID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connID
}

// Connect establishes the transport and sends the CONNECT handshake.
// On failure the connection stays DISCONNECTED and the error names the
// unavailable transport; no operation may run against a dead stream.
func (c *Conn) Connect(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
		return ErrAlreadyConnected
	}
	c.notifyStateChange(StateDisconnected, StateConnecting, "")

	tr, err := c.dialer.Dial(ctx, c.config.hostPort())
	if err != nil {
		c.state.Store(int32(StateDisconnected))
		c.notifyStateChange(StateConnecting, StateDisconnected, err.Error())
		return err
	}

	frame, err := wire.AppendConnect(nil, wire.ConnectOptions{Name: c.config.Name})
	if err != nil {
		tr.Close()
		c.state.Store(int32(StateDisconnected))
		c.notifyStateChange(StateConnecting, StateDisconnected, err.Error())
		return err
	}
	if err := tr.WriteCommand(frame); err != nil {
		tr.Close()
		c.state.Store(int32(StateDisconnected))
		c.notifyStateChange(StateConnecting, StateDisconnected, err.Error())
		return fmt.Errorf("handshake failed: %w", err)
	}

	c.mu.Lock()
	c.tr = tr
	c.connID = uuid.NewString()
	c.mu.Unlock()

	c.logLine(log.DirectionOut, wire.VerbConnect, frame)

	c.startKeepAlive()

	c.state.Store(int32(StateConnected))
	c.notifyStateChange(StateConnecting, StateConnected, "")

	return nil
}

// Close releases the transport and moves the connection to
// DISCONNECTED. Closing an already-closed connection is a no-op.
// Registered subscriptions are kept for a later reconnect.
func (c *Conn) Close() error {
	c.stopKeepAlive()

	c.mu.Lock()
	tr := c.tr
	c.tr = nil
	c.connID = ""
	c.mu.Unlock()

	oldState := State(c.state.Swap(int32(StateDisconnected)))
	if tr != nil {
		tr.Close()
	}
	if oldState != StateDisconnected {
		c.notifyStateChange(oldState, StateDisconnected, "closed by caller")
	}
	return nil
}

// Reconnect closes any live transport and connects again, incrementing
// the reconnect counter exactly once before the new attempt begins.
// Active subscriptions are replayed to the broker on success.
func (c *Conn) Reconnect(ctx context.Context) error {
	c.reconnectCount.Add(1)
	c.Close()

	if err := c.Connect(ctx); err != nil {
		return err
	}

	// Replay SUB commands so the broker routes to the surviving
	// registrations again.
	var replayErr error
	c.registry.Each(func(sid, subject string) {
		if replayErr != nil {
			return
		}
		frame, err := wire.AppendSub(nil, subject, sid)
		if err == nil {
			err = c.write(frame, wire.VerbSub)
		}
		if err != nil {
			replayErr = fmt.Errorf("failed to replay subscription %s: %w", sid, err)
		}
	})
	return replayErr
}

// Publish sends payload to all subscribers of subject.
// The payload may be empty.
func (c *Conn) Publish(subject string, payload []byte) error {
	frame, err := wire.AppendPub(nil, subject, payload)
	if err != nil {
		return err
	}
	if err := c.write(frame, wire.VerbPub); err != nil {
		return err
	}
	c.publishCount.Add(1)
	return nil
}

// Subscribe registers handler for subject and announces the
// subscription to the broker. It returns the generated sid.
func (c *Conn) Subscribe(subject string, handler MsgHandler) (string, error) {
	if handler == nil {
		return "", ErrNilHandler
	}
	if err := wire.ValidateSubject(subject); err != nil {
		return "", err
	}

	sid := c.registry.Register(subject, handler)
	frame, err := wire.AppendSub(nil, subject, sid)
	if err == nil {
		err = c.write(frame, wire.VerbSub)
	}
	if err != nil {
		c.registry.Deactivate(sid)
		return "", err
	}
	return sid, nil
}

// Unsubscribe tells the broker to stop delivering for sid and drops
// the local handler. Messages already in flight for sid are silently
// discarded by the dispatch loop.
func (c *Conn) Unsubscribe(sid string) error {
	if _, err := c.registry.Subject(sid); err != nil {
		return err
	}

	frame, err := wire.AppendUnsub(nil, sid)
	if err != nil {
		return err
	}
	if err := c.write(frame, wire.VerbUnsub); err != nil {
		return err
	}
	return c.registry.Deactivate(sid)
}

// Ping sends an explicit keepalive request. Only caller-initiated
// pings are counted; PONG replies to the broker are not.
func (c *Conn) Ping() error {
	if err := c.write(wire.AppendPing(nil), wire.VerbPing); err != nil {
		return err
	}
	c.pingCount.Add(1)
	c.logControl(log.DirectionOut, log.ControlPing)
	return nil
}

// write sends one encoded command over the live transport.
func (c *Conn) write(frame []byte, verb string) error {
	tr := c.transport()
	if tr == nil {
		return ErrNotConnected
	}
	if err := tr.WriteCommand(frame); err != nil {
		return err
	}
	if verb != wire.VerbPing { // pings are logged as control events
		c.logLine(log.DirectionOut, verb, frame)
	}
	return nil
}

// transport returns the live transport, or nil while disconnected.
func (c *Conn) transport() *transport.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tr
}

// startKeepAlive initializes and starts keep-alive monitoring.
func (c *Conn) startKeepAlive() {
	if c.config.KeepAlive.PingInterval <= 0 {
		return
	}

	c.kaMu.Lock()
	defer c.kaMu.Unlock()

	c.keepAlive = NewKeepAlive(
		c.config.KeepAlive,
		c.Ping,
		func() {
			c.notifyError(fmt.Errorf("keep-alive timeout"))
			c.Close()
		},
	)
	c.keepAlive.Start()
}

// stopKeepAlive stops keep-alive monitoring if it is running.
func (c *Conn) stopKeepAlive() {
	c.kaMu.Lock()
	defer c.kaMu.Unlock()

	if c.keepAlive != nil {
		c.keepAlive.Stop()
		c.keepAlive = nil
	}
}

// pongReceived forwards an inbound PONG to the keep-alive monitor.
func (c *Conn) pongReceived() {
	c.kaMu.Lock()
	ka := c.keepAlive
	c.kaMu.Unlock()

	if ka != nil {
		ka.PongReceived()
	}
}

// notifyStateChange notifies the callback and the protocol log.
func (c *Conn) notifyStateChange(oldState, newState State, reason string) {
	if c.config.OnStateChange != nil {
		c.config.OnStateChange(oldState, newState)
	}
	if c.config.ProtocolLogger != nil {
		c.config.ProtocolLogger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: c.ConnID(),
			Direction:    log.DirectionOut,
			Layer:        log.LayerClient,
			Category:     log.CategoryState,
			RemoteAddr:   c.config.hostPort(),
			StateChange: &log.StateChangeEvent{
				OldState: oldState.String(),
				NewState: newState.String(),
				Reason:   reason,
			},
		})
	}
}

// notifyError reports an asynchronous error.
func (c *Conn) notifyError(err error) {
	if c.config.OnError != nil {
		c.config.OnError(err)
	}
	c.logError(log.LayerClient, err, "")
}

// logLine records a raw command frame in the protocol log.
func (c *Conn) logLine(direction log.Direction, verb string, frame []byte) {
	if c.config.ProtocolLogger == nil {
		return
	}
	c.config.ProtocolLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.ConnID(),
		Direction:    direction,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		RemoteAddr:   c.config.hostPort(),
		Line:         log.NewLineEvent(verb, frame),
	})
}

// logControl records ping/pong traffic in the protocol log.
func (c *Conn) logControl(direction log.Direction, typ log.ControlType) {
	if c.config.ProtocolLogger == nil {
		return
	}
	c.config.ProtocolLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.ConnID(),
		Direction:    direction,
		Layer:        log.LayerProtocol,
		Category:     log.CategoryControl,
		RemoteAddr:   c.config.hostPort(),
		Control:      &log.ControlEvent{Type: typ},
	})
}

// logError records an error in the protocol log.
func (c *Conn) logError(layer log.Layer, err error, context string) {
	if c.config.ProtocolLogger == nil {
		return
	}
	c.config.ProtocolLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.ConnID(),
		Direction:    log.DirectionIn,
		Layer:        layer,
		Category:     log.CategoryError,
		RemoteAddr:   c.config.hostPort(),
		Error:        &log.ErrorEventData{Layer: layer, Message: err.Error(), Context: context},
	})
}

// PingCount returns the number of caller-initiated pings sent.
func (c *Conn) PingCount() uint64 {
	return c.pingCount.Load()
}

// PublishCount returns the number of successfully published messages.
func (c *Conn) PublishCount() uint64 {
	return c.publishCount.Load()
}

// ReconnectCount returns the number of Reconnect calls.
func (c *Conn) ReconnectCount() uint64 {
	return c.reconnectCount.Load()
}

// MsgsReceived returns the number of messages dispatched to handlers.
func (c *Conn) MsgsReceived() uint64 {
	return c.msgsReceived.Load()
}

// SubscriptionCount returns the number of active subscriptions.
func (c *Conn) SubscriptionCount() int {
	return c.registry.Count()
}

// SubscriptionIDs returns the active sids in subscription order.
func (c *Conn) SubscriptionIDs() []string {
	return c.registry.IDs()
}

// Stats is a point-in-time snapshot of the connection counters.
type Stats struct {
	Pings         uint64
	Publishes     uint64
	Reconnects    uint64
	MsgsReceived  uint64
	Subscriptions int
}

// Stats returns a snapshot of the connection counters.
func (c *Conn) Stats() Stats {
	return Stats{
		Pings:         c.pingCount.Load(),
		Publishes:     c.publishCount.Load(),
		Reconnects:    c.reconnectCount.Load(),
		MsgsReceived:  c.msgsReceived.Load(),
		Subscriptions: c.registry.Count(),
	}
}
