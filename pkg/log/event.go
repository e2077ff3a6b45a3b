package log

import (
	"time"
)

// MaxLineDataSize is the maximum line/payload size to include in log
// events (4 KB). Larger data is truncated to avoid excessive memory use.
const MaxLineDataSize = 4096

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the broker address (host:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Line        *LineEvent        `cbor:"7,keyasint,omitempty"`  // Transport layer
	Control     *ControlEvent     `cbor:"8,keyasint,omitempty"`  // Ping/pong
	StateChange *StateChangeEvent `cbor:"9,keyasint,omitempty"`  // Connection state
	Error       *ErrorEventData   `cbor:"10,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the line framing layer (raw bytes).
	LayerTransport Layer = 0
	// LayerProtocol is the command parsing layer.
	LayerProtocol Layer = 1
	// LayerClient is the connection lifecycle layer.
	LayerClient Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerProtocol:
		return "PROTOCOL"
	case LayerClient:
		return "CLIENT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a protocol message (publish/subscribe/dispatch).
	CategoryMessage Category = 0
	// CategoryControl indicates a control message (ping/pong).
	CategoryControl Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryControl:
		return "CONTROL"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LineEvent captures one command line at the transport layer.
type LineEvent struct {
	// Verb is the command verb (PUB, SUB, MSG, ...), or empty for
	// unrecognized lines.
	Verb string `cbor:"1,keyasint,omitempty"`

	// Size is the full frame size in bytes, payload included.
	Size int `cbor:"2,keyasint"`

	// Data is the raw line (may be truncated for large frames).
	Data []byte `cbor:"3,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"4,keyasint,omitempty"`
}

// ControlEvent captures keepalive control traffic.
type ControlEvent struct {
	// Type of control message.
	Type ControlType `cbor:"1,keyasint"`
}

// ControlType indicates the type of control message.
type ControlType uint8

const (
	// ControlPing indicates a PING message.
	ControlPing ControlType = 0
	// ControlPong indicates a PONG message.
	ControlPong ControlType = 1
)

// String returns the control message type name.
func (c ControlType) String() string {
	switch c {
	case ControlPing:
		return "PING"
	case ControlPong:
		return "PONG"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures connection lifecycle events.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}

// NewLineEvent builds a LineEvent for a raw frame, truncating data
// beyond MaxLineDataSize.
func NewLineEvent(verb string, frame []byte) *LineEvent {
	data := frame
	truncated := false
	if len(data) > MaxLineDataSize {
		data = data[:MaxLineDataSize]
		truncated = true
	}
	return &LineEvent{
		Verb:      verb,
		Size:      len(frame),
		Data:      data,
		Truncated: truncated,
	}
}
