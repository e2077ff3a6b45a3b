package client

import (
	"fmt"
	"time"

	"github.com/plume-protocol/plume-go/pkg/log"
)

// Address defaults.
const (
	// Scheme is the Plume address scheme.
	Scheme = "plume"

	// DefaultHost is the default broker host.
	DefaultHost = "localhost"

	// DefaultPort is the default broker port.
	DefaultPort = 4222
)

// Config configures a Plume connection.
type Config struct {
	// Host is the broker host (default: localhost).
	Host string

	// Port is the broker port (default: 4222).
	Port int

	// Name is an optional client name sent in the CONNECT handshake.
	Name string

	// ConnectTimeout bounds connection establishment (default: 10s).
	ConnectTimeout time.Duration

	// ReadTimeout bounds broker silence in the dispatch loop
	// (0 = wait forever).
	ReadTimeout time.Duration

	// WriteTimeout is the per-command write deadline (0 = no deadline).
	WriteTimeout time.Duration

	// MaxLineLength is the maximum inbound command line length (default: 4 KB).
	MaxLineLength int

	// MaxPayloadSize is the maximum payload block size (default: 1 MB).
	MaxPayloadSize int

	// KeepAlive configures the optional background pinger.
	// Disabled unless PingInterval is set.
	KeepAlive KeepAliveConfig

	// ProtocolLogger receives protocol events. Nil disables capture.
	ProtocolLogger log.Logger

	// OnStateChange is called after every connection state transition.
	OnStateChange func(oldState, newState State)

	// OnError is called for asynchronous errors (keepalive timeout).
	OnError func(err error)
}

// DefaultConfig returns the default connection configuration.
func DefaultConfig() Config {
	return Config{
		Host: DefaultHost,
		Port: DefaultPort,
	}
}

// hostPort returns the dial target.
func (c Config) hostPort() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// composeAddress returns the scheme-qualified endpoint string.
func (c Config) composeAddress() string {
	return fmt.Sprintf("%s://%s:%d", Scheme, c.Host, c.Port)
}
