package client

import (
	"sync"
	"time"
)

// Keep-alive defaults.
const (
	// DefaultPingInterval is the default interval between pings.
	DefaultPingInterval = 30 * time.Second

	// DefaultPongTimeout is the default timeout waiting for a pong response.
	DefaultPongTimeout = 5 * time.Second

	// DefaultMaxMissedPongs is the default number of missed pongs before disconnect.
	DefaultMaxMissedPongs = 3
)

// KeepAliveConfig configures the background pinger.
type KeepAliveConfig struct {
	// PingInterval is the interval between pings. Zero disables the
	// pinger entirely.
	PingInterval time.Duration

	// PongTimeout is the timeout waiting for a pong response.
	PongTimeout time.Duration

	// MaxMissedPongs is the number of missed pongs before disconnect.
	MaxMissedPongs int
}

// DefaultKeepAliveConfig returns the default keep-alive configuration.
func DefaultKeepAliveConfig() KeepAliveConfig {
	return KeepAliveConfig{
		PingInterval:   DefaultPingInterval,
		PongTimeout:    DefaultPongTimeout,
		MaxMissedPongs: DefaultMaxMissedPongs,
	}
}

// DetectionDelay calculates the maximum time to detect connection loss
// for this configuration: PingInterval * MaxMissedPongs + PongTimeout.
func (c KeepAliveConfig) DetectionDelay() time.Duration {
	return c.PingInterval*time.Duration(c.MaxMissedPongs) + c.PongTimeout
}

// KeepAlive monitors connection liveness by sending PING at a fixed
// interval and counting missed PONG replies. The protocol carries no
// sequence numbers, so any PONG settles the oldest outstanding PING.
type KeepAlive struct {
	config KeepAliveConfig

	// Callbacks
	sendPing  func() error
	onTimeout func()

	// State
	missedPongs  int
	lastPingTime time.Time
	lastPongTime time.Time
	hasPending   bool

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	pongCh  chan struct{}
}

// NewKeepAlive creates a new keep-alive monitor.
func NewKeepAlive(config KeepAliveConfig, sendPing func() error, onTimeout func()) *KeepAlive {
	if config.PingInterval == 0 {
		config.PingInterval = DefaultPingInterval
	}
	if config.PongTimeout == 0 {
		config.PongTimeout = DefaultPongTimeout
	}
	if config.MaxMissedPongs == 0 {
		config.MaxMissedPongs = DefaultMaxMissedPongs
	}

	return &KeepAlive{
		config:    config,
		sendPing:  sendPing,
		onTimeout: onTimeout,
		stopCh:    make(chan struct{}),
		pongCh:    make(chan struct{}, 1),
	}
}

// Start begins the monitoring loop.
func (ka *KeepAlive) Start() {
	ka.mu.Lock()
	if ka.running {
		ka.mu.Unlock()
		return
	}
	ka.running = true
	ka.stopCh = make(chan struct{})
	ka.mu.Unlock()

	go ka.loop()
}

// Stop stops the monitoring loop.
func (ka *KeepAlive) Stop() {
	ka.mu.Lock()
	defer ka.mu.Unlock()

	if !ka.running {
		return
	}

	ka.running = false
	close(ka.stopCh)
}

// PongReceived should be called when a PONG frame arrives.
func (ka *KeepAlive) PongReceived() {
	select {
	case ka.pongCh <- struct{}{}:
	default:
		// Channel full, drop (shouldn't happen in practice)
	}
}

// IsRunning returns true if the monitoring loop is active.
func (ka *KeepAlive) IsRunning() bool {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	return ka.running
}

// KeepAliveStats contains keep-alive statistics.
type KeepAliveStats struct {
	LastPingTime time.Time
	LastPongTime time.Time
	MissedPongs  int
}

// Stats returns current keep-alive statistics.
func (ka *KeepAlive) Stats() KeepAliveStats {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	return KeepAliveStats{
		LastPingTime: ka.lastPingTime,
		LastPongTime: ka.lastPongTime,
		MissedPongs:  ka.missedPongs,
	}
}

// loop is the main monitoring loop.
func (ka *KeepAlive) loop() {
	ticker := time.NewTicker(ka.config.PingInterval)
	defer ticker.Stop()

	// Send initial ping
	ka.sendPingMessage()

	for {
		select {
		case <-ka.stopCh:
			return
		case <-ticker.C:
			ka.handleTick()
		case <-ka.pongCh:
			ka.handlePong()
		}
	}
}

// sendPingMessage sends a ping and records the time.
func (ka *KeepAlive) sendPingMessage() {
	ka.mu.Lock()
	ka.lastPingTime = time.Now()
	ka.hasPending = true
	ka.mu.Unlock()

	if err := ka.sendPing(); err != nil {
		// Send failed - connection is likely dead
		ka.mu.Lock()
		ka.hasPending = false
		ka.mu.Unlock()
		// Let the pong timeout handle it
	}
}

// handleTick handles the ping interval tick.
func (ka *KeepAlive) handleTick() {
	ka.mu.Lock()

	// Check if we have a pending ping that timed out
	if ka.hasPending {
		elapsed := time.Since(ka.lastPingTime)
		if elapsed >= ka.config.PongTimeout {
			// Pong not received in time
			ka.missedPongs++
			ka.hasPending = false

			if ka.missedPongs >= ka.config.MaxMissedPongs {
				// Connection considered dead
				ka.mu.Unlock()
				if ka.onTimeout != nil {
					ka.onTimeout()
				}
				return
			}
		}
	}

	ka.mu.Unlock()

	// Send next ping
	ka.sendPingMessage()
}

// handlePong handles a received pong.
func (ka *KeepAlive) handlePong() {
	ka.mu.Lock()
	defer ka.mu.Unlock()

	// Without sequence numbers any pong proves liveness.
	ka.lastPongTime = time.Now()
	ka.hasPending = false
	ka.missedPongs = 0
}
