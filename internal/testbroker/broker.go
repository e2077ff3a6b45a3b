// Package testbroker runs a minimal in-process Plume broker for tests.
//
// The broker accepts real TCP connections, answers PING with PONG, and
// routes PUB frames to every connection subscribed to the subject. It
// implements just enough of the broker side of the protocol to exercise
// a client end to end; it is not a production broker.
package testbroker

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
)

// Broker is an in-process broker listening on a loopback port.
type Broker struct {
	listener net.Listener

	mu      sync.Mutex
	clients []*brokerClient
	closed  bool

	pings     int
	pongs     int
	publishes int
}

// brokerClient is one accepted connection and its subscriptions.
type brokerClient struct {
	conn net.Conn

	mu   sync.Mutex
	subs map[string]string // sid -> subject
}

// Start launches a broker on an ephemeral loopback port.
func Start() (*Broker, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	b := &Broker{listener: listener}
	go b.acceptLoop()
	return b, nil
}

// Addr returns the host:port the broker listens on.
func (b *Broker) Addr() string {
	return b.listener.Addr().String()
}

// Port returns the listening port.
func (b *Broker) Port() int {
	return b.listener.Addr().(*net.TCPAddr).Port
}

// Close shuts the listener and all accepted connections.
func (b *Broker) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	clients := b.clients
	b.mu.Unlock()

	b.listener.Close()
	for _, c := range clients {
		c.conn.Close()
	}
}

// PingCount returns the number of PING frames received.
func (b *Broker) PingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pings
}

// PongCount returns the number of PONG frames received.
func (b *Broker) PongCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pongs
}

// PublishCount returns the number of PUB frames received.
func (b *Broker) PublishCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.publishes
}

// ClientCount returns the number of live connections.
func (b *Broker) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Subscriptions returns the sid->subject map of the most recent
// connection, for asserting SUB replay after reconnects.
func (b *Broker) Subscriptions() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.clients) == 0 {
		return nil
	}

	c := b.clients[len(b.clients)-1]
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.subs))
	for sid, subject := range c.subs {
		out[sid] = subject
	}
	return out
}

// Inject writes raw bytes to every live connection, bypassing the
// routing logic. Used to feed malformed or unsolicited frames.
func (b *Broker) Inject(raw []byte) error {
	b.mu.Lock()
	clients := append([]*brokerClient(nil), b.clients...)
	b.mu.Unlock()

	if len(clients) == 0 {
		return fmt.Errorf("no connected clients")
	}
	for _, c := range clients {
		if _, err := c.conn.Write(raw); err != nil {
			return err
		}
	}
	return nil
}

// DropClients closes all accepted connections while keeping the
// listener open, simulating a broker-side disconnect.
func (b *Broker) DropClients() {
	b.mu.Lock()
	clients := b.clients
	b.clients = nil
	b.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

func (b *Broker) acceptLoop() {
	for {
		conn, err := b.listener.Accept()
		if err != nil {
			return
		}

		c := &brokerClient{conn: conn, subs: make(map[string]string)}
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			conn.Close()
			return
		}
		b.clients = append(b.clients, c)
		b.mu.Unlock()

		go b.serve(c)
	}
}

func (b *Broker) serve(c *brokerClient) {
	defer b.remove(c)

	reader := bufio.NewReader(c.conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "CONNECT":
			// Handshake accepted implicitly.

		case "PING":
			b.mu.Lock()
			b.pings++
			b.mu.Unlock()
			c.conn.Write([]byte("PONG\r\n"))

		case "PONG":
			b.mu.Lock()
			b.pongs++
			b.mu.Unlock()

		case "SUB":
			if len(fields) == 3 {
				c.mu.Lock()
				c.subs[fields[2]] = fields[1]
				c.mu.Unlock()
			}

		case "UNSUB":
			if len(fields) == 2 {
				c.mu.Lock()
				delete(c.subs, fields[1])
				c.mu.Unlock()
			}

		case "PUB":
			if len(fields) != 3 {
				return
			}
			size, err := strconv.Atoi(fields[2])
			if err != nil || size < 0 {
				return
			}
			payload := make([]byte, size)
			if _, err := io.ReadFull(reader, payload); err != nil {
				return
			}
			// Consume the payload terminator.
			if b, err := reader.ReadByte(); err == nil && b == '\r' {
				reader.ReadByte()
			}

			b.mu.Lock()
			b.publishes++
			b.mu.Unlock()
			b.route(fields[1], payload)
		}
	}
}

// route delivers a payload to every subscription matching subject.
func (b *Broker) route(subject string, payload []byte) {
	b.mu.Lock()
	clients := append([]*brokerClient(nil), b.clients...)
	b.mu.Unlock()

	for _, c := range clients {
		c.mu.Lock()
		for sid, sub := range c.subs {
			if sub != subject {
				continue
			}
			frame := fmt.Sprintf("MSG %s %s %d\r\n", subject, sid, len(payload))
			c.conn.Write(append(append([]byte(frame), payload...), '\r', '\n'))
		}
		c.mu.Unlock()
	}
}

func (b *Broker) remove(c *brokerClient) {
	c.conn.Close()

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.clients {
		if existing == c {
			b.clients = append(b.clients[:i], b.clients[i+1:]...)
			return
		}
	}
}
