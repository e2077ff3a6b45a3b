package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// Transport limits.
const (
	// DefaultMaxLineLength is the maximum length of one command line (4 KB).
	DefaultMaxLineLength = 4096

	// DefaultMaxPayloadSize is the maximum payload block size (1 MB).
	DefaultMaxPayloadSize = 1 << 20
)

// Transport errors.
var (
	// ErrUnavailable indicates the byte stream could not be opened.
	ErrUnavailable = errors.New("transport unavailable")

	// ErrShortWrite indicates the stream accepted fewer bytes than the
	// encoded command. The command must be considered lost.
	ErrShortWrite = errors.New("short write")

	// ErrLineTooLong indicates an inbound line exceeded the line limit.
	ErrLineTooLong = errors.New("line too long")

	// ErrPayloadTooLarge indicates an advertised payload length above the limit.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrTruncated indicates the stream ended inside a payload block.
	ErrTruncated = errors.New("payload truncated")

	// ErrMissingTerminator indicates a payload block without its CRLF terminator.
	ErrMissingTerminator = errors.New("payload missing line terminator")

	// ErrClosed indicates the transport has been closed.
	ErrClosed = errors.New("transport closed")
)

// Config configures a transport connection.
type Config struct {
	// MaxLineLength is the maximum command line length (default: 4 KB).
	MaxLineLength int

	// MaxPayloadSize is the maximum payload block size (default: 1 MB).
	MaxPayloadSize int

	// WriteTimeout is the per-command write deadline (0 = no deadline).
	WriteTimeout time.Duration
}

// DefaultConfig returns the default transport configuration.
func DefaultConfig() Config {
	return Config{
		MaxLineLength:  DefaultMaxLineLength,
		MaxPayloadSize: DefaultMaxPayloadSize,
	}
}

// Conn is a line-oriented transport over a single byte stream.
//
// Reads must come from a single goroutine (the dispatch loop). Writes
// are safe from any goroutine; each command is written in one call so
// concurrent commands never interleave.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader
	config Config

	// partial holds line bytes consumed before a read deadline fired,
	// so a later ReadLine resumes the same line. Only the reading
	// goroutine touches it.
	partial []byte

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeCh   chan struct{}
}

// NewConn wraps an established byte stream. Zero config fields fall
// back to defaults.
func NewConn(nc net.Conn, config Config) *Conn {
	if config.MaxLineLength <= 0 {
		config.MaxLineLength = DefaultMaxLineLength
	}
	if config.MaxPayloadSize <= 0 {
		config.MaxPayloadSize = DefaultMaxPayloadSize
	}

	return &Conn{
		conn:    nc,
		reader:  bufio.NewReader(nc),
		config:  config,
		closeCh: make(chan struct{}),
	}
}

// ReadLine reads bytes up to and including the next LF and returns the
// line with its terminator and any trailing whitespace trimmed.
// It blocks until a full line, an error, or the read deadline.
// io.EOF is returned unwrapped so callers can detect end-of-stream.
func (c *Conn) ReadLine() (string, error) {
	line := c.partial
	c.partial = nil
	for {
		frag, err := c.reader.ReadSlice('\n')
		line = append(line, frag...)
		if err == nil {
			break
		}
		if err == bufio.ErrBufferFull {
			if len(line) > c.config.MaxLineLength {
				return "", fmt.Errorf("%w: %d > %d", ErrLineTooLong, len(line), c.config.MaxLineLength)
			}
			continue
		}
		if err == io.EOF {
			return "", io.EOF
		}
		// A deadline can fire mid-line; keep what arrived so the next
		// call resumes instead of corrupting the stream.
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			c.partial = line
		}
		return "", fmt.Errorf("failed to read line: %w", err)
	}
	if len(line) > c.config.MaxLineLength+len("\r\n") {
		return "", fmt.Errorf("%w: %d > %d", ErrLineTooLong, len(line), c.config.MaxLineLength)
	}
	return strings.TrimRight(string(line), " \t\r\n"), nil
}

// ReadPayload reads exactly size payload bytes plus the CRLF
// terminator. Size zero is valid and yields an empty payload.
// Large payloads are reassembled across as many socket reads as needed.
func (c *Conn) ReadPayload(size int) ([]byte, error) {
	if size > c.config.MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, size, c.config.MaxPayloadSize)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(c.reader, payload); err != nil {
		if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	// Consume the terminator. A bare LF is tolerated.
	b, err := c.reader.ReadByte()
	if err != nil {
		return nil, ErrTruncated
	}
	if b == '\r' {
		if b, err = c.reader.ReadByte(); err != nil {
			return nil, ErrTruncated
		}
	}
	if b != '\n' {
		return nil, fmt.Errorf("%w: got 0x%02x", ErrMissingTerminator, b)
	}

	return payload, nil
}

// WriteCommand writes one encoded command to the stream.
// Thread-safe: commands from concurrent goroutines never interleave.
func (c *Conn) WriteCommand(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.closeCh:
		return ErrClosed
	default:
	}

	if c.config.WriteTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
		defer c.conn.SetWriteDeadline(time.Time{})
	}

	n, err := c.conn.Write(frame)
	if err != nil {
		return fmt.Errorf("failed to write command: %w", err)
	}
	if n < len(frame) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(frame))
	}
	return nil
}

// SetReadDeadline sets the deadline for blocking reads.
// A zero time clears the deadline.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// LocalAddr returns the local network address.
func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the underlying stream.
// It is safe to call Close multiple times.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}
