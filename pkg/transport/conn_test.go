package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

// fakeConn is an in-memory net.Conn for framing tests. Reads are
// served from the in buffer in chunks of at most chunkSize bytes to
// exercise multi-read reassembly; writes land in the out buffer.
type fakeConn struct {
	in        bytes.Buffer
	out       bytes.Buffer
	chunkSize int
	shortBy   int
}

func (f *fakeConn) Read(p []byte) (int, error) {
	if f.chunkSize > 0 && len(p) > f.chunkSize {
		p = p[:f.chunkSize]
	}
	return f.in.Read(p)
}

func (f *fakeConn) Write(p []byte) (int, error) {
	if f.shortBy > 0 && len(p) > f.shortBy {
		p = p[:len(p)-f.shortBy]
	}
	return f.out.Write(p)
}

func (f *fakeConn) Close() error                       { return nil }
func (f *fakeConn) LocalAddr() net.Addr                { return nil }
func (f *fakeConn) RemoteAddr() net.Addr               { return nil }
func (f *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (f *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (f *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

func TestReadLine(t *testing.T) {
	fc := &fakeConn{}
	fc.in.WriteString("PING\r\nMSG foo 1 5\r\n\r\n")
	conn := NewConn(fc, Config{})

	want := []string{"PING", "MSG foo 1 5", ""}
	for _, w := range want {
		got, err := conn.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine failed: %v", err)
		}
		if got != w {
			t.Errorf("ReadLine = %q, want %q", got, w)
		}
	}

	if _, err := conn.ReadLine(); err != io.EOF {
		t.Errorf("ReadLine at end = %v, want io.EOF", err)
	}
}

func TestReadLineTooLong(t *testing.T) {
	fc := &fakeConn{}
	fc.in.Write(bytes.Repeat([]byte("x"), 200))
	fc.in.WriteString("\r\n")
	conn := NewConn(fc, Config{MaxLineLength: 100})

	if _, err := conn.ReadLine(); !errors.Is(err, ErrLineTooLong) {
		t.Errorf("ReadLine error = %v, want ErrLineTooLong", err)
	}
}

func TestReadPayload(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		size    int
		want    string
		wantErr error
	}{
		{name: "exact", input: "hello\r\n", size: 5, want: "hello"},
		{name: "empty", input: "\r\n", size: 0, want: ""},
		{name: "bare LF terminator", input: "hello\n", size: 5, want: "hello"},
		{name: "payload containing CRLF", input: "he\r\nlo\r\n", size: 6, want: "he\r\nlo"},
		{name: "missing terminator", input: "helloX", size: 5, wantErr: ErrMissingTerminator},
		{name: "truncated", input: "hel", size: 5, wantErr: ErrTruncated},
		{name: "truncated at terminator", input: "hello", size: 5, wantErr: ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeConn{}
			fc.in.WriteString(tt.input)
			conn := NewConn(fc, Config{})

			got, err := conn.ReadPayload(tt.size)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadPayload error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadPayload failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ReadPayload = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadPayloadLargeMultiRead(t *testing.T) {
	payload := bytes.Repeat([]byte{0xC3}, 70000)

	fc := &fakeConn{chunkSize: 1024}
	fc.in.Write(payload)
	fc.in.WriteString("\r\n")
	conn := NewConn(fc, Config{})

	got, err := conn.ReadPayload(len(payload))
	if err != nil {
		t.Fatalf("ReadPayload failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload mismatch: got %d bytes, want %d bytes", len(got), len(payload))
	}
}

func TestReadPayloadTooLarge(t *testing.T) {
	conn := NewConn(&fakeConn{}, Config{MaxPayloadSize: 100})
	if _, err := conn.ReadPayload(101); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("ReadPayload error = %v, want ErrPayloadTooLarge", err)
	}
}

func TestWriteCommand(t *testing.T) {
	fc := &fakeConn{}
	conn := NewConn(fc, Config{})

	if err := conn.WriteCommand([]byte("PING\r\n")); err != nil {
		t.Fatalf("WriteCommand failed: %v", err)
	}
	if fc.out.String() != "PING\r\n" {
		t.Errorf("written = %q, want %q", fc.out.String(), "PING\r\n")
	}
}

func TestWriteCommandShortWrite(t *testing.T) {
	fc := &fakeConn{shortBy: 2}
	conn := NewConn(fc, Config{})

	err := conn.WriteCommand([]byte("PUB foo 5\r\nhello\r\n"))
	if !errors.Is(err, ErrShortWrite) {
		t.Errorf("WriteCommand error = %v, want ErrShortWrite", err)
	}
}

func TestWriteCommandAfterClose(t *testing.T) {
	conn := NewConn(&fakeConn{}, Config{})
	if err := conn.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if err := conn.WriteCommand([]byte("PING\r\n")); !errors.Is(err, ErrClosed) {
		t.Errorf("WriteCommand after close = %v, want ErrClosed", err)
	}
}

func TestDialerDial(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer ln.Close()

	go func() {
		nc, err := ln.Accept()
		if err != nil {
			return
		}
		nc.Write([]byte("PING\r\n"))
		nc.Close()
	}()

	d := &Dialer{}
	conn, err := d.Dial(context.Background(), ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	line, err := conn.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if line != "PING" {
		t.Errorf("ReadLine = %q, want %q", line, "PING")
	}
}

func TestDialerDialUnavailable(t *testing.T) {
	// Grab a free port, then close the listener so nothing accepts.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	address := ln.Addr().String()
	ln.Close()

	d := &Dialer{ConnectTimeout: 2 * time.Second}
	if _, err := d.Dial(context.Background(), address); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Dial error = %v, want ErrUnavailable", err)
	}
}
