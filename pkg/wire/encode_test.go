package wire

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestAppendConnect(t *testing.T) {
	got, err := AppendConnect(nil, ConnectOptions{})
	if err != nil {
		t.Fatalf("AppendConnect failed: %v", err)
	}
	if string(got) != "CONNECT {}\r\n" {
		t.Errorf("AppendConnect = %q, want %q", got, "CONNECT {}\r\n")
	}

	got, err = AppendConnect(nil, ConnectOptions{Name: "cli"})
	if err != nil {
		t.Fatalf("AppendConnect with name failed: %v", err)
	}
	if string(got) != "CONNECT {\"name\":\"cli\"}\r\n" {
		t.Errorf("AppendConnect = %q", got)
	}
}

func TestAppendPingPong(t *testing.T) {
	if got := AppendPing(nil); string(got) != "PING\r\n" {
		t.Errorf("AppendPing = %q, want %q", got, "PING\r\n")
	}
	if got := AppendPong(nil); string(got) != "PONG\r\n" {
		t.Errorf("AppendPong = %q, want %q", got, "PONG\r\n")
	}
}

func TestAppendPub(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		payload []byte
		want    string
	}{
		{
			name:    "small payload",
			subject: "foo",
			payload: []byte("hello"),
			want:    "PUB foo 5\r\nhello\r\n",
		},
		{
			name:    "empty payload",
			subject: "foo.bar",
			payload: nil,
			want:    "PUB foo.bar 0\r\n\r\n",
		},
		{
			name:    "binary payload",
			subject: "bin",
			payload: []byte{0x00, 0xFF, 0x0D, 0x0A},
			want:    "PUB bin 4\r\n\x00\xff\r\n\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AppendPub(nil, tt.subject, tt.payload)
			if err != nil {
				t.Fatalf("AppendPub failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("AppendPub = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppendSubUnsub(t *testing.T) {
	got, err := AppendSub(nil, "foo", "1")
	if err != nil {
		t.Fatalf("AppendSub failed: %v", err)
	}
	if string(got) != "SUB foo 1\r\n" {
		t.Errorf("AppendSub = %q, want %q", got, "SUB foo 1\r\n")
	}

	got, err = AppendUnsub(nil, "1")
	if err != nil {
		t.Fatalf("AppendUnsub failed: %v", err)
	}
	if string(got) != "UNSUB 1\r\n" {
		t.Errorf("AppendUnsub = %q, want %q", got, "UNSUB 1\r\n")
	}
}

func TestAppendRejectsInvalidSubject(t *testing.T) {
	bad := []string{"", "has space", "has\ttab", "crlf\r\n", "bell\x07"}
	for _, subject := range bad {
		if _, err := AppendPub(nil, subject, nil); !errors.Is(err, ErrInvalidSubject) {
			t.Errorf("AppendPub(%q) error = %v, want ErrInvalidSubject", subject, err)
		}
		if _, err := AppendSub(nil, subject, "1"); !errors.Is(err, ErrInvalidSubject) {
			t.Errorf("AppendSub(%q) error = %v, want ErrInvalidSubject", subject, err)
		}
	}
}

func TestAppendRejectsInvalidSID(t *testing.T) {
	if _, err := AppendSub(nil, "foo", ""); !errors.Is(err, ErrInvalidSID) {
		t.Errorf("AppendSub with empty sid error = %v, want ErrInvalidSID", err)
	}
	if _, err := AppendUnsub(nil, "bad sid"); !errors.Is(err, ErrInvalidSID) {
		t.Errorf("AppendUnsub error = %v, want ErrInvalidSID", err)
	}
}

// Encoding a PUB and parsing it back as a MSG header exercises both
// directions of the codec with the same subject and payload bytes.
func TestPubMsgRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		[]byte("hello"),
		bytes.Repeat([]byte{0xAB}, 70000), // larger than one read buffer
	}

	for _, payload := range payloads {
		frame, err := AppendMsg(nil, "round.trip", "42", payload)
		if err != nil {
			t.Fatalf("AppendMsg failed: %v", err)
		}

		head, rest, found := strings.Cut(string(frame), CRLF)
		if !found {
			t.Fatal("frame missing CRLF after header")
		}

		cmd, err := ParseLine(head)
		if err != nil {
			t.Fatalf("ParseLine(%q) failed: %v", head, err)
		}
		if cmd.Kind != KindMsg || cmd.Subject != "round.trip" || cmd.SID != "42" {
			t.Errorf("parsed header = %+v", cmd)
		}
		if cmd.PayloadSize != len(payload) {
			t.Errorf("PayloadSize = %d, want %d", cmd.PayloadSize, len(payload))
		}
		if got := rest[:cmd.PayloadSize]; !bytes.Equal([]byte(got), payload) {
			t.Errorf("payload mismatch: got %d bytes", len(got))
		}
		if rest[cmd.PayloadSize:] != CRLF {
			t.Error("frame missing CRLF after payload")
		}
	}
}
