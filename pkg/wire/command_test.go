package wire

import (
	"errors"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
	}{
		{
			name: "empty line",
			line: "",
			want: Command{Kind: KindEmpty},
		},
		{
			name: "whitespace only",
			line: "  \t",
			want: Command{Kind: KindEmpty},
		},
		{
			name: "ping",
			line: "PING",
			want: Command{Kind: KindPing, Raw: "PING"},
		},
		{
			name: "ping with trailing whitespace",
			line: "PING \r",
			want: Command{Kind: KindPing, Raw: "PING"},
		},
		{
			name: "pong",
			line: "PONG",
			want: Command{Kind: KindPong, Raw: "PONG"},
		},
		{
			name: "msg",
			line: "MSG foo 1 5",
			want: Command{Kind: KindMsg, Subject: "foo", SID: "1", PayloadSize: 5, Raw: "MSG foo 1 5"},
		},
		{
			name: "msg with zero length payload",
			line: "MSG updates.power 17 0",
			want: Command{Kind: KindMsg, Subject: "updates.power", SID: "17", PayloadSize: 0, Raw: "MSG updates.power 17 0"},
		},
		{
			name: "unknown verb",
			line: "INFO {\"server\":\"demo\"}",
			want: Command{Kind: KindUnknown, Raw: "INFO {\"server\":\"demo\"}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if err != nil {
				t.Fatalf("ParseLine(%q) failed: %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseLineMalformedMsg(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "missing length", line: "MSG foo 1"},
		{name: "extra field", line: "MSG foo 1 5 6"},
		{name: "non-numeric length", line: "MSG foo 1 five"},
		{name: "negative length", line: "MSG foo 1 -5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.line)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("ParseLine(%q) error = %v, want *ParseError", tt.line, err)
			}
			if parseErr.Line != tt.line {
				t.Errorf("ParseError.Line = %q, want %q", parseErr.Line, tt.line)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	kinds := map[Kind]string{
		KindEmpty:   "EMPTY",
		KindPing:    "PING",
		KindPong:    "PONG",
		KindMsg:     "MSG",
		KindUnknown: "UNKNOWN",
		Kind(99):    "INVALID",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
