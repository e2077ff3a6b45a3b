package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// Protocol verbs.
const (
	VerbConnect = "CONNECT"
	VerbPing    = "PING"
	VerbPong    = "PONG"
	VerbPub     = "PUB"
	VerbSub     = "SUB"
	VerbUnsub   = "UNSUB"
	VerbMsg     = "MSG"
)

// CRLF terminates every protocol line.
const CRLF = "\r\n"

// Kind classifies an inbound protocol line.
type Kind int

const (
	// KindEmpty is a blank line (no-op keepalive).
	KindEmpty Kind = iota

	// KindPing is an inbound PING that requires an immediate PONG.
	KindPing

	// KindPong is an inbound PONG keepalive response.
	KindPong

	// KindMsg is an inbound MSG header; a payload block follows.
	KindMsg

	// KindUnknown is any other line. Unknown lines are not an error;
	// they are surfaced for diagnostics and otherwise ignored.
	KindUnknown
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "EMPTY"
	case KindPing:
		return "PING"
	case KindPong:
		return "PONG"
	case KindMsg:
		return "MSG"
	case KindUnknown:
		return "UNKNOWN"
	default:
		return "INVALID"
	}
}

// Command is one decoded inbound protocol line.
type Command struct {
	// Kind classifies the line.
	Kind Kind

	// Subject is the routing subject (MSG only).
	Subject string

	// SID is the subscription identifier (MSG only).
	SID string

	// PayloadSize is the advertised payload byte length (MSG only).
	PayloadSize int

	// Raw is the original line with trailing whitespace trimmed.
	Raw string
}

// ParseError indicates a malformed protocol line.
type ParseError struct {
	// Line is the offending line.
	Line string

	// Reason describes what was wrong with it.
	Reason string
}

// Error returns the parse failure description.
func (e *ParseError) Error() string {
	return fmt.Sprintf("protocol parse error: %s: %q", e.Reason, e.Line)
}

// ParseLine decodes one inbound protocol line. The line must not
// include its CRLF terminator; trailing whitespace is trimmed.
//
// Malformed MSG headers (wrong field count, non-numeric or negative
// length) return a *ParseError. Lines with an unrecognized verb are
// not an error and come back as KindUnknown.
func ParseLine(line string) (Command, error) {
	line = strings.TrimRight(line, " \t\r\n")
	if line == "" {
		return Command{Kind: KindEmpty, Raw: line}, nil
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case VerbPing:
		return Command{Kind: KindPing, Raw: line}, nil

	case VerbPong:
		return Command{Kind: KindPong, Raw: line}, nil

	case VerbMsg:
		if len(fields) != 4 {
			return Command{}, &ParseError{Line: line, Reason: fmt.Sprintf("MSG expects 3 arguments, got %d", len(fields)-1)}
		}
		size, err := strconv.Atoi(fields[3])
		if err != nil {
			return Command{}, &ParseError{Line: line, Reason: "MSG payload length is not a number"}
		}
		if size < 0 {
			return Command{}, &ParseError{Line: line, Reason: "MSG payload length is negative"}
		}
		return Command{
			Kind:        KindMsg,
			Subject:     fields[1],
			SID:         fields[2],
			PayloadSize: size,
			Raw:         line,
		}, nil

	default:
		return Command{Kind: KindUnknown, Raw: line}, nil
	}
}
