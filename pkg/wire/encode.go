package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Encoding errors.
var (
	// ErrInvalidSubject indicates an empty subject or one containing
	// whitespace or control characters.
	ErrInvalidSubject = errors.New("invalid subject")

	// ErrInvalidSID indicates an empty or malformed subscription id.
	ErrInvalidSID = errors.New("invalid subscription id")
)

// ConnectOptions are the client options carried by the CONNECT
// handshake. The zero value encodes as the empty object {}.
type ConnectOptions struct {
	// Name is an optional client name for broker-side diagnostics.
	Name string `json:"name,omitempty"`
}

// AppendConnect appends a CONNECT handshake line to dst.
func AppendConnect(dst []byte, opts ConnectOptions) ([]byte, error) {
	body, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode connect options: %w", err)
	}
	dst = append(dst, VerbConnect...)
	dst = append(dst, ' ')
	dst = append(dst, body...)
	return append(dst, CRLF...), nil
}

// AppendPing appends a PING line to dst.
func AppendPing(dst []byte) []byte {
	return append(dst, VerbPing+CRLF...)
}

// AppendPong appends a PONG line to dst.
func AppendPong(dst []byte) []byte {
	return append(dst, VerbPong+CRLF...)
}

// AppendPub appends a PUB command to dst: the header line followed by
// the payload block and its CRLF terminator. The payload may be empty.
func AppendPub(dst []byte, subject string, payload []byte) ([]byte, error) {
	if err := ValidateSubject(subject); err != nil {
		return nil, err
	}
	dst = append(dst, VerbPub...)
	dst = append(dst, ' ')
	dst = append(dst, subject...)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(len(payload)), 10)
	dst = append(dst, CRLF...)
	dst = append(dst, payload...)
	return append(dst, CRLF...), nil
}

// AppendSub appends a SUB command to dst.
func AppendSub(dst []byte, subject, sid string) ([]byte, error) {
	if err := ValidateSubject(subject); err != nil {
		return nil, err
	}
	if err := validateSID(sid); err != nil {
		return nil, err
	}
	dst = append(dst, VerbSub...)
	dst = append(dst, ' ')
	dst = append(dst, subject...)
	dst = append(dst, ' ')
	dst = append(dst, sid...)
	return append(dst, CRLF...), nil
}

// AppendUnsub appends an UNSUB command to dst.
func AppendUnsub(dst []byte, sid string) ([]byte, error) {
	if err := validateSID(sid); err != nil {
		return nil, err
	}
	dst = append(dst, VerbUnsub...)
	dst = append(dst, ' ')
	dst = append(dst, sid...)
	return append(dst, CRLF...), nil
}

// AppendMsg appends a MSG frame to dst: header line, payload block,
// CRLF terminator. Brokers and test doubles use this; clients only
// ever parse MSG.
func AppendMsg(dst []byte, subject, sid string, payload []byte) ([]byte, error) {
	if err := ValidateSubject(subject); err != nil {
		return nil, err
	}
	if err := validateSID(sid); err != nil {
		return nil, err
	}
	dst = append(dst, VerbMsg...)
	dst = append(dst, ' ')
	dst = append(dst, subject...)
	dst = append(dst, ' ')
	dst = append(dst, sid...)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(len(payload)), 10)
	dst = append(dst, CRLF...)
	dst = append(dst, payload...)
	return append(dst, CRLF...), nil
}

// ValidateSubject reports whether subject is usable on the wire.
// Subjects are non-empty, contain no whitespace, and must be 7-bit
// clean with no control characters.
func ValidateSubject(subject string) error {
	if subject == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSubject)
	}
	if strings.ContainsFunc(subject, func(r rune) bool {
		return r <= ' ' || r > '~'
	}) {
		return fmt.Errorf("%w: %q", ErrInvalidSubject, subject)
	}
	return nil
}

func validateSID(sid string) error {
	if sid == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSID)
	}
	if strings.ContainsFunc(sid, func(r rune) bool {
		return r <= ' ' || r > '~'
	}) {
		return fmt.Errorf("%w: %q", ErrInvalidSID, sid)
	}
	return nil
}
