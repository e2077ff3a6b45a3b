// Package wire implements the Plume line protocol codec.
//
// The wire layer handles:
//   - CRLF-terminated command encoding (CONNECT, PING, PONG, PUB, SUB, UNSUB)
//   - Inbound line classification and MSG header parsing
//   - Subject and sid validation
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│     Command Lines (CRLF)       │
//	├────────────────────────────────┤
//	│   Payload Blocks (PUB/MSG)     │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// Commands are 7-bit clean text lines terminated by CRLF. PUB and MSG
// carry a binary-safe payload block of exactly the advertised byte
// length, itself terminated by CRLF. A zero-length payload is valid.
//
// Encoders produce one contiguous byte slice per command, payload
// included, so the transport can write each command atomically.
package wire
