// Package transport provides the Plume transport layer implementation.
//
// The transport layer handles:
//   - TCP connection establishment with a connect timeout
//   - Buffered CRLF line reads and fixed-length payload reads
//   - Atomic per-command writes shared by concurrent callers
//   - Read/write deadline plumbing for the dispatch loop
//
// A Conn is a thin wrapper around a single net.Conn. It performs no
// protocol interpretation beyond line framing; encoding and decoding
// of commands is the wire package's job.
//
// Reads block on the socket. The dispatch loop owns all reads; writes
// may come from any goroutine and are serialized by an internal lock
// so commands never interleave on the stream.
package transport
