// Package log provides structured protocol logging for Plume.
//
// This package defines the Logger interface and Event types for capturing
// protocol-level events at multiple layers (transport, protocol, client).
// It is separate from operational logging (slog) - protocol capture provides
// a complete machine-readable event trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/plume/client.plog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    log.NewFileLogger("/var/log/plume/client.plog"),
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: Raw command lines and payload sizes (LineEvent)
//   - Protocol: Keepalive control traffic (ControlEvent)
//   - Client: Connection state changes (StateChangeEvent)
//
// Errors at any layer use ErrorEvent.
//
// # File Format
//
// Log files use CBOR encoding with .plog extension. The Reader type
// replays a file, optionally filtered.
package log
