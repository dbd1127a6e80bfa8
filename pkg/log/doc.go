// Package log captures framework events from the device registry and its
// endpoints.
//
// Events cover the registration lifecycle, handle open/close, ioctl
// requests, deferred IRQ-line toggles and mapping operations. The
// interrupt-delivery path itself is never logged: it runs at interrupt
// priority and must stay allocation-free.
//
// Applications implement the Logger interface, or use one of the provided
// implementations:
//   - NoopLogger discards everything (the default).
//   - SlogAdapter forwards to a log/slog logger for console output.
//   - FileLogger persists CBOR-encoded events for later replay.
//   - MultiLogger fans out to several of the above.
package log
