// Package device implements the registration lifecycle and the user-facing
// endpoint surface of the framework.
//
// A driver author fills in a Descriptor (name, interrupt line, operation
// hooks and a memory region table) and hands it to a Registry. The
// registry validates the descriptor, wires up the event bridge, the
// companion mapper endpoint and interrupt-line ownership, and registers the
// primary endpoint. Setup is all-or-nothing: any failure after validation
// unwinds every acquired resource in strictly reverse order of acquisition,
// leaving no endpoint registered, no name allocated and no line owned.
//
// Registered devices expose a file-like surface through open handles:
// blocking reads of the event counter, writes that toggle the interrupt
// line, ioctl requests for arming signal notification, and a readiness
// query. Each open handle carries its own read cursor into the shared
// monotonic counter, so concurrent readers never disturb one another.
//
// Register and Unregister are not meant to be called concurrently for the
// same device; callers serialize those externally.
package device
