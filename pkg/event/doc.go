// Package event turns hardware interrupt occurrences into an observable,
// countable, blockable stream.
//
// Each registered device owns one Bridge. The interrupt handler runs the
// driver callback and, on a handled verdict, advances a shared monotonic
// counter and wakes every blocked reader. Readers carry their own cursor
// (the last count they observed) and only ever see the latest value: two
// increments between reads advance the cursor straight to the newest count,
// intermediate values are not replayed.
//
// The counter is an unsigned 32-bit value and is allowed to wrap; consumers
// compare counts with unsigned difference, never by assuming no wraparound.
//
// # Notification Fan-Out
//
// One external consumer may arm an out-of-band signal (PID plus a real-time
// signal number). Delivery happens from interrupt-handler depth, carries the
// post-increment count as payload, and must not block; the Notifier
// implementation is responsible for queuing. The target is validated when
// armed, not when fired: a target that dies between arming and delivery is
// the consumer's problem.
package event
