// Package irqwork migrates interrupt-line toggles from the real-time domain
// to the relaxed domain.
//
// Masking or unmasking a line at the controller is unsafe from real-time
// execution, so enable/disable requests are posted as single-shot work items
// on a preallocated queue and performed by a relaxed-domain runner. Posting
// never blocks and never allocates: the work item is a small value copied
// into a fixed-depth channel. A full queue drops the toggle rather than
// stall the poster.
//
// The runner tolerates items for lines that were unregistered while the
// item sat in the queue; the resulting controller error is absorbed, since
// the handoff is inherently racy against unregistration.
package irqwork
