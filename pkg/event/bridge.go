package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Bridge errors.
var (
	// ErrInterrupted reports a blocked wait cancelled externally, either by
	// the caller's context or by the bridge being destroyed.
	ErrInterrupted = errors.New("wait interrupted")
)

// Verdict is the interrupt callback's classification of an interrupt.
type Verdict int

const (
	// VerdictNone means the interrupt was not caused by this device.
	VerdictNone Verdict = iota

	// VerdictHandled means the interrupt was handled; the event counter
	// advances and blocked readers wake.
	VerdictHandled

	// VerdictDisable means the interrupt was handled and the line should be
	// masked by the controller until explicitly re-enabled.
	VerdictDisable
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictNone:
		return "NONE"
	case VerdictHandled:
		return "HANDLED"
	case VerdictDisable:
		return "DISABLE"
	default:
		return "UNKNOWN"
	}
}

// Handler is a driver interrupt callback. It runs in the real-time domain
// at interrupt priority and must not block.
type Handler func() Verdict

// Bridge converts interrupt occurrences into a monotonic event counter with
// broadcast wakeup and optional signal fan-out. The zero value is not usable;
// construct with NewBridge.
type Bridge struct {
	count atomic.Uint32

	mu        sync.Mutex
	pulse     chan struct{} // closed and replaced on every broadcast
	destroyed bool

	target   atomic.Pointer[SigNotify]
	notifier Notifier
	resolver ThreadResolver
}

// NewBridge creates a bridge with a zero counter, an idle wait object and a
// cleared notification target. notifier and resolver may be nil when signal
// fan-out is not used.
func NewBridge(notifier Notifier, resolver ThreadResolver) *Bridge {
	return &Bridge{
		pulse:    make(chan struct{}),
		notifier: notifier,
		resolver: resolver,
	}
}

// Count returns the current event count.
func (b *Bridge) Count() uint32 {
	return b.count.Load()
}

// HandleInterrupt runs the driver callback and, on VerdictHandled only,
// notifies the event. VerdictNone and VerdictDisable are silently absorbed.
// Safe to call only from the serialized interrupt delivery path of a single
// line.
func (b *Bridge) HandleInterrupt(h Handler) Verdict {
	v := h()
	if v == VerdictHandled {
		b.Notify()
	}
	return v
}

// Notify advances the event counter, wakes all blocked readers and fires the
// armed signal target, if any. Exported so drivers owning a custom interrupt
// line can feed events directly.
func (b *Bridge) Notify() {
	n := b.count.Add(1)
	b.broadcast()

	if t := b.target.Load(); t != nil && t.PID > 0 && b.notifier != nil {
		b.notifier.Send(t.PID, t.Signum, n)
	}
}

// Wait blocks until the event count differs from last and returns the new
// count. The wakeup is broadcast, not single-increment: the loop re-tests
// the counter on every pulse. Cancellation of ctx or destruction of the
// bridge returns ErrInterrupted, never a stale count.
func (b *Bridge) Wait(ctx context.Context, last uint32) (uint32, error) {
	for {
		if c := b.count.Load(); c != last {
			return c, nil
		}

		b.mu.Lock()
		if b.destroyed {
			b.mu.Unlock()
			return 0, ErrInterrupted
		}
		pulse := b.pulse
		b.mu.Unlock()

		// The pulse snapshot happens before this re-test, so a signal
		// raised in between closes the channel we are about to select on.
		if c := b.count.Load(); c != last {
			return c, nil
		}

		select {
		case <-ctx.Done():
			return 0, ErrInterrupted
		case <-pulse:
		}
	}
}

// Pending reports whether the count has moved past last.
func (b *Bridge) Pending(last uint32) bool {
	return b.count.Load() != last
}

// Destroy wakes every blocked reader with ErrInterrupted and marks the wait
// object dead. Idempotent.
func (b *Bridge) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.destroyed {
		b.destroyed = true
		close(b.pulse)
	}
}

func (b *Bridge) broadcast() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.destroyed {
		close(b.pulse)
		b.pulse = make(chan struct{})
	}
}
