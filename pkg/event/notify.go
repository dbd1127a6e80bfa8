package event

import "errors"

// Real-time signal range accepted for notification targets.
const (
	SigRTMin int32 = 34
	SigRTMax int32 = 64
)

// Notification target errors.
var (
	// ErrBadSignal reports a signal number outside the real-time range.
	ErrBadSignal = errors.New("signal number outside real-time range")

	// ErrNoThread reports a PID that does not resolve to a local execution
	// context.
	ErrNoThread = errors.New("no local thread for pid")
)

// SigNotify identifies the consumer to signal on each handled interrupt.
// A PID of zero or below means no target is armed.
type SigNotify struct {
	PID    int32
	Signum int32
}

// Notifier delivers an out-of-band signal with the event count as payload.
type Notifier interface {
	// Send must not block and must be safe to call from interrupt-handler
	// depth.
	Send(pid, signum int32, payload uint32)
}

// ThreadResolver answers whether a PID names a local execution context.
type ThreadResolver interface {
	Resolve(pid int32) bool
}

// SetNotify arms, replaces or clears the notification target. A target with
// PID <= 0 clears it. The signal number and PID are checked here only;
// delivery re-validates nothing, so a target that goes away between arming
// and the next interrupt is the caller's responsibility. On error the
// previous target is left untouched.
func (b *Bridge) SetNotify(target SigNotify) error {
	if target.PID <= 0 {
		b.target.Store(nil)
		return nil
	}
	if target.Signum < SigRTMin || target.Signum > SigRTMax {
		return ErrBadSignal
	}
	if b.resolver != nil && !b.resolver.Resolve(target.PID) {
		return ErrNoThread
	}
	b.target.Store(&target)
	return nil
}

// NotifyTarget returns the armed target, or ok=false when cleared.
func (b *Bridge) NotifyTarget() (SigNotify, bool) {
	t := b.target.Load()
	if t == nil {
		return SigNotify{}, false
	}
	return *t, true
}
