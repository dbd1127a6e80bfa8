package sim

import (
	"errors"
	"sync"

	"github.com/udd-framework/udd-go/pkg/device"
	"github.com/udd-framework/udd-go/pkg/event"
)

// Controller errors.
var (
	// ErrLineBusy reports a request for a line that is already owned.
	ErrLineBusy = errors.New("interrupt line already owned")

	// ErrNoLine reports an operation on a line that is not owned.
	ErrNoLine = errors.New("interrupt line not owned")
)

// IRQController is a software interrupt controller. Lines are owned
// exclusively, delivery on one line is serialized, and masked lines drop
// interrupts at the controller.
type IRQController struct {
	mu    sync.Mutex
	lines map[int32]*line
}

type line struct {
	name    string
	handler event.Handler
	masked  bool

	// fire serializes delivery per line, like a real controller does.
	fire sync.Mutex
}

// NewIRQController creates an empty controller.
func NewIRQController() *IRQController {
	return &IRQController{lines: make(map[int32]*line)}
}

// Request takes ownership of ln and installs h as its handler.
func (c *IRQController) Request(ln int32, name string, h event.Handler) (device.IRQHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.lines[ln]; busy {
		return nil, ErrLineBusy
	}
	c.lines[ln] = &line{name: name, handler: h}
	return &irqHandle{ctrl: c, ln: ln}, nil
}

// EnableLine unmasks ln. Relaxed-domain only.
func (c *IRQController) EnableLine(ln int32) error {
	return c.setMasked(ln, false)
}

// DisableLine masks ln. Relaxed-domain only.
func (c *IRQController) DisableLine(ln int32) error {
	return c.setMasked(ln, true)
}

func (c *IRQController) setMasked(ln int32, masked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lines[ln]
	if !ok {
		return ErrNoLine
	}
	l.masked = masked
	return nil
}

// Masked reports the mask state of ln. Unowned lines read as masked.
func (c *IRQController) Masked(ln int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lines[ln]
	return !ok || l.masked
}

// Owned reports whether ln has an owner.
func (c *IRQController) Owned(ln int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.lines[ln]
	return ok
}

// Fire simulates one hardware interrupt on ln. A masked or unowned line
// drops it. A disable verdict from the handler masks the line before Fire
// returns.
func (c *IRQController) Fire(ln int32) (event.Verdict, bool) {
	c.mu.Lock()
	l, ok := c.lines[ln]
	if !ok || l.masked {
		c.mu.Unlock()
		return event.VerdictNone, false
	}
	c.mu.Unlock()

	l.fire.Lock()
	v := l.handler()
	l.fire.Unlock()

	if v == event.VerdictDisable {
		_ = c.setMasked(ln, true)
	}
	return v, true
}

type irqHandle struct {
	ctrl *IRQController
	ln   int32
}

// Free releases the line. Interrupts in flight finish first.
func (h *irqHandle) Free() {
	h.ctrl.mu.Lock()
	l, ok := h.ctrl.lines[h.ln]
	if ok {
		delete(h.ctrl.lines, h.ln)
	}
	h.ctrl.mu.Unlock()

	if ok {
		// Wait out a delivery that grabbed the handler before removal.
		l.fire.Lock()
		l.fire.Unlock()
	}
}
