package device

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/udd-framework/udd-go/pkg/event"
	"github.com/udd-framework/udd-go/pkg/mapper"
)

// Test collaborators standing in for the real-time core, the interrupt
// controller, the mapping backend and the signal path.

type fakeCore struct{ enabled atomic.Bool }

func newFakeCore(enabled bool) *fakeCore {
	c := &fakeCore{}
	c.enabled.Store(enabled)
	return c
}

func (c *fakeCore) Enabled() bool { return c.enabled.Load() }

var (
	errLineBusy = errors.New("interrupt line already owned")
	errNoLine   = errors.New("interrupt line not owned")
)

type fakeIRQ struct {
	mu      sync.Mutex
	owned   map[int32]event.Handler
	toggles []lineToggle
}

type lineToggle struct {
	line   int32
	enable bool
}

func newFakeIRQ() *fakeIRQ {
	return &fakeIRQ{owned: make(map[int32]event.Handler)}
}

func (f *fakeIRQ) Request(line int32, name string, h event.Handler) (IRQHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.owned[line]; busy {
		return nil, errLineBusy
	}
	f.owned[line] = h
	return &fakeIRQHandle{ctrl: f, line: line}, nil
}

func (f *fakeIRQ) EnableLine(line int32) error {
	return f.toggle(line, true)
}

func (f *fakeIRQ) DisableLine(line int32) error {
	return f.toggle(line, false)
}

func (f *fakeIRQ) toggle(line int32, enable bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.owned[line]; !ok {
		return errNoLine
	}
	f.toggles = append(f.toggles, lineToggle{line: line, enable: enable})
	return nil
}

// Fire delivers one interrupt on line, serialized like a real controller.
func (f *fakeIRQ) Fire(line int32) event.Verdict {
	f.mu.Lock()
	h := f.owned[line]
	f.mu.Unlock()
	if h == nil {
		return event.VerdictNone
	}
	return h()
}

func (f *fakeIRQ) ownedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.owned)
}

func (f *fakeIRQ) toggleCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.toggles)
}

func (f *fakeIRQ) lastToggle() (lineToggle, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.toggles) == 0 {
		return lineToggle{}, false
	}
	return f.toggles[len(f.toggles)-1], true
}

type fakeIRQHandle struct {
	ctrl *fakeIRQ
	line int32
}

func (h *fakeIRQHandle) Free() {
	h.ctrl.mu.Lock()
	defer h.ctrl.mu.Unlock()
	delete(h.ctrl.owned, h.line)
}

type fakeBackend struct{}

type fakeMapping struct {
	kind string
	data []byte
}

func (m *fakeMapping) Bytes() []byte { return m.data }
func (m *fakeMapping) Close() error  { return nil }

func (fakeBackend) MapIOMem(addr, length uint64) (mapper.Mapping, error) {
	return &fakeMapping{kind: "io", data: make([]byte, length)}, nil
}

func (fakeBackend) MapKernelMem(addr, length uint64) (mapper.Mapping, error) {
	return &fakeMapping{kind: "kernel", data: make([]byte, length)}, nil
}

func (fakeBackend) MapVirtualMem(addr, length uint64) (mapper.Mapping, error) {
	return &fakeMapping{kind: "virtual", data: make([]byte, length)}, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	payloads []uint32
}

func (n *fakeNotifier) Send(pid, signum int32, payload uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, payload)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.payloads)
}

type pidSet map[int32]bool

func (p pidSet) Resolve(pid int32) bool { return p[pid] }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
