package sim

import "sync"

// Signal is one recorded out-of-band delivery.
type Signal struct {
	PID     int32
	Signum  int32
	Payload uint32
}

// SignalSink records signal deliveries instead of sending them. Send never
// blocks, as the notification contract requires.
type SignalSink struct {
	mu   sync.Mutex
	sent []Signal
}

// NewSignalSink creates an empty sink.
func NewSignalSink() *SignalSink {
	return &SignalSink{}
}

// Send records a delivery.
func (s *SignalSink) Send(pid, signum int32, payload uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, Signal{PID: pid, Signum: signum, Payload: payload})
}

// Sent returns a copy of the recorded deliveries.
func (s *SignalSink) Sent() []Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Signal, len(s.sent))
	copy(out, s.sent)
	return out
}

// ThreadTable resolves PIDs against a fixed set of local execution
// contexts.
type ThreadTable struct {
	mu   sync.Mutex
	pids map[int32]bool
}

// NewThreadTable creates a table containing the given PIDs.
func NewThreadTable(pids ...int32) *ThreadTable {
	t := &ThreadTable{pids: make(map[int32]bool)}
	for _, pid := range pids {
		t.pids[pid] = true
	}
	return t
}

// Add registers a PID as locally resolvable.
func (t *ThreadTable) Add(pid int32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pids[pid] = true
}

// Remove drops a PID.
func (t *ThreadTable) Remove(pid int32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pids, pid)
}

// Resolve reports whether pid names a local execution context.
func (t *ThreadTable) Resolve(pid int32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pids[pid]
}
