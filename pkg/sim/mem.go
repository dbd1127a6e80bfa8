package sim

import (
	"sync"

	"github.com/udd-framework/udd-go/pkg/mapper"
)

// Kind tags which dispatch path established a mapping.
type Kind string

const (
	KindIO      Kind = "io"
	KindKernel  Kind = "kernel"
	KindVirtual Kind = "virtual"
)

// MemBackend establishes byte-slice backed mappings. Mappings of the same
// address share one backing slice, so two mappings of a region observe each
// other's writes the way real shared mappings do.
type MemBackend struct {
	mu       sync.Mutex
	segments map[uint64][]byte
}

// NewMemBackend creates an empty backend.
func NewMemBackend() *MemBackend {
	return &MemBackend{segments: make(map[uint64][]byte)}
}

// MapIOMem maps addr as device I/O memory.
func (b *MemBackend) MapIOMem(addr, length uint64) (mapper.Mapping, error) {
	return b.mapSegment(KindIO, addr, length), nil
}

// MapKernelMem maps addr as kernel logical memory.
func (b *MemBackend) MapKernelMem(addr, length uint64) (mapper.Mapping, error) {
	return b.mapSegment(KindKernel, addr, length), nil
}

// MapVirtualMem maps addr as kernel virtual memory.
func (b *MemBackend) MapVirtualMem(addr, length uint64) (mapper.Mapping, error) {
	return b.mapSegment(KindVirtual, addr, length), nil
}

func (b *MemBackend) mapSegment(kind Kind, addr, length uint64) *Mapping {
	b.mu.Lock()
	defer b.mu.Unlock()

	seg, ok := b.segments[addr]
	if !ok || uint64(len(seg)) < length {
		seg = make([]byte, length)
		b.segments[addr] = seg
	}
	return &Mapping{kind: kind, data: seg[:length]}
}

// Mapping is a byte-slice backed memory mapping.
type Mapping struct {
	kind Kind
	data []byte
}

// Kind returns the dispatch path that established the mapping.
func (m *Mapping) Kind() Kind { return m.kind }

// Bytes exposes the mapped memory.
func (m *Mapping) Bytes() []byte { return m.data }

// Close releases the mapping. The backing segment stays for later
// mappings of the same address.
func (m *Mapping) Close() error {
	m.data = nil
	return nil
}
