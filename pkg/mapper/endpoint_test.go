package mapper

import (
	"errors"
	"testing"

	"github.com/udd-framework/udd-go/pkg/memregion"
)

// fakeBackend tags each mapping with the dispatch path taken.
type fakeBackend struct{}

type fakeMapping struct {
	kind string
	data []byte
}

func (m *fakeMapping) Bytes() []byte { return m.data }
func (m *fakeMapping) Close() error  { return nil }

func (fakeBackend) MapIOMem(addr, length uint64) (Mapping, error) {
	return &fakeMapping{kind: "io", data: make([]byte, length)}, nil
}

func (fakeBackend) MapKernelMem(addr, length uint64) (Mapping, error) {
	return &fakeMapping{kind: "kernel", data: make([]byte, length)}, nil
}

func (fakeBackend) MapVirtualMem(addr, length uint64) (Mapping, error) {
	return &fakeMapping{kind: "virtual", data: make([]byte, length)}, nil
}

func sparseTable() *memregion.Table {
	return &memregion.Table{
		{},
		{Type: memregion.TypePhysical, Addr: 0x1000, Len: 4096, Name: "r1"},
		{},
	}
}

func TestCompanionName(t *testing.T) {
	if got := CompanionName("uio0"); got != "uio0,mapper" {
		t.Errorf("CompanionName() = %q, want %q", got, "uio0,mapper")
	}
}

func TestOpenSparseTable(t *testing.T) {
	ep := NewEndpoint(CompanionName("uio0"), sparseTable(), fakeBackend{}, nil)

	for _, index := range []int{0, 2, -1, memregion.MaxRegions} {
		if err := ep.Open(index); !errors.Is(err, ErrNoRegion) {
			t.Errorf("Open(%d) error = %v, want ErrNoRegion", index, err)
		}
	}
	if err := ep.Open(1); err != nil {
		t.Errorf("Open(1) error = %v", err)
	}

	ep.Close(1) // stateless, must not affect later opens
	if err := ep.Open(1); err != nil {
		t.Errorf("Open(1) after Close error = %v", err)
	}
}

func TestMapLengthCheck(t *testing.T) {
	ep := NewEndpoint(CompanionName("uio0"), sparseTable(), fakeBackend{}, nil)

	if _, err := ep.Map(1, 8192); !errors.Is(err, ErrTooLong) {
		t.Errorf("Map(1, 8192) error = %v, want ErrTooLong", err)
	}

	m, err := ep.Map(1, 4096)
	if err != nil {
		t.Fatalf("Map(1, 4096) error = %v", err)
	}
	if len(m.Bytes()) != 4096 {
		t.Errorf("mapping length = %d, want 4096", len(m.Bytes()))
	}
}

func TestMapDispatchByType(t *testing.T) {
	table := &memregion.Table{
		{Type: memregion.TypePhysical, Addr: 0x1000, Len: 4096, Name: "io"},
		{Type: memregion.TypeLogical, Addr: 0x2000, Len: 4096, Name: "kmem"},
		{Type: memregion.TypeVirtual, Addr: 0x3000, Len: 4096, Name: "vmem"},
	}
	ep := NewEndpoint(CompanionName("uio0"), table, fakeBackend{}, nil)

	wants := []string{"io", "kernel", "virtual"}
	for i, want := range wants {
		m, err := ep.Map(i, 4096)
		if err != nil {
			t.Fatalf("Map(%d) error = %v", i, err)
		}
		if got := m.(*fakeMapping).kind; got != want {
			t.Errorf("Map(%d) dispatched to %q, want %q", i, got, want)
		}
	}
}

func TestMapHole(t *testing.T) {
	ep := NewEndpoint(CompanionName("uio0"), sparseTable(), fakeBackend{}, nil)

	if _, err := ep.Map(0, 16); !errors.Is(err, ErrNoRegion) {
		t.Errorf("Map(0) error = %v, want ErrNoRegion", err)
	}
}

func TestCustomHookDelegation(t *testing.T) {
	var gotIndex int
	var gotLength uint64
	custom := func(index int, length uint64) (Mapping, error) {
		gotIndex, gotLength = index, length
		return &fakeMapping{kind: "custom"}, nil
	}

	ep := NewEndpoint(CompanionName("uio0"), sparseTable(), fakeBackend{}, custom)

	// The hook takes over entirely: no length check, no type dispatch.
	m, err := ep.Map(1, 1<<20)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if m.(*fakeMapping).kind != "custom" {
		t.Error("Map() did not delegate to the custom hook")
	}
	if gotIndex != 1 || gotLength != 1<<20 {
		t.Errorf("hook got (%d, %d), want (1, %d)", gotIndex, gotLength, 1<<20)
	}
}
