package mapper

import (
	"errors"
	"fmt"

	"github.com/udd-framework/udd-go/pkg/memregion"
)

// NameSuffix is appended to the primary device name to form the companion
// endpoint name. The composition is bit-exact: tooling discovers the
// companion by name.
const NameSuffix = ",mapper"

// Endpoint errors.
var (
	// ErrNoRegion reports an index outside the table or pointing at a hole.
	ErrNoRegion = errors.New("no such region")

	// ErrTooLong reports a requested length exceeding the region's declared
	// length.
	ErrTooLong = errors.New("requested length exceeds region")

	// ErrBadType reports an unmappable region type. This cannot occur for a
	// table that passed validation.
	ErrBadType = errors.New("unmappable region type")
)

// Mapping is an established memory mapping.
type Mapping interface {
	// Bytes exposes the mapped memory.
	Bytes() []byte

	// Close releases the mapping.
	Close() error
}

// Backend establishes mappings for each region type.
type Backend interface {
	// MapIOMem maps physical device I/O memory.
	MapIOMem(addr uint64, length uint64) (Mapping, error)

	// MapKernelMem maps kernel logical memory.
	MapKernelMem(addr uint64, length uint64) (Mapping, error)

	// MapVirtualMem maps kernel virtual memory through address translation.
	MapVirtualMem(addr uint64, length uint64) (Mapping, error)
}

// MapFunc is a driver-supplied custom mapping hook. When present it fully
// replaces the backend dispatch.
type MapFunc func(index int, length uint64) (Mapping, error)

// CompanionName returns the mapper endpoint name for a device.
func CompanionName(device string) string {
	return device + NameSuffix
}

// Endpoint is the companion addressable object exposing one region per
// sub-index.
type Endpoint struct {
	name    string
	regions *memregion.Table
	backend Backend
	custom  MapFunc
}

// NewEndpoint creates a mapper endpoint over a validated region table.
// custom may be nil; backend may be nil only when custom is set.
func NewEndpoint(name string, regions *memregion.Table, backend Backend, custom MapFunc) *Endpoint {
	return &Endpoint{
		name:    name,
		regions: regions,
		backend: backend,
		custom:  custom,
	}
}

// Name returns the endpoint name.
func (e *Endpoint) Name() string { return e.name }

// Open checks that index addresses a populated region. The sparse table is
// never renumbered, so the sub-instance index must match the table slot
// exactly.
func (e *Endpoint) Open(index int) error {
	if _, ok := e.regions.Region(index); !ok {
		return fmt.Errorf("%s@%d: %w", e.name, index, ErrNoRegion)
	}
	return nil
}

// Close releases a sub-instance. The endpoint is stateless, so this has no
// observable effect.
func (e *Endpoint) Close(index int) {}

// Map establishes a mapping of the region at index. A driver-supplied hook,
// when present, takes over entirely. Otherwise the requested length must
// fit the region and dispatch follows the region type.
func (e *Endpoint) Map(index int, length uint64) (Mapping, error) {
	if e.custom != nil {
		return e.custom(index, length)
	}

	rn, ok := e.regions.Region(index)
	if !ok {
		return nil, fmt.Errorf("%s@%d: %w", e.name, index, ErrNoRegion)
	}
	if rn.Len < length {
		return nil, fmt.Errorf("%s@%d: %w: %d > %d", e.name, index, ErrTooLong, length, rn.Len)
	}

	switch rn.Type {
	case memregion.TypePhysical:
		return e.backend.MapIOMem(rn.Addr, length)
	case memregion.TypeLogical:
		return e.backend.MapKernelMem(rn.Addr, length)
	case memregion.TypeVirtual:
		return e.backend.MapVirtualMem(rn.Addr, length)
	default:
		return nil, fmt.Errorf("%s@%d: %w: %v", e.name, index, ErrBadType, rn.Type)
	}
}
