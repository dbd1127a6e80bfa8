package memregion

import (
	"errors"
	"fmt"
)

// MaxRegions is the fixed capacity of a device's region table.
const MaxRegions = 3

// ErrInvalidRegion flags a populated slot with a missing name, address or
// length.
var ErrInvalidRegion = errors.New("invalid memory region")

// Type classifies how a memory region is mapped.
type Type uint8

const (
	// TypeNone marks an unused slot. Holes are legal anywhere in the table.
	TypeNone Type = iota

	// TypePhysical is device I/O memory, mapped by physical address.
	TypePhysical

	// TypeLogical is kernel logical memory.
	TypeLogical

	// TypeVirtual is kernel virtual memory reached through address
	// translation.
	TypeVirtual
)

// String returns the region type name.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "NONE"
	case TypePhysical:
		return "PHYSICAL"
	case TypeLogical:
		return "LOGICAL"
	case TypeVirtual:
		return "VIRTUAL"
	default:
		return "UNKNOWN"
	}
}

// Region describes one mappable memory region of a device.
type Region struct {
	// Type selects the mapping path. TypeNone marks a hole.
	Type Type

	// Addr is the region base address.
	Addr uint64

	// Len is the region length in bytes.
	Len uint64

	// Name labels the region for tooling.
	Name string
}

// IsHole reports whether the region is an unused slot.
func (r Region) IsHole() bool { return r.Type == TypeNone }

// Table is a sparse, fixed-capacity region table indexed by slot position.
type Table [MaxRegions]Region

// Validate checks every populated slot and returns the populated count.
// A populated slot must carry a name, a non-zero address and a non-zero
// length; the first violation rejects the whole table. Holes contribute
// nothing to the count.
func (t *Table) Validate() (int, error) {
	count := 0
	for i, r := range t {
		if r.IsHole() {
			continue
		}
		switch {
		case r.Name == "":
			return 0, fmt.Errorf("slot %d: %w: empty name", i, ErrInvalidRegion)
		case r.Addr == 0:
			return 0, fmt.Errorf("slot %d: %w: zero address", i, ErrInvalidRegion)
		case r.Len == 0:
			return 0, fmt.Errorf("slot %d: %w: zero length", i, ErrInvalidRegion)
		}
		count++
	}
	return count, nil
}

// Region returns the populated region at index. ok is false for holes and
// out-of-range indexes.
func (t *Table) Region(index int) (r Region, ok bool) {
	if index < 0 || index >= MaxRegions {
		return Region{}, false
	}
	if t[index].IsHole() {
		return Region{}, false
	}
	return t[index], true
}
