package log

import "time"

// Event represents a framework log event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Device is the primary device name the event belongs to.
	Device string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Op names the operation that produced the event.
	Op string `cbor:"4,keyasint,omitempty"`

	// HandleID identifies the open handle (UUID), when the event is tied
	// to one.
	HandleID string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (at most one of these is set).
	Lifecycle *LifecycleEvent `cbor:"6,keyasint,omitempty"`
	IRQ       *IRQEvent       `cbor:"7,keyasint,omitempty"`
	Mapping   *MappingEvent   `cbor:"8,keyasint,omitempty"`
	Error     *ErrorEvent     `cbor:"9,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryLifecycle covers registration and unregistration.
	CategoryLifecycle Category = 0
	// CategoryHandle covers open and close of endpoint handles.
	CategoryHandle Category = 1
	// CategoryIRQ covers interrupt-line ownership and deferred toggles.
	CategoryIRQ Category = 2
	// CategoryMapping covers region mapping operations.
	CategoryMapping Category = 3
	// CategoryError covers failed operations at any layer.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryLifecycle:
		return "LIFECYCLE"
	case CategoryHandle:
		return "HANDLE"
	case CategoryIRQ:
		return "IRQ"
	case CategoryMapping:
		return "MAPPING"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LifecycleEvent carries registration state details.
type LifecycleEvent struct {
	// State is the registration state entered.
	State string `cbor:"1,keyasint"`

	// MapperName is the companion endpoint name, when one exists.
	MapperName string `cbor:"2,keyasint,omitempty"`

	// Regions is the populated region count.
	Regions int `cbor:"3,keyasint,omitempty"`
}

// IRQEvent carries interrupt-line details.
type IRQEvent struct {
	// Line is the interrupt line identifier.
	Line int32 `cbor:"1,keyasint"`

	// Action is what happened: request, free, enable, disable, dropped.
	Action string `cbor:"2,keyasint"`
}

// MappingEvent carries region mapping details.
type MappingEvent struct {
	// Index is the region table slot.
	Index int `cbor:"1,keyasint"`

	// Length is the requested mapping length in bytes.
	Length uint64 `cbor:"2,keyasint"`
}

// ErrorEvent carries a failed operation.
type ErrorEvent struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`
}
