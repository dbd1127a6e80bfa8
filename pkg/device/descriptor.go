package device

import (
	"github.com/udd-framework/udd-go/pkg/event"
	"github.com/udd-framework/udd-go/pkg/mapper"
	"github.com/udd-framework/udd-go/pkg/memregion"
)

// Interrupt line sentinels.
const (
	// IRQNone declares a device without an interrupt line.
	IRQNone int32 = 0

	// IRQCustom declares a driver-managed interrupt source. The framework
	// skips line ownership; the driver feeds events through Device.Notify.
	IRQCustom int32 = -1
)

// Ops is the driver-supplied operation table. Interrupt and MemMap may be
// left nil to use the framework defaults; the others are optional hooks.
type Ops struct {
	// Open runs when a caller opens the primary endpoint.
	Open func(d *Device, oflags int) error

	// Close runs when an open handle is closed.
	Close func(d *Device)

	// Ioctl runs before the framework's own request handling. Returning
	// ErrNotImplemented passes the request on to the framework.
	Ioctl func(d *Device, req Request, arg any) error

	// Interrupt classifies an interrupt occurrence. Runs in the real-time
	// domain at interrupt priority; required when an interrupt line is
	// declared.
	Interrupt func(d *Device) event.Verdict

	// MemMap replaces the framework's region mapping entirely.
	MemMap func(d *Device, index int, length uint64) (mapper.Mapping, error)
}

// Descriptor describes a device to the registry. It is owned by the driver
// and treated as immutable after registration.
type Descriptor struct {
	// Name is the primary endpoint name. The companion mapper endpoint, if
	// any, is named Name + ",mapper".
	Name string

	// Description is a human-readable device description.
	Description string

	// SubClass tags the device class for tooling.
	SubClass uint16

	// Version is the driver version string.
	Version string

	// Author is the driver author.
	Author string

	// IRQ is the interrupt line identifier, or IRQNone / IRQCustom.
	IRQ int32

	// Ops is the operation table.
	Ops Ops

	// Regions is the mappable memory region table. May be sparse.
	Regions memregion.Table
}

// Request is a framework ioctl request code.
type Request uint32

const (
	// RequestIRQSignal arms, replaces or clears the notification target.
	// The argument is an event.SigNotify.
	RequestIRQSignal Request = iota + 1

	// RequestIRQEnable unmasks the interrupt line via the deferred path.
	RequestIRQEnable

	// RequestIRQDisable masks the interrupt line via the deferred path.
	RequestIRQDisable
)

// String returns the request name.
func (r Request) String() string {
	switch r {
	case RequestIRQSignal:
		return "IRQ_SIGNAL"
	case RequestIRQEnable:
		return "IRQ_ENABLE"
	case RequestIRQDisable:
		return "IRQ_DISABLE"
	default:
		return "UNKNOWN"
	}
}
