package device

import (
	"sync/atomic"

	"github.com/udd-framework/udd-go/pkg/event"
	"github.com/udd-framework/udd-go/pkg/mapper"
)

// Device is a registered device instance. The embedded descriptor stays
// read-only; all mutable state here is framework-private.
type Device struct {
	desc Descriptor
	reg  *Registry

	bridge *event.Bridge
	state  atomic.Uint32

	nrMaps     int
	mapperName string
	mapperEP   *mapper.Endpoint
	irqh       IRQHandle
}

// Name returns the primary endpoint name.
func (d *Device) Name() string { return d.desc.Name }

// Descriptor returns a copy of the registered descriptor.
func (d *Device) Descriptor() Descriptor { return d.desc }

// State returns the current registration state.
func (d *Device) State() State { return State(d.state.Load()) }

func (d *Device) setState(s State) { d.state.Store(uint32(s)) }

// EventCount returns the live event counter value.
func (d *Device) EventCount() uint32 { return d.bridge.Count() }

// RegionCount returns the populated region count.
func (d *Device) RegionCount() int { return d.nrMaps }

// MapperName returns the companion endpoint name, or "" when the device
// declares no regions.
func (d *Device) MapperName() string { return d.mapperName }

// Notify advances the event counter and wakes blocked readers. Drivers
// declaring IRQCustom call this from their own interrupt plumbing; devices
// with a framework-owned line never need it.
func (d *Device) Notify() { d.bridge.Notify() }

// handleInterrupt is the handler installed at the IRQ controller. It runs
// in the real-time domain, serialized per line.
func (d *Device) handleInterrupt() event.Verdict {
	return d.bridge.HandleInterrupt(func() event.Verdict {
		return d.desc.Ops.Interrupt(d)
	})
}
