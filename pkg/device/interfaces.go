package device

import (
	"github.com/udd-framework/udd-go/pkg/event"
	"github.com/udd-framework/udd-go/pkg/irqwork"
	"github.com/udd-framework/udd-go/pkg/log"
	"github.com/udd-framework/udd-go/pkg/mapper"
)

// Core reports whether the real-time subsystem is active. Registration and
// unregistration are refused while it is not.
type Core interface {
	Enabled() bool
}

// IRQHandle is an owned interrupt line.
type IRQHandle interface {
	// Free releases line ownership. The controller stops delivering to the
	// handler before Free returns.
	Free()
}

// IRQController grants interrupt-line ownership and performs the
// relaxed-domain mask/unmask of lines.
type IRQController interface {
	// Request takes ownership of line and arranges for h to run, serialized
	// per line, on each interrupt. Fails when the line is already owned.
	Request(line int32, name string, h event.Handler) (IRQHandle, error)

	irqwork.LineController
}

// Services bundles the external collaborators a Registry runs against.
type Services struct {
	// Core gates registration on the real-time subsystem being active.
	Core Core

	// IRQ grants line ownership and toggles lines.
	IRQ IRQController

	// Backend establishes region mappings for the default mapper path.
	Backend mapper.Backend

	// Notifier delivers out-of-band signals to armed consumers. Optional.
	Notifier event.Notifier

	// Resolver validates notification target PIDs. Optional.
	Resolver event.ThreadResolver

	// Logger receives framework events. Optional.
	Logger log.Logger

	// WorkDepth is the deferred toggle queue capacity; 0 selects the
	// default.
	WorkDepth int
}
