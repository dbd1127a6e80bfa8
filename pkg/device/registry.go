package device

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/udd-framework/udd-go/pkg/event"
	"github.com/udd-framework/udd-go/pkg/irqwork"
	"github.com/udd-framework/udd-go/pkg/log"
	"github.com/udd-framework/udd-go/pkg/mapper"
)

// Registry owns the endpoint namespace and runs the registration lifecycle.
type Registry struct {
	svc    Services
	logger log.Logger
	work   *irqwork.Queue

	mu        sync.Mutex
	endpoints map[string]*endpoint
}

// endpoint is one named entry in the namespace: either a primary device
// endpoint or its mapper companion.
type endpoint struct {
	name   string
	dev    *Device
	mapper *mapper.Endpoint

	open    atomic.Int32
	closing atomic.Bool
}

// NewRegistry creates a registry over the given collaborators and starts
// the relaxed-domain toggle runner.
func NewRegistry(svc Services) *Registry {
	logger := svc.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	r := &Registry{
		svc:       svc,
		logger:    logger,
		endpoints: make(map[string]*endpoint),
		work:      irqwork.NewQueue(svc.IRQ, svc.WorkDepth, logger),
	}
	r.work.Start()
	return r
}

// Close stops the deferred toggle runner. Registered devices should be
// unregistered first.
func (r *Registry) Close() {
	r.work.Stop()
}

// Register validates desc and wires the device up: mapper companion (when
// regions are declared), event bridge, interrupt-line ownership and the
// primary endpoint, in that order. Any failure after validation unwinds the
// acquired resources last-acquired first and reports the originating error
// unchanged.
func (r *Registry) Register(desc Descriptor) (*Device, error) {
	if r.svc.Core == nil || !r.svc.Core.Enabled() {
		return nil, ErrCoreInactive
	}
	if desc.Name == "" {
		return nil, fmt.Errorf("%w: empty device name", ErrInvalidArgument)
	}
	if desc.IRQ != IRQNone && desc.Ops.Interrupt == nil {
		return nil, fmt.Errorf("%w: interrupt line %d declared without handler", ErrInvalidArgument, desc.IRQ)
	}

	nrMaps, err := desc.Regions.Validate()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", desc.Name, err)
	}

	dev := &Device{desc: desc, reg: r, nrMaps: nrMaps}
	dev.setState(StateValidating)

	// Everything acquired from here on lands on the undo stack and is
	// unwound in reverse on failure.
	var undo []func()
	fail := func(err error) (*Device, error) {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		dev.setState(StateUnregistered)
		return nil, err
	}

	if nrMaps > 0 {
		dev.mapperName = mapper.CompanionName(desc.Name)
		var custom mapper.MapFunc
		if desc.Ops.MemMap != nil {
			custom = func(index int, length uint64) (mapper.Mapping, error) {
				return dev.desc.Ops.MemMap(dev, index, length)
			}
		}
		dev.mapperEP = mapper.NewEndpoint(dev.mapperName, &dev.desc.Regions, r.svc.Backend, custom)
		if err := r.addEndpoint(&endpoint{name: dev.mapperName, mapper: dev.mapperEP}); err != nil {
			dev.mapperName = ""
			dev.mapperEP = nil
			return fail(err)
		}
		name := dev.mapperName
		undo = append(undo, func() {
			r.dropEndpoint(name)
			dev.mapperName = ""
			dev.mapperEP = nil
		})
	}

	dev.bridge = event.NewBridge(r.svc.Notifier, r.svc.Resolver)

	if desc.IRQ != IRQNone && desc.IRQ != IRQCustom {
		h, err := r.svc.IRQ.Request(desc.IRQ, desc.Name, dev.handleInterrupt)
		if err != nil {
			return fail(err)
		}
		dev.irqh = h
		undo = append(undo, func() {
			h.Free()
			dev.irqh = nil
		})
	}

	if err := r.addEndpoint(&endpoint{name: desc.Name, dev: dev}); err != nil {
		return fail(err)
	}

	dev.setState(StateRegistered)
	r.log(log.Event{
		Device:   desc.Name,
		Category: log.CategoryLifecycle,
		Op:       "register",
		Lifecycle: &log.LifecycleEvent{
			State:      dev.State().String(),
			MapperName: dev.mapperName,
			Regions:    nrMaps,
		},
	})
	return dev, nil
}

// Unregister tears the device down in order: wait-object destruction (which
// wakes blocked readers), interrupt-line release, mapper endpoint, mapper
// name, primary endpoint. pollDelay bounds each draining round for
// endpoints with handles still open; zero skips draining.
func (r *Registry) Unregister(dev *Device, pollDelay time.Duration) error {
	if r.svc.Core == nil || !r.svc.Core.Enabled() {
		return ErrCoreInactive
	}

	dev.setState(StateUnregistering)
	dev.bridge.Destroy()

	if dev.irqh != nil {
		dev.irqh.Free()
		dev.irqh = nil
	}

	if dev.mapperName != "" {
		r.drainEndpoint(dev.mapperName, pollDelay)
		dev.mapperName = ""
		dev.mapperEP = nil
	}

	r.drainEndpoint(dev.desc.Name, pollDelay)

	dev.setState(StateUnregistered)
	r.log(log.Event{
		Device:    dev.desc.Name,
		Category:  log.CategoryLifecycle,
		Op:        "unregister",
		Lifecycle: &log.LifecycleEvent{State: dev.State().String()},
	})
	return nil
}

// Open opens the primary endpoint of a registered device. The handle's read
// cursor starts at zero.
func (r *Registry) Open(name string, oflags int) (*Handle, error) {
	ep := r.lookup(name)
	if ep == nil || ep.dev == nil || ep.closing.Load() {
		return nil, fmt.Errorf("%q: %w", name, ErrNoDevice)
	}

	dev := ep.dev
	if dev.desc.Ops.Open != nil {
		if err := dev.desc.Ops.Open(dev, oflags); err != nil {
			return nil, err
		}
	}

	ep.open.Add(1)
	// Draining may have started while the driver hook ran. The increment is
	// visible to the drain loop, so re-testing here closes the window: either
	// the drain sees our count and waits, or we see its closing mark and back
	// out.
	if ep.closing.Load() {
		if dev.desc.Ops.Close != nil {
			dev.desc.Ops.Close(dev)
		}
		ep.open.Add(-1)
		return nil, fmt.Errorf("%q: %w", name, ErrNoDevice)
	}

	h := &Handle{id: uuid.New(), reg: r, ep: ep, dev: dev}
	r.log(log.Event{
		Device:   dev.desc.Name,
		Category: log.CategoryHandle,
		Op:       "open",
		HandleID: h.id.String(),
	})
	return h, nil
}

// OpenMapper opens sub-instance index of a device's mapper endpoint. The
// index must address a populated region table slot.
func (r *Registry) OpenMapper(name string, index int) (*MapperHandle, error) {
	ep := r.lookup(name)
	if ep == nil || ep.mapper == nil || ep.closing.Load() {
		return nil, fmt.Errorf("%q: %w", name, ErrNoDevice)
	}

	if err := ep.mapper.Open(index); err != nil {
		return nil, err
	}

	ep.open.Add(1)
	// Same race as Open: back out when draining began after the first check.
	if ep.closing.Load() {
		ep.mapper.Close(index)
		ep.open.Add(-1)
		return nil, fmt.Errorf("%q: %w", name, ErrNoDevice)
	}

	return &MapperHandle{reg: r, ep: ep, index: index}, nil
}

// Lookup reports whether an endpoint name is currently registered.
func (r *Registry) Lookup(name string) bool {
	ep := r.lookup(name)
	return ep != nil && !ep.closing.Load()
}

func (r *Registry) lookup(name string) *endpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endpoints[name]
}

func (r *Registry) addEndpoint(ep *endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.endpoints[ep.name]; dup {
		return fmt.Errorf("%q: %w", ep.name, ErrNameTaken)
	}
	r.endpoints[ep.name] = ep
	return nil
}

func (r *Registry) dropEndpoint(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.endpoints, name)
}

// drainEndpoint refuses new opens, then waits for in-flight handles to
// close before removing the name. Readers blocked in Read were already
// woken by the wait-object destruction.
func (r *Registry) drainEndpoint(name string, pollDelay time.Duration) {
	ep := r.lookup(name)
	if ep == nil {
		return
	}

	ep.closing.Store(true)
	if pollDelay > 0 {
		for ep.open.Load() > 0 {
			time.Sleep(pollDelay)
		}
	}
	r.dropEndpoint(name)
}

func (r *Registry) log(ev log.Event) {
	ev.Timestamp = time.Now()
	r.logger.Log(ev)
}
