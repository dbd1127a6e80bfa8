package device

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/udd-framework/udd-go/pkg/event"
	"github.com/udd-framework/udd-go/pkg/log"
	"github.com/udd-framework/udd-go/pkg/mapper"
)

// Serialized widths of the read counter and the write flag.
const (
	CounterLen = 4
	FlagLen    = 4
)

// Handle is one open instance of a primary endpoint. Each handle carries
// its own cursor into the shared event counter; handles are independent and
// not safe for concurrent use of the same handle.
type Handle struct {
	id  uuid.UUID
	reg *Registry
	ep  *endpoint
	dev *Device

	cursor uint32
	closed atomic.Bool
}

// ID returns the handle identifier.
func (h *Handle) ID() string { return h.id.String() }

// Device returns the device this handle is open on.
func (h *Handle) Device() *Device { return h.dev }

// Read blocks until the event counter moves past this handle's cursor, then
// stores and serializes the new count into buf (little-endian). buf must be
// exactly CounterLen bytes. Cancellation of ctx surfaces as
// event.ErrInterrupted, never as a zero-count read.
func (h *Handle) Read(ctx context.Context, buf []byte) (int, error) {
	if h.closed.Load() {
		return 0, ErrClosed
	}
	if len(buf) != CounterLen {
		return 0, fmt.Errorf("%w: read length %d, want %d", ErrInvalidArgument, len(buf), CounterLen)
	}
	if h.dev.desc.IRQ == IRQNone {
		return 0, fmt.Errorf("%s: %w", h.dev.desc.Name, ErrNoInterrupt)
	}

	count, err := h.dev.bridge.Wait(ctx, h.cursor)
	if err != nil {
		return 0, err
	}

	h.cursor = count
	binary.LittleEndian.PutUint32(buf, count)
	return CounterLen, nil
}

// Write toggles the interrupt line: a zero flag disables it, anything else
// enables it. buf must be exactly FlagLen bytes.
func (h *Handle) Write(buf []byte) (int, error) {
	if h.closed.Load() {
		return 0, ErrClosed
	}
	if len(buf) != FlagLen {
		return 0, fmt.Errorf("%w: write length %d, want %d", ErrInvalidArgument, len(buf), FlagLen)
	}

	req := RequestIRQDisable
	if binary.LittleEndian.Uint32(buf) != 0 {
		req = RequestIRQEnable
	}
	if err := h.Ioctl(req, nil); err != nil {
		return 0, err
	}
	return FlagLen, nil
}

// Ioctl dispatches a request. The driver hook, when present, sees it first
// and declines by returning ErrNotImplemented; the framework then handles
// its own requests. Anything left over is ErrNotImplemented.
func (h *Handle) Ioctl(req Request, arg any) error {
	if h.closed.Load() {
		return ErrClosed
	}

	dev := h.dev
	if dev.desc.Ops.Ioctl != nil {
		err := dev.desc.Ops.Ioctl(dev, req, arg)
		if !errors.Is(err, ErrNotImplemented) {
			return err
		}
	}

	switch req {
	case RequestIRQSignal:
		target, ok := arg.(event.SigNotify)
		if !ok {
			return fmt.Errorf("%w: IRQ signal payload", ErrInvalidArgument)
		}
		return dev.bridge.SetNotify(target)

	case RequestIRQEnable, RequestIRQDisable:
		if dev.desc.IRQ == IRQNone {
			return fmt.Errorf("%s: %w", dev.desc.Name, ErrNoInterrupt)
		}
		action := "disable"
		if req == RequestIRQEnable {
			action = "enable"
			h.reg.work.PostEnable(dev.desc.IRQ)
		} else {
			h.reg.work.PostDisable(dev.desc.IRQ)
		}
		h.reg.log(log.Event{
			Device:   dev.desc.Name,
			Category: log.CategoryIRQ,
			Op:       "ioctl",
			HandleID: h.id.String(),
			IRQ:      &log.IRQEvent{Line: dev.desc.IRQ, Action: action},
		})
		return nil

	default:
		return fmt.Errorf("request %v: %w", req, ErrNotImplemented)
	}
}

// Readable reports whether a Read would return without blocking, i.e. the
// counter has moved past this handle's cursor.
func (h *Handle) Readable() (bool, error) {
	if h.closed.Load() {
		return false, ErrClosed
	}
	if h.dev.desc.IRQ == IRQNone {
		return false, fmt.Errorf("%s: %w", h.dev.desc.Name, ErrNoInterrupt)
	}
	return h.dev.bridge.Pending(h.cursor), nil
}

// Close releases the handle. Safe to call more than once.
func (h *Handle) Close() error {
	if h.closed.Swap(true) {
		return nil
	}
	if h.dev.desc.Ops.Close != nil {
		h.dev.desc.Ops.Close(h.dev)
	}
	h.ep.open.Add(-1)
	h.reg.log(log.Event{
		Device:   h.dev.desc.Name,
		Category: log.CategoryHandle,
		Op:       "close",
		HandleID: h.id.String(),
	})
	return nil
}

// MapperHandle is one open sub-instance of a mapper endpoint.
type MapperHandle struct {
	reg   *Registry
	ep    *endpoint
	index int

	closed atomic.Bool
}

// Index returns the region table slot this handle addresses.
func (h *MapperHandle) Index() int { return h.index }

// Map establishes a mapping of the region, per the endpoint's dispatch
// rules.
func (h *MapperHandle) Map(length uint64) (mapper.Mapping, error) {
	if h.closed.Load() {
		return nil, ErrClosed
	}

	m, err := h.ep.mapper.Map(h.index, length)
	ev := log.Event{
		Device:   h.ep.name,
		Category: log.CategoryMapping,
		Op:       "map",
		Mapping:  &log.MappingEvent{Index: h.index, Length: length},
	}
	if err != nil {
		ev.Category = log.CategoryError
		ev.Error = &log.ErrorEvent{Message: err.Error()}
	}
	h.reg.log(ev)
	return m, err
}

// Close releases the handle. Safe to call more than once.
func (h *MapperHandle) Close() error {
	if h.closed.Swap(true) {
		return nil
	}
	h.ep.mapper.Close(h.index)
	h.ep.open.Add(-1)
	return nil
}
