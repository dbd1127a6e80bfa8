package device

import "errors"

// Registry and endpoint errors.
var (
	// ErrCoreInactive reports that the real-time subsystem is not running.
	ErrCoreInactive = errors.New("real-time core inactive")

	// ErrInvalidArgument reports a malformed descriptor, buffer or payload.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoDevice reports a lookup of an endpoint that does not exist or is
	// being unregistered.
	ErrNoDevice = errors.New("no such device")

	// ErrNameTaken reports an endpoint name that is already registered.
	ErrNameTaken = errors.New("device name already registered")

	// ErrNoInterrupt reports an interrupt operation on a device declared
	// with no interrupt line.
	ErrNoInterrupt = errors.New("device has no interrupt line")

	// ErrNotImplemented reports an ioctl request recognized neither by the
	// driver hook nor by the framework. Driver hooks return it to decline a
	// request.
	ErrNotImplemented = errors.New("not implemented")

	// ErrClosed reports an operation on a closed handle.
	ErrClosed = errors.New("handle closed")
)
