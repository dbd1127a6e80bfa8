package device

// State is the registration state of a device.
type State uint32

const (
	// StateUnregistered is the initial and terminal state.
	StateUnregistered State = iota

	// StateValidating covers descriptor validation and resource setup.
	StateValidating

	// StateRegistered is the active lifetime of the device.
	StateRegistered

	// StateUnregistering covers ordered teardown.
	StateUnregistering
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "UNREGISTERED"
	case StateValidating:
		return "VALIDATING"
	case StateRegistered:
		return "REGISTERED"
	case StateUnregistering:
		return "UNREGISTERING"
	default:
		return "UNKNOWN"
	}
}
