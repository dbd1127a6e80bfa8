package sim

import "sync/atomic"

// Core is a switchable stand-in for the real-time subsystem.
type Core struct {
	enabled atomic.Bool
}

// NewCore creates a core in the given state.
func NewCore(enabled bool) *Core {
	c := &Core{}
	c.enabled.Store(enabled)
	return c
}

// Enabled reports whether the core is active.
func (c *Core) Enabled() bool { return c.enabled.Load() }

// SetEnabled flips the core state.
func (c *Core) SetEnabled(enabled bool) { c.enabled.Store(enabled) }
