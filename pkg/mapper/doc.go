// Package mapper exposes a device's memory regions through a companion
// endpoint.
//
// The framework creates one mapper endpoint per device that declares at
// least one region, named "<device-name>,mapper". Sub-instances of the
// endpoint are addressed by region table index. The index matches the
// table slot exactly, holes included, so tooling can correlate a mapping
// with the driver's declaration.
//
// Mapping dispatches on the region type: physical regions go through the
// I/O memory backend, logical regions through the kernel memory backend and
// virtual regions through the address-translation backend. A driver may
// supply its own mapping hook instead, in which case the endpoint delegates
// entirely to it.
//
// The endpoint is stateless: open validates the index, close has no
// observable effect, and no reference counting happens beyond what the
// backend's own mappings provide.
package mapper
