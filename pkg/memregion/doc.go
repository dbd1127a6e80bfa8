// Package memregion defines the fixed-capacity table of mappable device
// memory regions that drivers declare at registration time.
//
// The table is sparse: unused slots carry TypeNone and are skipped by
// validation. Slot positions are stable identifiers: the mapper endpoint
// addresses regions by table index, holes included, so the table is never
// compacted or renumbered.
//
// After a device is registered the table is read-only; lookups need no
// locking.
package memregion
