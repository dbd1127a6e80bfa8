// Package sim provides in-process implementations of the framework's
// external collaborators: the real-time core switch, an interrupt
// controller with per-line masking, byte-slice memory backends and a
// recording signal sink.
//
// The simulator is meant for driver development, tooling and tests. It
// honors the delivery contract real controllers provide without touching
// any hardware: interrupts on one line are serialized, masked lines drop
// interrupts, and a disable verdict masks the line.
package sim
