// Package discovery advertises exposed devices over mDNS and browses for
// them on the local network.
//
// Each registered device is advertised as one instance of the _udd._tcp
// service. TXT records carry the device metadata a client needs before it
// opens the device: subclass, region count, interrupt line, and the name
// of the mapper companion when the device exposes memory regions.
//
// # Advertising
//
// An MDNSAdvertiser publishes one service instance per device, keyed by
// device name. Advertisements stay up until stopped or until StopAll.
//
// # Browsing
//
// An MDNSBrowser emits every distinct instance it sees on a channel.
// Addresses reported on multiple interfaces are aggregated into a single
// entry per instance name.
package discovery
