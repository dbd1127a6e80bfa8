package discovery

import (
	"context"
	"time"
)

// Advertiser publishes device advertisements over mDNS.
type Advertiser interface {
	// Advertise starts advertising a device. The advertisement stays up
	// until Stop or StopAll is called for it.
	Advertise(ctx context.Context, info *DeviceInfo) error

	// Update replaces the TXT records of an advertised device.
	Update(name string, info *DeviceInfo) error

	// Stop withdraws the advertisement for one device.
	Stop(name string) error

	// StopAll withdraws every advertisement.
	StopAll()
}

// Browser searches for advertised devices.
type Browser interface {
	// Browse emits every distinct device instance seen on the network.
	// The channel closes when ctx is cancelled.
	Browse(ctx context.Context) (<-chan *DeviceService, error)

	// FindByName waits for a device with the given name.
	FindByName(ctx context.Context, name string) (*DeviceService, error)
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		Interface: "",
		TTL:       120 * time.Second,
	}
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface specifies which network interface to browse on.
	// Empty string means all interfaces.
	Interface string
}
