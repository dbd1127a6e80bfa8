package discovery

import "errors"

// Service constants.
const (
	// ServiceType is the mDNS service type for exposed devices.
	ServiceType = "_udd._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// DefaultPort is used when an advertisement does not specify one.
	DefaultPort = 5353

	// MaxInstanceNameLen is the mDNS instance name limit.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	TXTKeyName        = "dn"  // device name
	TXTKeySubClass    = "sc"  // device subclass
	TXTKeyRegionCount = "rc"  // number of exposed memory regions
	TXTKeyIRQ         = "irq" // interrupt line, 0 when the device has none
	TXTKeyMapper      = "mp"  // mapper companion name, absent without regions
	TXTKeyVersion     = "ver" // driver version string
)

// Discovery errors.
var (
	// ErrMissingRequired reports a TXT record set without a required key.
	ErrMissingRequired = errors.New("missing required TXT record")

	// ErrInvalidTXTRecord reports a TXT record value that does not parse.
	ErrInvalidTXTRecord = errors.New("invalid TXT record")

	// ErrNotFound reports a browse that ended without a match.
	ErrNotFound = errors.New("service not found")

	// ErrInvalidInstanceName reports an instance name that cannot be
	// advertised.
	ErrInvalidInstanceName = errors.New("invalid instance name")

	// ErrInstanceNameTooLong reports an instance name over the mDNS limit.
	ErrInstanceNameTooLong = errors.New("instance name too long")
)

// DeviceInfo is the metadata advertised for one exposed device.
type DeviceInfo struct {
	Name        string
	SubClass    uint16
	RegionCount int
	IRQ         int32
	MapperName  string
	Version     string
	Port        uint16
}

// DeviceService is one discovered device instance.
type DeviceService struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string

	DeviceInfo
}

// HasMapper reports whether the device advertises a mapper companion.
func (s *DeviceService) HasMapper() bool {
	return s.MapperName != ""
}
