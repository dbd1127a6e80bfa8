package discovery

import "github.com/udd-framework/udd-go/pkg/device"

// InfoForDevice builds the advertisement metadata for a registered device.
func InfoForDevice(dev *device.Device, port uint16) *DeviceInfo {
	desc := dev.Descriptor()
	return &DeviceInfo{
		Name:        dev.Name(),
		SubClass:    desc.SubClass,
		RegionCount: dev.RegionCount(),
		IRQ:         desc.IRQ,
		MapperName:  dev.MapperName(),
		Version:     desc.Version,
		Port:        port,
	}
}
