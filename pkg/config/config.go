package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/udd-framework/udd-go/pkg/device"
	"github.com/udd-framework/udd-go/pkg/memregion"
)

// ErrInvalidConfig reports a configuration file that cannot describe a
// registrable device.
var ErrInvalidConfig = errors.New("invalid device configuration")

// File is the root of a configuration file.
type File struct {
	Devices []DeviceConfig `yaml:"devices"`
}

// DeviceConfig describes one device to expose.
type DeviceConfig struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	SubClass    uint16         `yaml:"subclass"`
	Version     string         `yaml:"version"`
	Author      string         `yaml:"author"`
	IRQ         int32          `yaml:"irq"`
	Regions     []RegionConfig `yaml:"regions"`
}

// RegionConfig describes one memory region slot.
type RegionConfig struct {
	Slot int    `yaml:"slot"`
	Type string `yaml:"type"`
	Addr uint64 `yaml:"addr"`
	Len  uint64 `yaml:"len"`
	Name string `yaml:"name"`
}

// Parse parses configuration data in YAML format.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(f.Devices) == 0 {
		return nil, fmt.Errorf("%w: no devices", ErrInvalidConfig)
	}
	for i := range f.Devices {
		if err := f.Devices[i].validate(); err != nil {
			return nil, fmt.Errorf("device %d: %w", i, err)
		}
	}
	return &f, nil
}

// Load reads and parses a configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func (d *DeviceConfig) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidConfig)
	}
	if len(d.Regions) > memregion.MaxRegions {
		return fmt.Errorf("%w: %d regions, at most %d", ErrInvalidConfig, len(d.Regions), memregion.MaxRegions)
	}
	seen := make(map[int]bool)
	for _, r := range d.Regions {
		if r.Slot < 0 || r.Slot >= memregion.MaxRegions {
			return fmt.Errorf("%w: region slot %d out of range", ErrInvalidConfig, r.Slot)
		}
		if seen[r.Slot] {
			return fmt.Errorf("%w: duplicate region slot %d", ErrInvalidConfig, r.Slot)
		}
		seen[r.Slot] = true
		if _, err := parseRegionType(r.Type); err != nil {
			return err
		}
	}
	return nil
}

// Descriptor converts the configuration into a registrable descriptor.
// The returned descriptor has no driver hooks installed.
func (d *DeviceConfig) Descriptor() (device.Descriptor, error) {
	desc := device.Descriptor{
		Name:        d.Name,
		Description: d.Description,
		SubClass:    d.SubClass,
		Version:     d.Version,
		Author:      d.Author,
		IRQ:         d.IRQ,
	}
	for _, r := range d.Regions {
		typ, err := parseRegionType(r.Type)
		if err != nil {
			return device.Descriptor{}, err
		}
		desc.Regions[r.Slot] = memregion.Region{
			Type: typ,
			Addr: r.Addr,
			Len:  r.Len,
			Name: r.Name,
		}
	}
	if _, err := desc.Regions.Validate(); err != nil {
		return device.Descriptor{}, err
	}
	return desc, nil
}

func parseRegionType(s string) (memregion.Type, error) {
	switch strings.ToLower(s) {
	case "physical":
		return memregion.TypePhysical, nil
	case "logical":
		return memregion.TypeLogical, nil
	case "virtual":
		return memregion.TypeVirtual, nil
	default:
		return memregion.TypeNone, fmt.Errorf("%w: unknown region type %q", ErrInvalidConfig, s)
	}
}
