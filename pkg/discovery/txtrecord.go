package discovery

import (
	"fmt"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeDeviceTXT creates TXT records for a device advertisement.
func EncodeDeviceTXT(info *DeviceInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeyName] = info.Name
	txt[TXTKeySubClass] = strconv.FormatUint(uint64(info.SubClass), 10)
	txt[TXTKeyRegionCount] = strconv.Itoa(info.RegionCount)
	txt[TXTKeyIRQ] = strconv.FormatInt(int64(info.IRQ), 10)

	// Optional fields
	if info.MapperName != "" {
		txt[TXTKeyMapper] = info.MapperName
	}
	if info.Version != "" {
		txt[TXTKeyVersion] = info.Version
	}

	return txt
}

// DecodeDeviceTXT parses TXT records from a device advertisement.
func DecodeDeviceTXT(txt TXTRecordMap) (*DeviceInfo, error) {
	info := &DeviceInfo{}

	var ok bool
	info.Name, ok = txt[TXTKeyName]
	if !ok || info.Name == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyName)
	}

	scStr, ok := txt[TXTKeySubClass]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeySubClass)
	}
	sc, err := strconv.ParseUint(scStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: subclass %q", ErrInvalidTXTRecord, scStr)
	}
	info.SubClass = uint16(sc)

	rcStr, ok := txt[TXTKeyRegionCount]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyRegionCount)
	}
	rc, err := strconv.Atoi(rcStr)
	if err != nil || rc < 0 {
		return nil, fmt.Errorf("%w: region count %q", ErrInvalidTXTRecord, rcStr)
	}
	info.RegionCount = rc

	if irqStr, ok := txt[TXTKeyIRQ]; ok {
		irq, err := strconv.ParseInt(irqStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: irq %q", ErrInvalidTXTRecord, irqStr)
		}
		info.IRQ = int32(irq)
	}

	// Optional fields
	info.MapperName = txt[TXTKeyMapper]
	info.Version = txt[TXTKeyVersion]

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value"
// strings, the format mDNS libraries expect.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidInstanceName)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
