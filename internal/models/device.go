package models

import (
	"fmt"
	"strings"
)

// DeviceClass is the coarse form factor of the device running the app.
// It is read once at startup and never changes afterwards.
type DeviceClass int

const (
	DevicePhone DeviceClass = iota
	DeviceTablet
	DeviceOther
)

func (d DeviceClass) String() string {
	switch d {
	case DevicePhone:
		return "phone"
	case DeviceTablet:
		return "tablet"
	default:
		return "other"
	}
}

// ParseDeviceClass converts "phone", "tablet" or "other" into a DeviceClass.
func ParseDeviceClass(v string) (DeviceClass, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "phone", "mobile":
		return DevicePhone, nil
	case "tablet", "pad":
		return DeviceTablet, nil
	case "other":
		return DeviceOther, nil
	}
	return DeviceOther, fmt.Errorf("unknown device class %q", v)
}
