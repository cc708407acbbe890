// Package device answers which form factor the app is running on.
package device

import (
	"github.com/avct/uasurfer"

	"github.com/patrickwarner/interstitial/internal/models"
)

// Info is the device-info boundary.
type Info interface {
	CurrentDeviceClass() models.DeviceClass
}

// Static reports a fixed device class.
type Static models.DeviceClass

// CurrentDeviceClass implements Info.
func (s Static) CurrentDeviceClass() models.DeviceClass {
	return models.DeviceClass(s)
}

// UserAgent derives the device class from a User-Agent string, for hosts that
// embed the coordinator behind a web view and only know their UA.
type UserAgent string

// CurrentDeviceClass implements Info.
func (ua UserAgent) CurrentDeviceClass() models.DeviceClass {
	return ClassFromUserAgent(string(ua))
}

// ClassFromUserAgent parses a raw User-Agent with uasurfer.
func ClassFromUserAgent(raw string) models.DeviceClass {
	u := uasurfer.Parse(raw)
	switch u.DeviceType {
	case uasurfer.DevicePhone:
		return models.DevicePhone
	case uasurfer.DeviceTablet:
		return models.DeviceTablet
	default:
		return models.DeviceOther
	}
}
