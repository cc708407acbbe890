package logic

import "github.com/patrickwarner/interstitial/internal/models"

// DeviceGate decides whether a device class participates in the ad pipeline.
// The zero value admits every class.
type DeviceGate struct {
	excluded map[models.DeviceClass]struct{}
}

// NewDeviceGate returns a gate rejecting the given device classes.
func NewDeviceGate(excluded ...models.DeviceClass) DeviceGate {
	g := DeviceGate{excluded: make(map[models.DeviceClass]struct{}, len(excluded))}
	for _, d := range excluded {
		g.excluded[d] = struct{}{}
	}
	return g
}

// DefaultDeviceGate keeps tablets out of the ad pipeline.
func DefaultDeviceGate() DeviceGate {
	return NewDeviceGate(models.DeviceTablet)
}

// IsEligible reports whether ads may be loaded or shown on the device class.
func (g DeviceGate) IsEligible(d models.DeviceClass) bool {
	_, blocked := g.excluded[d]
	return !blocked
}
