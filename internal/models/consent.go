package models

import (
	"fmt"
	"strings"
)

// ConsentStatus is the outcome of the tracking-consent prompt.
type ConsentStatus int

const (
	ConsentUndetermined ConsentStatus = iota
	ConsentGranted
	ConsentDenied
	ConsentRestricted
)

func (s ConsentStatus) String() string {
	switch s {
	case ConsentGranted:
		return "granted"
	case ConsentDenied:
		return "denied"
	case ConsentRestricted:
		return "restricted"
	default:
		return "undetermined"
	}
}

// ParseConsentStatus converts the lower-case text form back into a ConsentStatus.
func ParseConsentStatus(v string) (ConsentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "undetermined", "":
		return ConsentUndetermined, nil
	case "granted", "authorized":
		return ConsentGranted, nil
	case "denied":
		return ConsentDenied, nil
	case "restricted":
		return ConsentRestricted, nil
	}
	return ConsentUndetermined, fmt.Errorf("unknown consent status %q", v)
}
