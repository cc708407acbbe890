package interstitial

import "fmt"

// State is the lifecycle position of a coordinator's single ad slot.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateLoaded
	StatePresenting
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StatePresenting:
		return "presenting"
	default:
		return "empty"
	}
}

// MarshalText renders the state by name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name as written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "empty":
		*s = StateEmpty
	case "loading":
		*s = StateLoading
	case "loaded":
		*s = StateLoaded
	case "presenting":
		*s = StatePresenting
	default:
		return fmt.Errorf("unknown interstitial state %q", text)
	}
	return nil
}

// Snapshot is a point-in-time view of a coordinator.
type Snapshot struct {
	UnitID   string `json:"unit_id"`
	State    State  `json:"state"`
	HandleID string `json:"handle_id,omitempty"`
}

// ShowOutcome reports what a Show call did.
type ShowOutcome int

const (
	// ShowIneligible: the device is gated out; nothing happened.
	ShowIneligible ShowOutcome = iota
	// ShowPreloadScheduled: nothing was loaded, a preload was scheduled.
	ShowPreloadScheduled
	// ShowNotReady: a load or presentation is already in progress.
	ShowNotReady
	// ShowNoHost: a creative is loaded but no surface can host it.
	ShowNoHost
	// ShowPresented: presentation started.
	ShowPresented
)

func (o ShowOutcome) String() string {
	switch o {
	case ShowPreloadScheduled:
		return "preload_scheduled"
	case ShowNotReady:
		return "not_ready"
	case ShowNoHost:
		return "no_host"
	case ShowPresented:
		return "presented"
	default:
		return "ineligible"
	}
}

// MarshalText renders the outcome by name in JSON payloads.
func (o ShowOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses an outcome name as written by MarshalText.
func (o *ShowOutcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ineligible":
		*o = ShowIneligible
	case "preload_scheduled":
		*o = ShowPreloadScheduled
	case "not_ready":
		*o = ShowNotReady
	case "no_host":
		*o = ShowNoHost
	case "presented":
		*o = ShowPresented
	default:
		return fmt.Errorf("unknown show outcome %q", text)
	}
	return nil
}
