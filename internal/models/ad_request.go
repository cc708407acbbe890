package models

// AdRequest carries the parameters of a single interstitial load.
type AdRequest struct {
	// ID is a client generated identifier echoed back by the ad network.
	ID string `json:"id"`
	// NonPersonalized signals the network must not use tracking-based targeting (npa=1).
	NonPersonalized bool `json:"non_personalized"`
}

// NPA returns the value of the "npa" request parameter.
func (r AdRequest) NPA() string {
	if r.NonPersonalized {
		return "1"
	}
	return "0"
}
