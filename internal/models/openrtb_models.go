package models

// OpenRTBRequest is the subset of an IAB OpenRTB 2.5 bid request that the
// interstitial client sends to an openadserve-compatible ad server.
type OpenRTBRequest struct {
	ID     string       `json:"id"`
	Imp    []Impression `json:"imp"`
	User   User         `json:"user"`
	Device Device       `json:"device"`
	Regs   Regs         `json:"regs"`
	Ext    RequestExt   `json:"ext,omitempty"`
}

// Impression describes the single ad slot being requested.
type Impression struct {
	ID    string `json:"id"`
	TagID string `json:"tagid"` // ad unit ID
	// Instl is 1 for full-screen (interstitial) placements.
	Instl int `json:"instl"`
	W     int `json:"w,omitempty"`
	H     int `json:"h,omitempty"`
}

// User identifies the app install the request is made for.
type User struct {
	ID string `json:"id"`
}

// Device carries the user agent the server targets on.
type Device struct {
	UA string `json:"ua,omitempty"`
	IP string `json:"ip,omitempty"`
}

// Regs holds regulatory signals.
type Regs struct {
	Ext RegsExt `json:"ext"`
}

// RegsExt carries the non-personalized ads flag. Npa is 1 when the network
// must not use tracking-based targeting.
type RegsExt struct {
	Npa int `json:"npa"`
}

// RequestExt holds publisher extensions understood by openadserve.
type RequestExt struct {
	KV          map[string]string `json:"kv,omitempty"`
	PublisherID int               `json:"publisher_id"`
}

// OpenRTBResponse is the server's answer to an OpenRTBRequest. An empty
// SeatBid (optionally with Nbr set) means no fill.
type OpenRTBResponse struct {
	ID      string    `json:"id"`
	SeatBid []SeatBid `json:"seatbid"`
	Nbr     int       `json:"nbr,omitempty"`
}

// SeatBid groups the bids of one seat.
type SeatBid struct {
	Bid []Bid `json:"bid"`
}

// Bid is a winning creative with its markup and tracking URLs.
type Bid struct {
	ID       string  `json:"id"`
	ImpID    string  `json:"impid"`
	CrID     string  `json:"crid"`
	CID      string  `json:"cid"`
	Adm      string  `json:"adm"`
	Price    float64 `json:"price"`
	ImpURL   string  `json:"impurl,omitempty"`
	ClickURL string  `json:"clkurl,omitempty"`
	EventURL string  `json:"evturl,omitempty"`
}

// FirstBid returns the first bid in the response, or nil when nothing filled.
func (r OpenRTBResponse) FirstBid() *Bid {
	for _, sb := range r.SeatBid {
		if len(sb.Bid) > 0 {
			b := sb.Bid[0]
			return &b
		}
	}
	return nil
}
