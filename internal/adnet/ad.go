package adnet

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/patrickwarner/interstitial/internal/presentation"
)

// Creative is a loaded interstitial ready to render.
type Creative struct {
	ID         string
	UnitID     string
	RequestID  string
	CreativeID string
	Markup     string
	Price      float64
	ClickURL   string
}

// Canvas is a presentation host able to display a creative full screen.
// Render returns once the user dismisses it.
type Canvas interface {
	Render(ctx context.Context, c Creative) error
}

// ad is the handle returned by Client.Load.
type ad struct {
	client    *Client
	creative  Creative
	impURL    string
	presented atomic.Bool
}

func newAd(c *Client, creative Creative, impURL string) *ad {
	return &ad{client: c, creative: creative, impURL: impURL}
}

// ID returns the unique identifier of this loaded creative.
func (a *ad) ID() string { return a.creative.ID }

// Present renders the creative on host and fires its impression.
func (a *ad) Present(ctx context.Context, host presentation.Host) error {
	canvas, ok := host.(Canvas)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedHost, host)
	}
	if !a.presented.CompareAndSwap(false, true) {
		return ErrAlreadyPresented
	}
	if err := canvas.Render(ctx, a.creative); err != nil {
		return fmt.Errorf("render creative %s: %w", a.creative.CreativeID, err)
	}
	a.client.fireImpression(ctx, a.impURL)
	return nil
}
