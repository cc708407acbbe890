package adnet

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LogCanvas is a headless Canvas: it logs the creative, keeps it "on screen"
// for Duration and then dismisses it.
type LogCanvas struct {
	Name     string
	Duration time.Duration
	Logger   *zap.Logger
}

// Render implements Canvas. A cancelled ctx dismisses early.
func (c *LogCanvas) Render(ctx context.Context, cr Creative) error {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("displaying interstitial",
		zap.String("host", c.Name),
		zap.String("unit_id", cr.UnitID),
		zap.String("creative_id", cr.CreativeID),
		zap.Float64("price", cr.Price))

	timer := time.NewTimer(c.Duration)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	logger.Info("interstitial dismissed", zap.String("host", c.Name), zap.String("unit_id", cr.UnitID))
	return nil
}
