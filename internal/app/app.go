// Package app wires the interstitial pipeline from configuration. Both the
// HTTP control server and the MCP server build on it.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/patrickwarner/interstitial/internal/adnet"
	"github.com/patrickwarner/interstitial/internal/bootstrap"
	"github.com/patrickwarner/interstitial/internal/config"
	"github.com/patrickwarner/interstitial/internal/consent"
	"github.com/patrickwarner/interstitial/internal/db"
	"github.com/patrickwarner/interstitial/internal/device"
	"github.com/patrickwarner/interstitial/internal/interstitial"
	"github.com/patrickwarner/interstitial/internal/logic"
	"github.com/patrickwarner/interstitial/internal/models"
	"github.com/patrickwarner/interstitial/internal/observability"
	"github.com/patrickwarner/interstitial/internal/presentation"
)

// MainScene names the headless scene every coordinator presents on.
const MainScene = "main"

// App holds the long-lived collaborators of one process.
type App struct {
	Device       models.DeviceClass
	Gate         logic.DeviceGate
	Consent      *consent.State
	Bootstrap    *bootstrap.Bootstrap
	Client       *adnet.Client
	Scenes       *presentation.SceneRoots
	Coordinators *interstitial.Registry

	store *db.RedisStore
}

// New builds the pipeline. The device class is read once here.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, metrics observability.MetricsRegistry) (*App, error) {
	gate, err := deviceGate(cfg.ExcludedDevices)
	if err != nil {
		return nil, err
	}
	answer, err := models.ParseConsentStatus(cfg.ConsentResponse)
	if err != nil {
		return nil, fmt.Errorf("CONSENT_RESPONSE: %w", err)
	}

	a := &App{Gate: gate, Scenes: &presentation.SceneRoots{}}
	a.Device = deviceInfo(cfg).CurrentDeviceClass()

	var ledger consent.PromptLedger
	switch cfg.ConsentLedger {
	case "", "memory":
		ledger = &consent.MemoryLedger{}
	case "redis":
		store, err := db.InitRedis(ctx, cfg.RedisAddr, cfg.AppID)
		if err != nil {
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		a.store = store
		ledger = store
	default:
		return nil, fmt.Errorf("unknown CONSENT_LEDGER %q", cfg.ConsentLedger)
	}

	a.Consent = consent.NewState(consent.NewStaticTracker(answer), ledger, logger, metrics)
	a.Client = adnet.NewClient(adnet.Config{
		BaseURL:     cfg.AdServerURL,
		APIKey:      cfg.APIKey,
		PublisherID: cfg.PublisherID,
		UserID:      cfg.AppID,
		UserAgent:   cfg.DeviceUserAgent,
		Timeout:     cfg.AdNetworkTimeout,
	}, logger.Named("adnet"))
	a.Bootstrap = bootstrap.New(a.Client, a.Consent, gate, a.Device, logger.Named("bootstrap"), metrics)

	a.Scenes.Connect(presentation.Scene{
		Name:  MainScene,
		State: presentation.ForegroundActive,
		Root:  &adnet.LogCanvas{Name: MainScene, Duration: cfg.PresentDuration, Logger: logger.Named("canvas")},
	})
	hosts := presentation.NewResolver(a.Scenes)

	a.Coordinators = interstitial.NewRegistry(func(unitID string) *interstitial.Coordinator {
		return interstitial.New(interstitial.Options{
			UnitID:    unitID,
			Device:    a.Device,
			Gate:      gate,
			Bootstrap: a.Bootstrap,
			Consent:   a.Consent,
			Loader:    a.Client,
			Hosts:     hosts,
			Logger:    logger.Named("interstitial"),
			Metrics:   metrics,
		})
	}, cfg.AdUnitIDs...)

	logger.Info("interstitial pipeline ready",
		zap.Stringer("device", a.Device),
		zap.Bool("eligible", gate.IsEligible(a.Device)),
		zap.Strings("units", cfg.AdUnitIDs),
		zap.String("consent_ledger", cfg.ConsentLedger))
	return a, nil
}

// Close releases the consent ledger connection, if any.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

func deviceInfo(cfg config.Config) device.Info {
	if cfg.DeviceUserAgent != "" {
		return device.UserAgent(cfg.DeviceUserAgent)
	}
	return device.Static(models.DevicePhone)
}

func deviceGate(excluded []string) (logic.DeviceGate, error) {
	classes := make([]models.DeviceClass, 0, len(excluded))
	for _, e := range excluded {
		d, err := models.ParseDeviceClass(e)
		if err != nil {
			return logic.DeviceGate{}, fmt.Errorf("EXCLUDED_DEVICES: %w", err)
		}
		classes = append(classes, d)
	}
	return logic.NewDeviceGate(classes...), nil
}
