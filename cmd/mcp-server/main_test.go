package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrickwarner/interstitial/internal/interstitial"
	"github.com/patrickwarner/interstitial/internal/models"
	"github.com/patrickwarner/interstitial/internal/presentation"
)

type okStarter struct{}

func (okStarter) Start(ctx context.Context) error { return nil }

type deniedConsent struct{}

func (deniedConsent) Resolve(ctx context.Context) (models.ConsentStatus, error) {
	return models.ConsentDenied, nil
}

type handle string

func (h handle) ID() string { return string(h) }

func (h handle) Present(ctx context.Context, host presentation.Host) error { return nil }

type loader struct{ err error }

func (l loader) Load(ctx context.Context, unitID string, req models.AdRequest) (interstitial.Handle, error) {
	if l.err != nil {
		return nil, l.err
	}
	return handle(unitID + "-" + req.ID), nil
}

type screen struct{}

type hosts struct{}

func (hosts) TopmostHost() presentation.Host { return screen{} }

func newTestTools(l interstitial.Loader, executor interstitial.Executor) *InterstitialTools {
	registry := interstitial.NewRegistry(func(unit string) *interstitial.Coordinator {
		return interstitial.New(interstitial.Options{
			UnitID:    unit,
			Device:    models.DevicePhone,
			Bootstrap: okStarter{},
			Consent:   deniedConsent{},
			Loader:    l,
			Hosts:     hosts{},
			Executor:  executor,
		})
	}, "home", "level_end")
	return &InterstitialTools{coordinators: registry, loadTimeout: time.Second, logger: zap.NewNop()}
}

func TestTools_PreloadThenShow(t *testing.T) {
	var queued []func()
	tools := newTestTools(loader{}, func(task func()) { queued = append(queued, task) })
	ctx := context.Background()

	_, pre, err := tools.Preload(ctx, nil, UnitInput{UnitID: "home"})
	require.NoError(t, err)
	assert.Equal(t, "loaded", pre.Unit.State)

	_, show, err := tools.Show(ctx, nil, UnitInput{UnitID: "home"})
	require.NoError(t, err)
	assert.Equal(t, "presented", show.Outcome)
	assert.Equal(t, "presenting", show.Unit.State)
	require.Len(t, queued, 1)

	_, state, err := tools.State(ctx, nil, UnitInput{})
	require.NoError(t, err)
	require.Len(t, state.Units, 2)
	assert.Equal(t, "home", state.Units[0].UnitID)
	assert.Equal(t, "presenting", state.Units[0].State)
	assert.Equal(t, "empty", state.Units[1].State)
}

func TestTools_ShowOnEmptySchedulesPreload(t *testing.T) {
	tools := newTestTools(loader{err: errors.New("no fill")}, func(task func()) { task() })

	_, show, err := tools.Show(context.Background(), nil, UnitInput{UnitID: "level_end"})
	require.NoError(t, err)
	assert.Equal(t, "preload_scheduled", show.Outcome)
	assert.Equal(t, "empty", show.Unit.State)
}

func TestTools_UnknownUnit(t *testing.T) {
	tools := newTestTools(loader{}, nil)

	_, _, err := tools.Preload(context.Background(), nil, UnitInput{UnitID: "nope"})
	assert.ErrorContains(t, err, "nope")
	_, _, err = tools.Show(context.Background(), nil, UnitInput{UnitID: "nope"})
	assert.Error(t, err)
	_, _, err = tools.State(context.Background(), nil, UnitInput{UnitID: "nope"})
	assert.Error(t, err)
}

func TestTools_Register(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	assert.NotPanics(t, func() { newTestTools(loader{}, nil).register(server) })
}
