package bootstrap

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/patrickwarner/interstitial/internal/logic"
	"github.com/patrickwarner/interstitial/internal/models"
	"github.com/patrickwarner/interstitial/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConsent struct {
	calls    atomic.Int32
	resolved atomic.Bool
	err      error
}

func (f *fakeConsent) Resolve(ctx context.Context) (models.ConsentStatus, error) {
	f.calls.Add(1)
	if f.err != nil {
		return models.ConsentUndetermined, f.err
	}
	f.resolved.Store(true)
	return models.ConsentDenied, nil
}

type fakeSDK struct {
	consent       *fakeConsent
	release       chan struct{}
	calls         atomic.Int32
	finished      atomic.Bool
	sawUnresolved atomic.Bool
	err           error
}

func (f *fakeSDK) Start(ctx context.Context) error {
	f.calls.Add(1)
	if !f.consent.resolved.Load() {
		f.sawUnresolved.Store(true)
	}
	if f.release != nil {
		<-f.release
	}
	f.finished.Store(true)
	return f.err
}

func newTestBootstrap(device models.DeviceClass) (*Bootstrap, *fakeSDK, *fakeConsent, *observability.MockMetricsRegistry) {
	c := &fakeConsent{}
	sdk := &fakeSDK{consent: c}
	metrics := observability.NewMockMetricsRegistry()
	return New(sdk, c, logic.DefaultDeviceGate(), device, nil, metrics), sdk, c, metrics
}

func TestStart_ConcurrentCallersShareOneInitialization(t *testing.T) {
	b, sdk, _, metrics := newTestBootstrap(models.DevicePhone)
	sdk.release = make(chan struct{})

	const callers = 32
	var wg sync.WaitGroup
	var early atomic.Int32
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.Start(context.Background())
			assert.NoError(t, err)
			if !sdk.finished.Load() {
				early.Add(1)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, Starting, b.Phase())
	close(sdk.release)
	wg.Wait()

	assert.Equal(t, int32(1), sdk.calls.Load())
	assert.Zero(t, early.Load(), "Start returned before the SDK finished initializing")
	assert.Equal(t, Started, b.Phase())
	assert.Equal(t, 1, metrics.Count("bootstraps/success"))
}

func TestStart_ConsentResolvedBeforeSDK(t *testing.T) {
	b, sdk, c, _ := newTestBootstrap(models.DevicePhone)

	require.NoError(t, b.Start(context.Background()))
	assert.Equal(t, int32(1), c.calls.Load())
	assert.False(t, sdk.sawUnresolved.Load())
}

func TestStart_IdempotentOnceStarted(t *testing.T) {
	b, sdk, c, _ := newTestBootstrap(models.DevicePhone)

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Start(context.Background()))
	}
	assert.Equal(t, int32(1), sdk.calls.Load())
	assert.Equal(t, int32(1), c.calls.Load())
}

func TestStart_IneligibleDeviceIsNoOp(t *testing.T) {
	b, sdk, c, metrics := newTestBootstrap(models.DeviceTablet)

	require.NoError(t, b.Start(context.Background()))
	assert.Equal(t, NotStarted, b.Phase())
	assert.Zero(t, sdk.calls.Load())
	assert.Zero(t, c.calls.Load())
	assert.Zero(t, metrics.Count("bootstraps/success"))
}

func TestStart_FailureResetsPhase(t *testing.T) {
	b, sdk, _, metrics := newTestBootstrap(models.DevicePhone)
	sdk.err = errors.New("sdk exploded")

	err := b.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, NotStarted, b.Phase())
	assert.Equal(t, 1, metrics.Count("bootstraps/failure"))

	sdk.err = nil
	require.NoError(t, b.Start(context.Background()))
	assert.Equal(t, Started, b.Phase())
	assert.Equal(t, int32(2), sdk.calls.Load())
}

func TestStart_ConsentFailureSkipsSDK(t *testing.T) {
	b, sdk, c, _ := newTestBootstrap(models.DevicePhone)
	c.err = errors.New("prompt failed")

	require.Error(t, b.Start(context.Background()))
	assert.Zero(t, sdk.calls.Load())
}

func TestStart_CallerContextOnlyBoundsWait(t *testing.T) {
	b, sdk, _, _ := newTestBootstrap(models.DevicePhone)
	sdk.release = make(chan struct{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, b.Start(ctx), context.DeadlineExceeded)
	assert.Equal(t, Starting, b.Phase())

	close(sdk.release)
	require.NoError(t, b.Start(context.Background()))
	assert.Equal(t, int32(1), sdk.calls.Load())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "not_started", NotStarted.String())
	assert.Equal(t, "starting", Starting.String())
	assert.Equal(t, "started", Started.String())
}
