// Package interstitial coordinates the preload / show / re-preload lifecycle
// of a single full-screen ad unit.
package interstitial

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/patrickwarner/interstitial/internal/logic"
	"github.com/patrickwarner/interstitial/internal/models"
	"github.com/patrickwarner/interstitial/internal/observability"
	"github.com/patrickwarner/interstitial/internal/presentation"
)

var tracer = observability.Tracer("interstitial")

// Handle is a loaded creative. It is owned by one coordinator from load
// success until its terminal event and is never reused afterwards.
type Handle interface {
	ID() string
	// Present shows the creative on host and returns exactly once: nil after
	// the user dismisses it, or the error that prevented presentation.
	Present(ctx context.Context, host presentation.Host) error
}

// Loader is the ad network load primitive.
type Loader interface {
	Load(ctx context.Context, unitID string, req models.AdRequest) (Handle, error)
}

// Starter initializes the ad SDK; *bootstrap.Bootstrap implements it.
type Starter interface {
	Start(ctx context.Context) error
}

// ConsentSource yields the resolved consent; *consent.State implements it.
type ConsentSource interface {
	Resolve(ctx context.Context) (models.ConsentStatus, error)
}

// HostResolver finds where to present; *presentation.Resolver implements it.
// It is called without the coordinator lock held.
type HostResolver interface {
	TopmostHost() presentation.Host
}

// noHosts is the resolver used when none is configured.
type noHosts struct{}

func (noHosts) TopmostHost() presentation.Host { return nil }

// Executor runs follow-up work (auto-preload, presentation) off the caller's path.
type Executor func(task func())

// GoExecutor runs each task on its own goroutine.
func GoExecutor(task func()) { go task() }

// Options wires a Coordinator to its collaborators.
type Options struct {
	UnitID    string
	Device    models.DeviceClass
	Gate      logic.DeviceGate
	Bootstrap Starter
	Consent   ConsentSource
	Loader    Loader
	Hosts     HostResolver
	Executor  Executor
	Logger    *zap.Logger
	Metrics   observability.MetricsRegistry
}

// Coordinator is the state machine for one interstitial ad unit.
type Coordinator struct {
	unitID    string
	device    models.DeviceClass
	gate      logic.DeviceGate
	bootstrap Starter
	consent   ConsentSource
	loader    Loader
	hosts     HostResolver
	schedule  Executor
	logger    *zap.Logger
	metrics   observability.MetricsRegistry

	mu      sync.Mutex
	state   State
	handle  Handle
	loadSeq uint64
}

// New builds a coordinator in the Empty state.
func New(opts Options) *Coordinator {
	c := &Coordinator{
		unitID:    opts.UnitID,
		device:    opts.Device,
		gate:      opts.Gate,
		bootstrap: opts.Bootstrap,
		consent:   opts.Consent,
		loader:    opts.Loader,
		hosts:     opts.Hosts,
		schedule:  opts.Executor,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
	if c.schedule == nil {
		c.schedule = GoExecutor
	}
	if c.hosts == nil {
		c.hosts = noHosts{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.With(zap.String("unit_id", opts.UnitID))
	if c.metrics == nil {
		c.metrics = observability.NewNoOpRegistry()
	}
	return c
}

// UnitID returns the ad unit this coordinator serves.
func (c *Coordinator) UnitID() string { return c.unitID }

func (c *Coordinator) eligible() bool {
	return c.gate.IsEligible(c.device)
}

// Snapshot returns the current state. A gated-out device always reports
// Empty without the slot being read.
func (c *Coordinator) Snapshot() Snapshot {
	if !c.eligible() {
		return Snapshot{UnitID: c.unitID, State: StateEmpty}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{UnitID: c.unitID, State: c.state}
	if c.handle != nil {
		s.HandleID = c.handle.ID()
	}
	return s
}

// Preload loads the next creative when the coordinator is Empty. While a load
// is in flight, or a creative is loaded or showing, it does nothing. It
// returns once the load has finished. Failures are logged and leave the
// coordinator Empty; there is no retry.
func (c *Coordinator) Preload(ctx context.Context) {
	if !c.eligible() {
		return
	}

	c.mu.Lock()
	if c.state != StateEmpty {
		c.mu.Unlock()
		return
	}
	c.loadSeq++
	seq := c.loadSeq
	c.state = StateLoading
	c.mu.Unlock()

	ctx, span := tracer.Start(ctx, "interstitial.Preload",
		trace.WithAttributes(attribute.String("unit_id", c.unitID)))
	defer span.End()

	if err := c.bootstrap.Start(ctx); err != nil {
		c.abandonLoad(seq)
		span.RecordError(err)
		c.metrics.IncrementLoads(c.unitID, "bootstrap_failure")
		c.logger.Warn("preload skipped, ad sdk not started", zap.Error(err))
		return
	}

	// Already cached by the bootstrap; the request must not be built before this.
	status, err := c.consent.Resolve(ctx)
	if err != nil {
		c.abandonLoad(seq)
		span.RecordError(err)
		c.metrics.IncrementLoads(c.unitID, "consent_failure")
		c.logger.Warn("preload skipped, consent unresolved", zap.Error(err))
		return
	}
	req := logic.BuildAdRequest(status)
	span.SetAttributes(
		attribute.String("request_id", req.ID),
		attribute.Bool("npa", req.NonPersonalized),
	)

	start := time.Now()
	handle, err := c.loader.Load(context.WithoutCancel(ctx), c.unitID, req)
	c.metrics.RecordLoadLatency(c.unitID, time.Since(start))

	c.mu.Lock()
	if c.loadSeq != seq || c.state != StateLoading {
		c.mu.Unlock()
		c.logger.Debug("dropping outcome of superseded load", zap.String("request_id", req.ID))
		return
	}
	if err != nil || handle == nil {
		c.state = StateEmpty
		c.mu.Unlock()
		span.RecordError(err)
		c.metrics.IncrementLoads(c.unitID, "failure")
		c.logger.Warn("interstitial load failed",
			zap.String("request_id", req.ID),
			zap.Bool("npa", req.NonPersonalized),
			zap.Error(err))
		return
	}
	c.state = StateLoaded
	c.handle = handle
	c.mu.Unlock()

	c.metrics.IncrementLoads(c.unitID, "success")
	c.logger.Info("interstitial loaded",
		zap.String("request_id", req.ID),
		zap.String("handle_id", handle.ID()),
		zap.Bool("npa", req.NonPersonalized))
}

// abandonLoad returns a load that never reached the network to Empty.
func (c *Coordinator) abandonLoad(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadSeq == seq && c.state == StateLoading {
		c.state = StateEmpty
	}
}

// Show presents the loaded creative on the topmost host. It never waits for a
// load: when nothing is loaded it schedules a preload for a later call.
func (c *Coordinator) Show(ctx context.Context) ShowOutcome {
	if !c.eligible() {
		return ShowIneligible
	}

	outcome := c.show(ctx)
	c.metrics.IncrementShows(c.unitID, outcome.String())
	return outcome
}

func (c *Coordinator) show(ctx context.Context) ShowOutcome {
	c.mu.Lock()
	switch c.state {
	case StateEmpty:
		c.mu.Unlock()
		c.logger.Debug("no interstitial ready, preload scheduled")
		c.schedulePreload(ctx)
		return ShowPreloadScheduled
	case StateLoading, StatePresenting:
		c.mu.Unlock()
		return ShowNotReady
	}
	handle := c.handle
	c.mu.Unlock()

	host := c.hosts.TopmostHost()
	if host == nil {
		c.logger.Debug("no presentation host available")
		return ShowNoHost
	}

	// Another Show may have claimed the handle while the host was resolved.
	c.mu.Lock()
	if c.state != StateLoaded || c.handle == nil || c.handle.ID() != handle.ID() {
		c.mu.Unlock()
		return ShowNotReady
	}
	c.state = StatePresenting
	c.mu.Unlock()

	presentCtx := context.WithoutCancel(ctx)
	c.schedule(func() {
		err := handle.Present(presentCtx, host)
		c.finishPresentation(handle, err)
	})
	return ShowPresented
}

// finishPresentation handles the terminal event of a presented creative:
// dismissal (err == nil) or present failure. Either way the handle is
// dropped and exactly one preload is re-armed.
func (c *Coordinator) finishPresentation(handle Handle, err error) {
	c.mu.Lock()
	if c.state != StatePresenting || c.handle == nil || c.handle.ID() != handle.ID() {
		c.mu.Unlock()
		c.logger.Debug("ignoring event for stale handle", zap.String("handle_id", handle.ID()))
		return
	}
	c.state = StateEmpty
	c.handle = nil
	c.mu.Unlock()

	if err != nil {
		c.metrics.IncrementPresentations(c.unitID, "failed")
		c.logger.Warn("interstitial present failed, preload next",
			zap.String("handle_id", handle.ID()), zap.Error(err))
	} else {
		c.metrics.IncrementPresentations(c.unitID, "dismissed")
		c.logger.Info("interstitial dismissed, preload next", zap.String("handle_id", handle.ID()))
	}
	c.schedulePreload(context.Background())
}

func (c *Coordinator) schedulePreload(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	c.schedule(func() { c.Preload(ctx) })
}
