// Package bootstrap performs the one-time initialization of the ad network
// SDK after consent has been resolved.
package bootstrap

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/patrickwarner/interstitial/internal/logic"
	"github.com/patrickwarner/interstitial/internal/models"
	"github.com/patrickwarner/interstitial/internal/observability"
)

var tracer = observability.Tracer("bootstrap")

// Initializer is the ad network SDK's initialization primitive.
type Initializer interface {
	Start(ctx context.Context) error
}

// ConsentResolver resolves tracking consent; *consent.State implements it.
type ConsentResolver interface {
	Resolve(ctx context.Context) (models.ConsentStatus, error)
}

// Phase is the bootstrap lifecycle.
type Phase int

const (
	NotStarted Phase = iota
	Starting
	Started
)

func (p Phase) String() string {
	switch p {
	case Starting:
		return "starting"
	case Started:
		return "started"
	default:
		return "not_started"
	}
}

// startCall is the shared outcome every caller of an in-flight Start waits on.
type startCall struct {
	done chan struct{}
	err  error
}

// Bootstrap runs consent resolution and SDK initialization exactly once.
type Bootstrap struct {
	sdk     Initializer
	consent ConsentResolver
	gate    logic.DeviceGate
	device  models.DeviceClass
	logger  *zap.Logger
	metrics observability.MetricsRegistry

	mu    sync.Mutex
	phase Phase
	call  *startCall // non-nil only while Starting
}

// New builds a Bootstrap for the given device. The device class is read once
// by the caller; the gate is consulted on every Start.
func New(sdk Initializer, consent ConsentResolver, gate logic.DeviceGate, device models.DeviceClass, logger *zap.Logger, metrics observability.MetricsRegistry) *Bootstrap {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Bootstrap{
		sdk:     sdk,
		consent: consent,
		gate:    gate,
		device:  device,
		logger:  logger,
		metrics: metrics,
	}
}

// Phase returns the current lifecycle phase.
func (b *Bootstrap) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// Start initializes the SDK if needed and waits for it. Concurrent callers
// share one initialization; once Started it returns nil immediately. On an
// ineligible device it does nothing. ctx bounds only this caller's wait.
func (b *Bootstrap) Start(ctx context.Context) error {
	if !b.gate.IsEligible(b.device) {
		return nil
	}

	b.mu.Lock()
	switch b.phase {
	case Started:
		b.mu.Unlock()
		return nil
	case Starting:
		call := b.call
		b.mu.Unlock()
		return wait(ctx, call)
	}
	call := &startCall{done: make(chan struct{})}
	b.phase = Starting
	b.call = call
	b.mu.Unlock()

	go b.run(context.WithoutCancel(ctx), call)
	return wait(ctx, call)
}

func wait(ctx context.Context, call *startCall) error {
	select {
	case <-call.done:
		return call.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bootstrap) run(ctx context.Context, call *startCall) {
	ctx, span := tracer.Start(ctx, "bootstrap.Start")
	defer span.End()

	err := b.initialize(ctx)

	b.mu.Lock()
	if err != nil {
		b.phase = NotStarted
	} else {
		b.phase = Started
	}
	b.call = nil
	b.mu.Unlock()

	call.err = err
	close(call.done)

	if err != nil {
		span.RecordError(err)
		b.metrics.IncrementBootstraps("failure")
		b.logger.Error("ad sdk bootstrap failed", zap.Error(err))
		return
	}
	b.metrics.IncrementBootstraps("success")
	b.logger.Info("ad sdk started")
}

// initialize resolves consent before touching the SDK.
func (b *Bootstrap) initialize(ctx context.Context) error {
	if _, err := b.consent.Resolve(ctx); err != nil {
		return fmt.Errorf("resolve consent: %w", err)
	}
	if err := b.sdk.Start(ctx); err != nil {
		return fmt.Errorf("start ad sdk: %w", err)
	}
	return nil
}
