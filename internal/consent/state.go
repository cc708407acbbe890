// Package consent resolves the one-time tracking-consent prompt and caches
// its outcome for the rest of the process lifetime.
package consent

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/patrickwarner/interstitial/internal/models"
	"github.com/patrickwarner/interstitial/internal/observability"
)

var tracer = observability.Tracer("consent")

// resolution is the in-flight prompt shared by every concurrent Resolve caller.
type resolution struct {
	done   chan struct{}
	status models.ConsentStatus
	err    error
}

// State owns the cached ConsentStatus.
type State struct {
	tracker Tracker
	ledger  PromptLedger
	logger  *zap.Logger
	metrics observability.MetricsRegistry

	mu       sync.Mutex
	resolved bool
	status   models.ConsentStatus
	pending  *resolution
}

// NewState builds a State. A nil ledger means prompts are only deduplicated
// within this process.
func NewState(tracker Tracker, ledger PromptLedger, logger *zap.Logger, metrics observability.MetricsRegistry) *State {
	if ledger == nil {
		ledger = &MemoryLedger{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &State{tracker: tracker, ledger: ledger, logger: logger, metrics: metrics}
}

// Status returns the cached status and whether resolution has completed.
func (s *State) Status() (models.ConsentStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.resolved
}

// Resolve returns the consent status, prompting at most once. Concurrent
// callers wait on the same prompt. ctx bounds only the caller's wait; the
// prompt itself runs to completion.
func (s *State) Resolve(ctx context.Context) (models.ConsentStatus, error) {
	s.mu.Lock()
	if s.resolved {
		status := s.status
		s.mu.Unlock()
		return status, nil
	}
	r := s.pending
	if r == nil {
		r = &resolution{done: make(chan struct{})}
		s.pending = r
		go s.run(context.WithoutCancel(ctx), r)
	}
	s.mu.Unlock()

	select {
	case <-r.done:
		return r.status, r.err
	case <-ctx.Done():
		return models.ConsentUndetermined, ctx.Err()
	}
}

func (s *State) run(ctx context.Context, r *resolution) {
	ctx, span := tracer.Start(ctx, "consent.Resolve")
	defer span.End()

	status, err := s.determine(ctx)

	s.mu.Lock()
	if err == nil {
		s.status = status
		s.resolved = true
	}
	s.pending = nil
	s.mu.Unlock()

	r.status, r.err = status, err
	close(r.done)

	if err != nil {
		span.RecordError(err)
		s.logger.Warn("consent resolution failed", zap.Error(err))
		return
	}
	span.SetAttributes(attribute.String("consent.status", status.String()))
	s.metrics.IncrementConsentResolutions(status.String())
	s.logger.Info("consent resolved", zap.String("status", status.String()))
}

// determine asks the platform first and only prompts when it has no decision
// and no earlier lifetime has prompted already.
func (s *State) determine(ctx context.Context) (models.ConsentStatus, error) {
	if current := s.tracker.CurrentTrackingAuthorization(); current != models.ConsentUndetermined {
		return current, nil
	}

	prompted, err := s.ledger.Prompted(ctx)
	if err != nil {
		// fail open: showing the prompt again beats never asking
		s.logger.Warn("consent ledger unavailable", zap.Error(err))
		prompted = false
	}
	if prompted {
		return models.ConsentUndetermined, nil
	}

	status, err := s.tracker.PromptForTrackingAuthorization(ctx)
	if err != nil {
		return models.ConsentUndetermined, fmt.Errorf("tracking prompt: %w", err)
	}
	if err := s.ledger.MarkPrompted(ctx); err != nil {
		s.logger.Warn("failed to persist consent prompt flag", zap.Error(err))
	}
	return status, nil
}
