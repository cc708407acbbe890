package consent

import (
	"context"
	"sync"

	"github.com/patrickwarner/interstitial/internal/models"
)

// Tracker is the platform tracking-authorization boundary.
type Tracker interface {
	// PromptForTrackingAuthorization shows the system prompt and returns the user's answer.
	PromptForTrackingAuthorization(ctx context.Context) (models.ConsentStatus, error)
	// CurrentTrackingAuthorization returns the platform's recorded decision without prompting.
	CurrentTrackingAuthorization() models.ConsentStatus
}

// PromptLedger remembers whether the prompt was already shown, across
// process lifetimes when backed by persistent storage.
type PromptLedger interface {
	Prompted(ctx context.Context) (bool, error)
	MarkPrompted(ctx context.Context) error
}

// StaticTracker answers the prompt with a fixed status. Headless hosts use it
// to stand in for the system dialog.
type StaticTracker struct {
	mu      sync.Mutex
	answer  models.ConsentStatus
	current models.ConsentStatus
}

// NewStaticTracker returns a tracker whose platform state starts Undetermined
// and whose prompt answers with answer.
func NewStaticTracker(answer models.ConsentStatus) *StaticTracker {
	return &StaticTracker{answer: answer}
}

// PromptForTrackingAuthorization records and returns the configured answer.
func (s *StaticTracker) PromptForTrackingAuthorization(ctx context.Context) (models.ConsentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.answer
	return s.answer, nil
}

// CurrentTrackingAuthorization returns the answer once prompted, Undetermined before.
func (s *StaticTracker) CurrentTrackingAuthorization() models.ConsentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// MemoryLedger is a PromptLedger that lives only as long as the process.
type MemoryLedger struct {
	mu       sync.Mutex
	prompted bool
}

func (m *MemoryLedger) Prompted(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prompted, nil
}

func (m *MemoryLedger) MarkPrompted(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompted = true
	return nil
}
