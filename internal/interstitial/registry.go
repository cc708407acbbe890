package interstitial

import (
	"sort"
	"sync"
)

// Factory builds the coordinator for an ad unit.
type Factory func(unitID string) *Coordinator

// Registry holds one shared coordinator per ad unit, created on first use.
// It is the explicit replacement for a process-wide singleton: callers
// construct it and pass it to whatever needs a coordinator.
type Registry struct {
	factory Factory

	mu           sync.Mutex
	coordinators map[string]*Coordinator
}

// NewRegistry builds a registry and eagerly creates coordinators for units.
func NewRegistry(factory Factory, units ...string) *Registry {
	r := &Registry{factory: factory, coordinators: make(map[string]*Coordinator)}
	for _, u := range units {
		r.Get(u)
	}
	return r
}

// Get returns the coordinator for unitID, creating it if needed.
func (r *Registry) Get(unitID string) *Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.coordinators[unitID]; ok {
		return c
	}
	c := r.factory(unitID)
	r.coordinators[unitID] = c
	return c
}

// Lookup returns the coordinator for unitID without creating one.
func (r *Registry) Lookup(unitID string) (*Coordinator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coordinators[unitID]
	return c, ok
}

// Units lists the registered ad units in sorted order.
func (r *Registry) Units() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	units := make([]string, 0, len(r.coordinators))
	for u := range r.coordinators {
		units = append(units, u)
	}
	sort.Strings(units)
	return units
}
