package presentation

import (
	"sort"
	"sync"
)

// ActivationState mirrors the lifecycle of a window scene.
type ActivationState int

const (
	ForegroundActive ActivationState = iota
	ForegroundInactive
	Background
	Unattached
)

// Scene is one connected UI scene and the root of its key window.
type Scene struct {
	Name  string
	State ActivationState
	Root  Host
}

// SceneRoots is a RootSource over the app's connected scenes. The root of the
// most active scene wins; ties keep registration order.
type SceneRoots struct {
	mu     sync.RWMutex
	scenes []Scene
}

// Connect registers or replaces a scene by name.
func (s *SceneRoots) Connect(scene Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.scenes {
		if s.scenes[i].Name == scene.Name {
			s.scenes[i] = scene
			return
		}
	}
	s.scenes = append(s.scenes, scene)
}

// Disconnect removes the named scene.
func (s *SceneRoots) Disconnect(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.scenes {
		if s.scenes[i].Name == name {
			s.scenes = append(s.scenes[:i], s.scenes[i+1:]...)
			return
		}
	}
}

// RootHost implements RootSource.
func (s *SceneRoots) RootHost() Host {
	s.mu.RLock()
	ranked := make([]Scene, len(s.scenes))
	copy(ranked, s.scenes)
	s.mu.RUnlock()

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].State < ranked[j].State
	})
	for _, sc := range ranked {
		if sc.Root != nil {
			return sc.Root
		}
	}
	return nil
}
