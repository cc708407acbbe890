// Package presentation finds the frontmost UI surface able to host a
// full-screen ad. Hosts are opaque; the resolver only probes small
// capability interfaces.
package presentation

// Host is an opaque node of the displayed UI hierarchy.
type Host interface{}

// TabContainer is a tab-like container with one selected child.
type TabContainer interface {
	SelectedChild() Host
}

// StackContainer is a navigation stack. VisibleChild may be nil while a
// transition is in progress, in which case TopChild is used.
type StackContainer interface {
	VisibleChild() Host
	TopChild() Host
}

// SplitContainer is a split view whose last child is the trailing pane.
type SplitContainer interface {
	Children() []Host
}

// Presenter is any node currently presenting a modal child.
type Presenter interface {
	PresentedChild() Host
}

// Dismissing is implemented by nodes that can report an in-progress dismissal.
type Dismissing interface {
	IsBeingDismissed() bool
}

// Matcher unwraps a container node into the child that is really in front.
// It reports false when it does not apply to the node.
type Matcher func(Host) (Host, bool)

// MatchStack unwraps a navigation stack into its visible (or top) child.
func MatchStack(h Host) (Host, bool) {
	s, ok := h.(StackContainer)
	if !ok {
		return nil, false
	}
	if v := s.VisibleChild(); v != nil {
		return v, true
	}
	return nonNil(s.TopChild())
}

// MatchTab unwraps a tab container into its selected child.
func MatchTab(h Host) (Host, bool) {
	t, ok := h.(TabContainer)
	if !ok {
		return nil, false
	}
	return nonNil(t.SelectedChild())
}

// MatchSplit unwraps a split container into its last child.
func MatchSplit(h Host) (Host, bool) {
	s, ok := h.(SplitContainer)
	if !ok {
		return nil, false
	}
	children := s.Children()
	if len(children) == 0 {
		return nil, false
	}
	return nonNil(children[len(children)-1])
}

// MatchPresented follows a modal presentation unless the presented node is
// on its way out.
func MatchPresented(h Host) (Host, bool) {
	p, ok := h.(Presenter)
	if !ok {
		return nil, false
	}
	child := p.PresentedChild()
	if d, ok := child.(Dismissing); ok && d.IsBeingDismissed() {
		return nil, false
	}
	return nonNil(child)
}

func nonNil(h Host) (Host, bool) {
	return h, h != nil
}

// DefaultMatchers is the traversal order used by NewResolver.
func DefaultMatchers() []Matcher {
	return []Matcher{MatchStack, MatchTab, MatchSplit, MatchPresented}
}

// maxDepth bounds traversal of a malformed (cyclic) hierarchy.
const maxDepth = 64

// RootSource yields the root surface of the current UI, or nil.
type RootSource interface {
	RootHost() Host
}

// RootFunc adapts a function to RootSource.
type RootFunc func() Host

// RootHost implements RootSource.
func (f RootFunc) RootHost() Host { return f() }

// Resolver locates the topmost presentation host.
type Resolver struct {
	roots    RootSource
	matchers []Matcher
}

// NewResolver builds a resolver over roots. With no matchers it uses
// DefaultMatchers.
func NewResolver(roots RootSource, matchers ...Matcher) *Resolver {
	if len(matchers) == 0 {
		matchers = DefaultMatchers()
	}
	return &Resolver{roots: roots, matchers: matchers}
}

// TopmostHost walks from the root, applying the first matching Matcher until
// none applies. It returns nil when there is no root.
func (r *Resolver) TopmostHost() Host {
	if r == nil || r.roots == nil {
		return nil
	}
	current := r.roots.RootHost()
	if current == nil {
		return nil
	}
	for depth := 0; depth < maxDepth; depth++ {
		next, ok := r.unwrap(current)
		if !ok {
			return current
		}
		current = next
	}
	return current
}

func (r *Resolver) unwrap(h Host) (Host, bool) {
	for _, m := range r.matchers {
		if next, ok := m(h); ok {
			return next, true
		}
	}
	return nil, false
}
