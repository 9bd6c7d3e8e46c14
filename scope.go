package quiver

import (
	"sync"
	"sync/atomic"
)

// Scope is an explicit ownership container for embedders that need to tear
// down a whole subsystem of reactive state at once. Effects created inside
// Run with no enclosing effect are adopted by the scope; disposing the
// scope disposes them, runs OnCleanup registrations, and cascades to child
// scopes.
//
// Scopes also carry ambient values: see ScopeValue.
type Scope struct {
	id     uint64
	parent *Scope

	children []*Scope
	effects  []*Effect
	cleanups []func()
	values   map[any]any
	mu       sync.Mutex

	// running guards against re-entrant Run on the same scope.
	running atomic.Bool

	disposed atomic.Bool
}

// NewScope creates a scope. A non-nil parent adopts the new scope as a
// child, so disposing the parent disposes it too.
func NewScope(parent *Scope) *Scope {
	s := &Scope{
		id:     nextID(),
		parent: parent,
	}
	if parent != nil {
		parent.addChild(s)
	}
	return s
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the parent scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsDisposed reports whether Dispose has run.
func (s *Scope) IsDisposed() bool {
	return s.disposed.Load()
}

// Run executes fn with this scope as the ambient scope: root effects
// created inside are adopted by it and ScopeValue lookups resolve against
// it. The previous ambient scope is restored on every exit path.
//
// Panics with code E002 on a disposed scope and E003 when the scope is
// already running (re-entrant Run).
func (s *Scope) Run(fn func()) {
	if s.disposed.Load() {
		codedPanic(codeScopeDisposed, "Run on a disposed scope")
	}
	if !s.running.CompareAndSwap(false, true) {
		codedPanic(codeScopeReentrant, "re-entrant Run on the same scope")
	}
	defer s.running.Store(false)

	ctx := getTrackingContext()
	prev := ctx.scope
	ctx.scope = s
	defer func() { ctx.scope = prev }()

	fn()
}

// OnCleanup registers fn to run when the scope is disposed.
// On an already-disposed scope fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed.Load() {
		fn()
		return
	}

	s.mu.Lock()
	s.cleanups = append(s.cleanups, fn)
	s.mu.Unlock()
}

// Dispose tears the scope down: child scopes in reverse creation order,
// then owned effects in reverse creation order, then OnCleanup
// registrations in reverse registration order. Idempotent.
func (s *Scope) Dispose() {
	if s.disposed.Swap(true) {
		return
	}

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	s.mu.Lock()
	children := s.children
	effects := s.effects
	cleanups := s.cleanups
	s.children = nil
	s.effects = nil
	s.cleanups = nil
	s.mu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}
	for i := len(effects) - 1; i >= 0; i-- {
		effects[i].Dispose()
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// adopt registers a root effect as owned by this scope. An effect adopted
// after disposal is disposed immediately.
func (s *Scope) adopt(e *Effect) {
	if s.disposed.Load() {
		e.Dispose()
		return
	}
	s.mu.Lock()
	s.effects = append(s.effects, e)
	s.mu.Unlock()
}

func (s *Scope) addChild(child *Scope) {
	s.mu.Lock()
	s.children = append(s.children, child)
	s.mu.Unlock()
}

func (s *Scope) removeChild(child *Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// MemoryUsage estimates the bytes held by this scope and its children:
// struct overhead, owned slices, and ambient values. The figure is a
// rough accounting aid, not an allocator measurement.
func (s *Scope) MemoryUsage() int64 {
	if s == nil {
		return 0
	}

	var size int64 = 128

	s.mu.Lock()
	children := append([]*Scope(nil), s.children...)
	effectCount := len(s.effects)
	cleanupCount := len(s.cleanups)
	values := make(map[any]any, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	s.mu.Unlock()

	size += estimateSliceMemory(effectCount, 8)
	size += estimateSliceMemory(cleanupCount, 8)
	size += estimateMapMemory(len(values), 16, 16)
	for k, v := range values {
		size += estimateValueMemory(k, 0)
		size += estimateValueMemory(v, 0)
	}

	size += estimateSliceMemory(len(children), 8)
	for _, child := range children {
		size += child.MemoryUsage()
	}
	return size
}

// setValue stores an ambient value on this scope.
func (s *Scope) setValue(key, value any) {
	s.mu.Lock()
	if s.values == nil {
		s.values = make(map[any]any)
	}
	s.values[key] = value
	s.mu.Unlock()
}

// lookup resolves an ambient value, walking up the parent chain.
func (s *Scope) lookup(key any) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		v, ok := cur.values[key]
		cur.mu.Unlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}
