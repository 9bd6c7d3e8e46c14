// Package store provides a concurrency-safe registry of named reactive
// cells. Cells are created lazily on first use and shared by key, so
// independent packages can declare the same state without coordinating
// construction order. A Scoped definition resolves its cell against an
// ambient per-scope store, giving each scope its own namespace.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/quiver-dev/quiver"
)

// Sentinel errors returned by the Lookup functions.
var (
	ErrKeyNotFound  = errors.New("store: key not found")
	ErrKindMismatch = errors.New("store: key registered as a different cell kind")
	ErrTypeMismatch = errors.New("store: key registered with a different value type")
)

const (
	kindSignal = "signal"
	kindMemo   = "memo"
)

// Store holds named reactive cells.
type Store struct {
	cells sync.Map // map[string]*entry
}

// entry pairs a live cell with the type-erased accessors the registry
// needs for snapshots.
type entry struct {
	cell any
	kind string
	id   uint64
	peek func() any
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// defaultStore backs Default.
var defaultStore = New()

// Default returns the shared package-level store.
func Default() *Store {
	return defaultStore
}

// Signal returns the signal registered under key, creating it with
// initial on first use. Later calls ignore initial and return the same
// instance. Panics if key is already registered as a memo or with a
// different value type; use LookupSignal to get an error instead.
func Signal[T any](s *Store, key string, initial T) *quiver.Signal[T] {
	if raw, ok := s.cells.Load(key); ok {
		return signalFromEntry[T](key, raw.(*entry))
	}

	sig := quiver.NewSignal(initial).WithName(key)
	e := &entry{
		cell: sig,
		kind: kindSignal,
		id:   sig.ID(),
		peek: func() any { return sig.Peek() },
	}
	if prev, loaded := s.cells.LoadOrStore(key, e); loaded {
		return signalFromEntry[T](key, prev.(*entry))
	}
	return sig
}

// Memo returns the memo registered under key, creating it with compute
// on first use. Later calls ignore compute and return the same instance.
// Panics if key is already registered as a signal or with a different
// value type; use LookupMemo to get an error instead.
func Memo[T any](s *Store, key string, compute func() T) *quiver.Memo[T] {
	if raw, ok := s.cells.Load(key); ok {
		return memoFromEntry[T](key, raw.(*entry))
	}

	m := quiver.NewMemo(compute).WithName(key)
	e := &entry{
		cell: m,
		kind: kindMemo,
		id:   m.ID(),
		peek: func() any { return m.Peek() },
	}
	if prev, loaded := s.cells.LoadOrStore(key, e); loaded {
		return memoFromEntry[T](key, prev.(*entry))
	}
	return m
}

func signalFromEntry[T any](key string, e *entry) *quiver.Signal[T] {
	if e.kind != kindSignal {
		panic(fmt.Sprintf("store: key %q is registered as a %s", key, e.kind))
	}
	sig, ok := e.cell.(*quiver.Signal[T])
	if !ok {
		panic(fmt.Sprintf("store: key %q holds a %T", key, e.cell))
	}
	return sig
}

func memoFromEntry[T any](key string, e *entry) *quiver.Memo[T] {
	if e.kind != kindMemo {
		panic(fmt.Sprintf("store: key %q is registered as a %s", key, e.kind))
	}
	m, ok := e.cell.(*quiver.Memo[T])
	if !ok {
		panic(fmt.Sprintf("store: key %q holds a %T", key, e.cell))
	}
	return m
}

// LookupSignal returns the signal registered under key without creating
// one. The error wraps ErrKeyNotFound, ErrKindMismatch, or
// ErrTypeMismatch.
func LookupSignal[T any](s *Store, key string) (*quiver.Signal[T], error) {
	raw, ok := s.cells.Load(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	e := raw.(*entry)
	if e.kind != kindSignal {
		return nil, fmt.Errorf("%w: %q is a %s", ErrKindMismatch, key, e.kind)
	}
	sig, ok := e.cell.(*quiver.Signal[T])
	if !ok {
		return nil, fmt.Errorf("%w: %q holds a %T", ErrTypeMismatch, key, e.cell)
	}
	return sig, nil
}

// LookupMemo returns the memo registered under key without creating one.
// The error wraps ErrKeyNotFound, ErrKindMismatch, or ErrTypeMismatch.
func LookupMemo[T any](s *Store, key string) (*quiver.Memo[T], error) {
	raw, ok := s.cells.Load(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	e := raw.(*entry)
	if e.kind != kindMemo {
		return nil, fmt.Errorf("%w: %q is a %s", ErrKindMismatch, key, e.kind)
	}
	m, ok := e.cell.(*quiver.Memo[T])
	if !ok {
		return nil, fmt.Errorf("%w: %q holds a %T", ErrTypeMismatch, key, e.cell)
	}
	return m, nil
}

// Has reports whether key is registered.
func (s *Store) Has(key string) bool {
	_, ok := s.cells.Load(key)
	return ok
}

// Delete removes the cell registered under key. The cell itself stays
// valid for any holders; the next registration under key creates a fresh
// one.
func (s *Store) Delete(key string) {
	s.cells.Delete(key)
}

// Len returns the number of registered cells.
func (s *Store) Len() int {
	n := 0
	s.cells.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Keys returns the registered keys in sorted order.
func (s *Store) Keys() []string {
	var keys []string
	s.cells.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}

// Range calls fn for each registered cell until fn returns false. The
// cell is the live *quiver.Signal[T] or *quiver.Memo[T].
func (s *Store) Range(fn func(key string, cell any) bool) {
	s.cells.Range(func(k, v any) bool {
		return fn(k.(string), v.(*entry).cell)
	})
}

// CellInfo describes one registered cell in a snapshot.
// Kind is "signal" or "memo".
type CellInfo struct {
	Key   string `json:"key"`
	Kind  string `json:"kind"`
	ID    uint64 `json:"id"`
	Value any    `json:"value"`
}

// Snapshot returns the current value of every registered cell, sorted by
// key. Values are read without subscribing; dirty memos are evaluated.
func (s *Store) Snapshot() []CellInfo {
	var infos []CellInfo
	s.cells.Range(func(k, v any) bool {
		e := v.(*entry)
		infos = append(infos, CellInfo{
			Key:   k.(string),
			Kind:  e.kind,
			ID:    e.id,
			Value: e.peek(),
		})
		return true
	})
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

// Ambient carries the store Scoped definitions resolve against. Provide
// it on a scope to give that scope's Run (and its children) an isolated
// cell namespace.
var Ambient = quiver.NewScopeValue[*Store](nil)

// Scoped is a signal definition declared once at package level and
// resolved against the ambient store at access time. Two scopes with
// different ambient stores see independent cells under the same key.
type Scoped[T any] struct {
	key     string
	initial T
}

// NewScoped creates a scoped signal definition under key.
func NewScoped[T any](key string, initial T) *Scoped[T] {
	return &Scoped[T]{key: key, initial: initial}
}

// Key returns the definition's key.
func (d *Scoped[T]) Key() string {
	return d.key
}

// Get returns the value of the ambient store's cell, subscribing the
// active tracker. Without an ambient store it returns the initial value.
func (d *Scoped[T]) Get() T {
	st := Ambient.Get()
	if st == nil {
		return d.initial
	}
	return Signal(st, d.key, d.initial).Get()
}

// Peek returns the value without subscribing. Without an ambient store
// it returns the initial value.
func (d *Scoped[T]) Peek() T {
	st := Ambient.Get()
	if st == nil {
		return d.initial
	}
	return Signal(st, d.key, d.initial).Peek()
}

// Set writes the ambient store's cell. Without an ambient store it is a
// no-op.
func (d *Scoped[T]) Set(value T) {
	st := Ambient.Get()
	if st == nil {
		return
	}
	Signal(st, d.key, d.initial).Set(value)
}

// Update atomically transforms the ambient store's cell. Without an
// ambient store it is a no-op.
func (d *Scoped[T]) Update(fn func(T) T) {
	st := Ambient.Get()
	if st == nil {
		return
	}
	Signal(st, d.key, d.initial).Update(fn)
}
