package quiver

// ScopeValue is a typed ambient value resolved against the current scope
// chain. Provide binds a value on a scope; Get, called anywhere inside that
// scope's Run (or a child scope's), returns it. Child scopes shadow their
// parents; outside any providing scope Get returns the default.
//
//	var CurrentRegion = quiver.NewScopeValue("us-east-1")
//
//	CurrentRegion.Provide(scope, "eu-west-2")
//	scope.Run(func() {
//	    r := CurrentRegion.Get() // "eu-west-2"
//	})
type ScopeValue[T any] struct {
	def T
}

// NewScopeValue creates a scope value with the given default.
func NewScopeValue[T any](def T) *ScopeValue[T] {
	return &ScopeValue[T]{def: def}
}

// Provide binds value on the given scope.
// Panics with code E002 on a disposed scope.
func (v *ScopeValue[T]) Provide(s *Scope, value T) {
	if s.IsDisposed() {
		codedPanic(codeScopeDisposed, "Provide on a disposed scope")
	}
	s.setValue(v, value)
}

// Get resolves the value against the current ambient scope chain,
// innermost first. Returns the default when no scope provides one or no
// scope is ambient.
func (v *ScopeValue[T]) Get() T {
	ctx := getTrackingContext()
	if ctx.scope != nil {
		if raw, ok := ctx.scope.lookup(v); ok {
			return raw.(T)
		}
	}
	return v.def
}

// GetFrom resolves the value against an explicit scope chain instead of
// the ambient one.
func (v *ScopeValue[T]) GetFrom(s *Scope) T {
	if s != nil {
		if raw, ok := s.lookup(v); ok {
			return raw.(T)
		}
	}
	return v.def
}

// Default returns the value Get falls back to.
func (v *ScopeValue[T]) Default() T {
	return v.def
}
