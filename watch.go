package quiver

import "log"

// Readable is the read surface shared by Signal[T] and Memo[T].
type Readable[T any] interface {
	// Get returns the value and subscribes the active tracker.
	Get() T
	// Peek returns the value without subscribing.
	Peek() T
}

// Watch creates an effect that calls fn with the source's value now and
// after every change. Returns the effect for disposal.
//
//	quiver.Watch(temperature, func(c float64) { gauge.Store(c) })
func Watch[T any](source Readable[T], fn func(value T)) *Effect {
	return NewEffect(func() Cleanup {
		fn(source.Get())
		return nil
	})
}

// OnChange is Watch minus the initial call: fn fires only when the value
// changes after creation.
func OnChange[T any](source Readable[T], fn func(value T)) *Effect {
	first := true
	return NewEffect(func() Cleanup {
		v := source.Get()
		if first {
			first = false
			return nil
		}
		fn(v)
		return nil
	})
}

// OnCleanup registers fn to run before the next re-run of the effect whose
// body is currently executing, and at its disposal. Outside an effect body
// it registers on the ambient scope instead. With neither present the
// cleanup would never run: DevMode panics with code E005, production drops
// the registration.
func OnCleanup(fn func()) {
	ctx := getTrackingContext()
	if ctx.effect != nil {
		ctx.effect.AddCleanup(fn)
		return
	}
	if ctx.scope != nil {
		ctx.scope.OnCleanup(fn)
		return
	}
	if DevMode {
		codedPanic(codeOrphanCleanup, "OnCleanup outside any effect or scope")
	}
	if DebugMode {
		log.Printf("[quiver] OnCleanup outside any effect or scope; dropped")
	}
}
