// Package quivertest provides testing helpers for code built on quiver.
//
// The quivertest package reduces boilerplate when testing reactive code
// by providing recording trackers, counting subscribers, and value
// recorders with assertion helpers.
//
// # Quick Start
//
//	func TestPricing(t *testing.T) {
//	    price := quiver.NewSignal(10.0)
//	    total := quiver.NewMemo(func() float64 { return price.Get() * 1.2 })
//
//	    rec := quivertest.Record[float64](total)
//	    defer rec.Stop()
//
//	    price.Set(20.0)
//	    quivertest.ExpectValues(t, rec, 12.0, 24.0)
//	}
//
// # Recording Trackers
//
// RecordTracker implements quiver.Tracker and counts notifications
// without standing up a real effect:
//
//	rt := quivertest.NewRecordTracker()
//	rt.Track(func() { _ = sig.Get() })
//	sig.Set(5)
//	quivertest.ExpectNotifies(t, rt, 1)
//
// An OrderLog hands out labeled trackers that share one log, making
// notification order visible:
//
//	log := quivertest.NewOrderLog()
//	log.Tracker("a").Track(func() { _ = sig.Get() })
//	log.Tracker("b").Track(func() { _ = sig.Get() })
//	sig.Set(5)
//	// log.Order() == []string{"a", "b"}
//
// # Counting Subscribers
//
// CountSubscriber captures Subscribe callback traffic:
//
//	cs := quivertest.NewCountSubscriber[int]()
//	defer sig.Subscribe(cs.Callback())()
//	sig.Set(7)
//	newV, oldV := cs.Last()
//
// # Value Recorders
//
// Record observes a signal or memo through an effect and logs every
// value it sees, starting with the current one. Stop disposes the
// underlying effect.
package quivertest
