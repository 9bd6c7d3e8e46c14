package quiver

import (
	"math"
	"reflect"
)

// defaultEquals provides type-appropriate equality checking.
// Scalars compare with identity semantics: a NaN equals itself, and
// positive and negative zero are distinct. Everything else falls back to
// reflect.DeepEqual.
//
// The float rules matter for change detection: NaN == NaN is false under
// Go's ==, which would make a NaN-valued signal notify on every write, and
// 0.0 == -0.0 is true, which would swallow a sign change.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case uintptr:
		return av == any(b).(uintptr)
	case float32:
		return floatEquals(float64(av), float64(any(b).(float32)))
	case float64:
		return floatEquals(av, any(b).(float64))
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		// Fall back to reflect.DeepEqual for slices, maps, structs, etc.
		return reflect.DeepEqual(a, b)
	}
}

// floatEquals compares floats with identity semantics (SameValue):
// NaN equals NaN, +0 and -0 differ, everything else uses ==.
func floatEquals(a, b float64) bool {
	if math.IsNaN(a) {
		return math.IsNaN(b)
	}
	if a == 0 && b == 0 {
		return math.Signbit(a) == math.Signbit(b)
	}
	return a == b
}
