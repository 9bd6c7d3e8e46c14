package quiver

// MapSignal wraps Signal[map[K]V] with convenience methods for map
// operations. Mutating methods build a fresh map, never writing through
// the stored one.
type MapSignal[K comparable, V any] struct {
	*Signal[map[K]V]
}

// NewMapSignal creates a new MapSignal with the given initial value.
// A nil initial becomes an empty map.
func NewMapSignal[K comparable, V any](initial map[K]V) *MapSignal[K, V] {
	if initial == nil {
		initial = make(map[K]V)
	}
	return &MapSignal[K, V]{NewSignal(initial)}
}

// SetKey sets a key-value pair in the map.
func (s *MapSignal[K, V]) SetKey(key K, value V) {
	s.Update(func(m map[K]V) map[K]V {
		result := make(map[K]V, len(m)+1)
		for k, v := range m {
			result[k] = v
		}
		result[key] = value
		return result
	})
}

// RemoveKey removes a key from the map.
// Does nothing if the key is absent.
func (s *MapSignal[K, V]) RemoveKey(key K) {
	s.Update(func(m map[K]V) map[K]V {
		if _, ok := m[key]; !ok {
			return m
		}
		result := make(map[K]V, len(m))
		for k, v := range m {
			if k != key {
				result[k] = v
			}
		}
		return result
	})
}

// UpdateKey updates the value for a key using the provided function.
// Does nothing if the key is absent.
func (s *MapSignal[K, V]) UpdateKey(key K, fn func(V) V) {
	s.Update(func(m map[K]V) map[K]V {
		old, ok := m[key]
		if !ok {
			return m
		}
		result := make(map[K]V, len(m))
		for k, v := range m {
			result[k] = v
		}
		result[key] = fn(old)
		return result
	})
}

// GetKey returns the value for a key.
// This reads the signal and creates a dependency.
func (s *MapSignal[K, V]) GetKey(key K) (V, bool) {
	v, ok := s.Get()[key]
	return v, ok
}

// HasKey returns true if the key exists in the map.
// This reads the signal and creates a dependency.
func (s *MapSignal[K, V]) HasKey(key K) bool {
	_, ok := s.GetKey(key)
	return ok
}

// Keys returns all keys in the map, in map iteration order.
// This reads the signal and creates a dependency.
func (s *MapSignal[K, V]) Keys() []K {
	m := s.Get()
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of keys in the map.
// This reads the signal and creates a dependency.
func (s *MapSignal[K, V]) Len() int {
	return len(s.Get())
}

// Clear removes all keys from the map.
func (s *MapSignal[K, V]) Clear() {
	s.Set(make(map[K]V))
}
