package quiver

// SliceSignal wraps Signal[[]T] with convenience methods for slice
// operations. Mutating methods build a fresh slice rather than writing
// through the old backing array, so subscribers comparing old and new
// values see the state from before the write.
type SliceSignal[T any] struct {
	*Signal[[]T]
}

// NewSliceSignal creates a new SliceSignal with the given initial value.
// A nil initial becomes an empty slice.
func NewSliceSignal[T any](initial []T) *SliceSignal[T] {
	if initial == nil {
		initial = []T{}
	}
	return &SliceSignal[T]{NewSignal(initial)}
}

// Append adds an item to the end of the slice.
func (s *SliceSignal[T]) Append(item T) {
	s.Update(func(items []T) []T {
		result := make([]T, 0, len(items)+1)
		result = append(result, items...)
		return append(result, item)
	})
}

// AppendAll adds multiple items to the end of the slice.
func (s *SliceSignal[T]) AppendAll(items ...T) {
	s.Update(func(current []T) []T {
		result := make([]T, 0, len(current)+len(items))
		result = append(result, current...)
		return append(result, items...)
	})
}

// Prepend adds an item to the beginning of the slice.
func (s *SliceSignal[T]) Prepend(item T) {
	s.Update(func(items []T) []T {
		result := make([]T, 0, len(items)+1)
		result = append(result, item)
		return append(result, items...)
	})
}

// InsertAt inserts an item at the given index. An index past either end
// is clamped.
func (s *SliceSignal[T]) InsertAt(index int, item T) {
	s.Update(func(items []T) []T {
		if index < 0 {
			index = 0
		}
		if index > len(items) {
			index = len(items)
		}
		result := make([]T, 0, len(items)+1)
		result = append(result, items[:index]...)
		result = append(result, item)
		return append(result, items[index:]...)
	})
}

// RemoveAt removes the item at the given index.
// Does nothing if index is out of bounds.
func (s *SliceSignal[T]) RemoveAt(index int) {
	s.Update(func(items []T) []T {
		if index < 0 || index >= len(items) {
			return items
		}
		result := make([]T, 0, len(items)-1)
		result = append(result, items[:index]...)
		return append(result, items[index+1:]...)
	})
}

// RemoveFirst removes the first item from the slice.
// Does nothing if the slice is empty.
func (s *SliceSignal[T]) RemoveFirst() {
	s.Update(func(items []T) []T {
		if len(items) == 0 {
			return items
		}
		return items[1:]
	})
}

// RemoveLast removes the last item from the slice.
// Does nothing if the slice is empty.
func (s *SliceSignal[T]) RemoveLast() {
	s.Update(func(items []T) []T {
		if len(items) == 0 {
			return items
		}
		return items[:len(items)-1]
	})
}

// RemoveWhere removes all items that satisfy the predicate.
func (s *SliceSignal[T]) RemoveWhere(predicate func(T) bool) {
	s.Update(func(items []T) []T {
		result := make([]T, 0, len(items))
		for _, item := range items {
			if !predicate(item) {
				result = append(result, item)
			}
		}
		return result
	})
}

// SetAt sets the item at the given index.
// Does nothing if index is out of bounds.
func (s *SliceSignal[T]) SetAt(index int, item T) {
	s.Update(func(items []T) []T {
		if index < 0 || index >= len(items) {
			return items
		}
		result := make([]T, len(items))
		copy(result, items)
		result[index] = item
		return result
	})
}

// UpdateAt updates the item at the given index using the provided function.
// Does nothing if index is out of bounds.
func (s *SliceSignal[T]) UpdateAt(index int, fn func(T) T) {
	s.Update(func(items []T) []T {
		if index < 0 || index >= len(items) {
			return items
		}
		result := make([]T, len(items))
		copy(result, items)
		result[index] = fn(result[index])
		return result
	})
}

// UpdateWhere updates all items that satisfy the predicate using the
// provided function.
func (s *SliceSignal[T]) UpdateWhere(predicate func(T) bool, fn func(T) T) {
	s.Update(func(items []T) []T {
		result := make([]T, len(items))
		copy(result, items)
		for i, item := range result {
			if predicate(item) {
				result[i] = fn(item)
			}
		}
		return result
	})
}

// Filter keeps only items that satisfy the predicate.
func (s *SliceSignal[T]) Filter(predicate func(T) bool) {
	s.Update(func(items []T) []T {
		result := make([]T, 0, len(items))
		for _, item := range items {
			if predicate(item) {
				result = append(result, item)
			}
		}
		return result
	})
}

// Clear removes all items from the slice.
func (s *SliceSignal[T]) Clear() {
	s.Set([]T{})
}

// Len returns the length of the slice.
// This reads the signal and creates a dependency.
func (s *SliceSignal[T]) Len() int {
	return len(s.Get())
}
