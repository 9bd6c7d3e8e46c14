package quiver

import "reflect"

// Estimation helpers for Scope.MemoryUsage. Sizes are approximations of
// Go runtime layouts, bounded in depth so cyclic or very deep values do
// not recurse forever.

const estimateMaxDepth = 4

func estimateSliceMemory(length, elementSize int) int64 {
	return 24 + int64(length*elementSize)
}

func estimateMapMemory(length, keySize, valueSize int) int64 {
	buckets := (length / 8) + 1
	bucketOverhead := int64(buckets * 8)
	entrySize := int64(keySize + valueSize + 8)
	return 48 + bucketOverhead + int64(length)*entrySize
}

func estimateValueMemory(value any, depth int) int64 {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return 0
	}
	if depth >= estimateMaxDepth {
		return 16
	}

	switch v.Kind() {
	case reflect.String:
		return 16 + int64(len(v.String()))
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return 8
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return 0
		}
		return 8 + estimateValueMemory(v.Elem().Interface(), depth+1)
	case reflect.Slice:
		if v.IsNil() {
			return 0
		}
		size := estimateSliceMemory(v.Len(), 16)
		for i := 0; i < v.Len(); i++ {
			size += estimateValueMemory(v.Index(i).Interface(), depth+1)
		}
		return size
	case reflect.Map:
		if v.IsNil() {
			return 0
		}
		size := estimateMapMemory(v.Len(), 16, 16)
		iter := v.MapRange()
		for iter.Next() {
			size += estimateValueMemory(iter.Key().Interface(), depth+1)
			size += estimateValueMemory(iter.Value().Interface(), depth+1)
		}
		return size
	case reflect.Struct:
		size := int64(16)
		for i := 0; i < v.NumField(); i++ {
			f := v.Field(i)
			if f.CanInterface() {
				size += estimateValueMemory(f.Interface(), depth+1)
			} else {
				size += 8
			}
		}
		return size
	default:
		return 16
	}
}
