package pool

import "sync"

// SlicePool recycles slices of T between calls.
type SlicePool[T any] struct {
	pool sync.Pool
}

// NewSlicePool creates an empty SlicePool.
func NewSlicePool[T any]() *SlicePool[T] {
	return &SlicePool[T]{
		pool: sync.Pool{
			New: func() any { return &[]T{} },
		},
	}
}

// Get retrieves a slice of exactly size elements from the pool.
//
// Element values are whatever the previous user left behind. The caller must
// call the returned cleanup function, typically with defer, to give the slice back.
//
// Example:
//
//	values, cleanup := uint16Slices.Get(width * height)
//	defer cleanup()
func (p *SlicePool[T]) Get(size int) ([]T, func()) {
	ptr, _ := p.pool.Get().(*[]T)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]T, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { p.pool.Put(ptr) }
}

// Packed value pools for the quantized frame codecs.
var (
	uint8Slices  = NewSlicePool[uint8]()
	uint16Slices = NewSlicePool[uint16]()
)

// GetUint8Slice retrieves a uint8 slice of exactly size elements.
func GetUint8Slice(size int) ([]uint8, func()) {
	return uint8Slices.Get(size)
}

// GetUint16Slice retrieves a uint16 slice of exactly size elements.
func GetUint16Slice(size int) ([]uint16, func()) {
	return uint16Slices.Get(size)
}
