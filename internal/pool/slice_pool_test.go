package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlicePool_Get(t *testing.T) {
	p := NewSlicePool[uint16]()

	s, cleanup := p.Get(100)
	require.Len(t, s, 100)
	cleanup()

	s, cleanup = p.Get(10)
	require.Len(t, s, 10)
	cleanup()

	s, cleanup = p.Get(1000)
	require.Len(t, s, 1000)
	require.GreaterOrEqual(t, cap(s), 1000)
	cleanup()
}

func TestPackedSlices(t *testing.T) {
	b, cleanupB := GetUint8Slice(7)
	defer cleanupB()
	require.Len(t, b, 7)

	w, cleanupW := GetUint16Slice(3)
	defer cleanupW()
	require.Len(t, w, 3)
}
