package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances; each keeps a hash table
// that is expensive to allocate.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

const (
	// maxLZ4Output bounds the buffer grown by Decompress when no size hint is given.
	maxLZ4Output = 1 << 30

	// lz4MaxRatio is the LZ4 block expansion limit: every extra match length
	// byte adds at most 255 output bytes.
	lz4MaxRatio = 255
)

// LZ4Compressor provides LZ4 block compression.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses data as a single LZ4 block.
//
// Returns:
//   - []byte: Compressed data (nil if input is empty)
//   - error: Compression error if any
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decompresses an LZ4 block.
//
// With a sizeHint the output buffer is allocated once, provided the hint is
// within 255x the compressed size. Without one the buffer starts at 4x the
// compressed size and doubles on ErrInvalidSourceShortBuffer, up to the same
// limit or 1 GiB.
//
// Returns:
//   - []byte: Decompressed data (nil if input is empty)
//   - error: ErrDecompressedSize for an impossible hint, lz4.ErrInvalidSourceShortBuffer
//     if the output does not fit, or other decompression errors
func (c LZ4Compressor) Decompress(data []byte, sizeHint int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	if sizeHint > 0 {
		if err := checkExpansion("lz4", uint64(sizeHint), len(data), lz4MaxRatio); err != nil {
			return nil, err
		}

		buf := make([]byte, sizeHint)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			return nil, err
		}

		return buf[:n], nil
	}

	maxOutput := min((len(data)+4)*lz4MaxRatio, maxLZ4Output)
	for bufSize := min(len(data)*4, maxOutput); ; bufSize = min(bufSize*2, maxOutput) {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}

		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) || bufSize == maxOutput {
			return nil, err
		}
	}
}
