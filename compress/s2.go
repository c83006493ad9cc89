package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/dum/errs"
)

// s2MaxRatio bounds S2 block expansion: a 4-byte repeat code copies up to
// about 16.8 MB.
const s2MaxRatio = 1 << 23

// S2Compressor provides S2 block compression, a faster Snappy extension.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses data as a single S2 block using the better mode.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.EncodeBetter(nil, data), nil
}

// Decompress decompresses an S2 block. S2 blocks record their length, so
// sizeHint is only checked against it, and the recorded length is checked
// against what the block can expand to before the output is allocated.
func (c S2Compressor) Decompress(data []byte, sizeHint int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if sizeHint > 0 && n != sizeHint {
		return nil, fmt.Errorf("%w: s2 block holds %d bytes, expected %d", errs.ErrDecompressedSize, n, sizeHint)
	}
	if err := checkExpansion("s2", uint64(n), len(data), s2MaxRatio); err != nil { //nolint:gosec
		return nil, err
	}

	decompressed, err := s2.Decode(make([]byte, n), data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return decompressed, nil
}
