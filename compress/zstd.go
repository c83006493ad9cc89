package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/arloliu/dum/errs"
)

// zstdMaxRatio bounds zstd expansion: a 4-byte RLE block (3-byte block
// header plus the repeated byte) expands to at most 128 KiB.
const zstdMaxRatio = 128 << 10 / 4

// zstdDecoderPool pools zstd decoders; klauspost/compress decoders run
// without allocations once warmed up.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
			zstd.WithEncoderCRC(true),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

// ZstdCompressor provides Zstandard compression, the best ratio of the
// built-in codecs. Frames are written with a CRC so a damaged archive fails
// to decompress instead of yielding a corrupt stream.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// Compress compresses data with a pooled encoder.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	return encoder.EncodeAll(data, nil), nil
}

// Decompress decompresses Zstd data with a pooled decoder.
//
// The frame content size recorded in the frame header must match sizeHint
// when both are known, and must be within what the data can expand to; the
// decoder sizes its output from it.
//
// Returns:
//   - []byte: Decompressed data (nil if input is empty)
//   - error: ErrDecompressedSize for a size mismatch or an impossible size, or a decompression error
func (c ZstdCompressor) Decompress(data []byte, sizeHint int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var header zstd.Header
	if err := header.Decode(data); err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	if header.HasFCS {
		if sizeHint > 0 && header.FrameContentSize != uint64(sizeHint) {
			return nil, fmt.Errorf("%w: zstd frame holds %d bytes, expected %d",
				errs.ErrDecompressedSize, header.FrameContentSize, sizeHint)
		}
		if err := checkExpansion("zstd", header.FrameContentSize, len(data), zstdMaxRatio); err != nil {
			return nil, err
		}
	}
	if sizeHint > 0 {
		if err := checkExpansion("zstd", uint64(sizeHint), len(data), zstdMaxRatio); err != nil {
			return nil, err
		}
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	decompressed, err := decoder.DecodeAll(data, outputBuffer(sizeHint))
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
