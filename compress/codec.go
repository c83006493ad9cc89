package compress

import (
	"fmt"

	"github.com/arloliu/dum/errs"
	"github.com/arloliu/dum/format"
)

// Compressor compresses a whole DUM stream for storage or transfer.
type Compressor interface {
	// Compress compresses data and returns the compressed result.
	//
	// The returned slice is owned by the caller, except for the no-op codec
	// which returns data itself. data is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
type Decompressor interface {
	// Decompress decompresses data produced by the matching Compressor.
	//
	// sizeHint is the expected decompressed length, or 0 when unknown. Codecs
	// use it to allocate the output once, after checking it against the most
	// the codec can expand data to; an impossible hint is ErrDecompressedSize.
	Decompress(data []byte, sizeHint int) ([]byte, error)
}

// Codec combines both compression and decompression.
//
// Thread Safety: the built-in codecs are stateless values backed by pooled
// encoders and are safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec creates a Codec for the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: Invalid compression type error
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

// outputBuffer returns an empty slice with room for sizeHint bytes.
func outputBuffer(sizeHint int) []byte {
	if sizeHint <= 0 {
		return nil
	}

	return make([]byte, 0, sizeHint)
}

// checkExpansion rejects a decompressed size no input of compressedLen bytes
// can expand to, given at most maxRatio output bytes per input byte. The
// input is padded by a few bytes for the codec's fixed framing.
func checkExpansion(name string, decodedLen uint64, compressedLen int, maxRatio uint64) error {
	limit := (uint64(compressedLen) + 4) * maxRatio //nolint:gosec
	if decodedLen > limit {
		return fmt.Errorf("%w: %s data of %d bytes cannot expand to %d bytes",
			errs.ErrDecompressedSize, name, compressedLen, decodedLen)
	}

	return nil
}
