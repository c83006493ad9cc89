// Package archive wraps a complete DUM stream in a compressed envelope.
//
// Envelope layout, all integers big-endian:
//
//	magic         4 bytes  "dumz"
//	compression   u8       format.CompressionType
//	size          u64      length of the DUM stream
//	body          ...      stream compressed with the codec from package compress
//
// An unpacked archive is a plain DUM stream and can be decoded with package stream.
package archive

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arloliu/dum/compress"
	"github.com/arloliu/dum/errs"
	"github.com/arloliu/dum/format"
	"github.com/arloliu/dum/section"
)

// Magic is the literal every archive starts with.
const Magic = "dumz"

const (
	// HeaderSize is the envelope size before the compressed body.
	HeaderSize = 13

	compressionOffset = 4
	sizeOffset        = 5

	// maxStreamSize bounds the recorded stream size accepted by Unpack.
	maxStreamSize = 1 << 32
)

// Stats describes one packed archive.
type Stats struct {
	// Compression is the codec used for the body.
	Compression format.CompressionType
	// StreamSize is the length of the DUM stream.
	StreamSize int64
	// ArchiveSize is the length of the archive, envelope included.
	ArchiveSize int64
}

// Ratio returns ArchiveSize / StreamSize, or 0 for an empty stream.
func (s Stats) Ratio() float64 {
	if s.StreamSize == 0 {
		return 0
	}

	return float64(s.ArchiveSize) / float64(s.StreamSize)
}

// SpaceSavings returns the space saved as a percentage of the stream size.
func (s Stats) SpaceSavings() float64 {
	return (1.0 - s.Ratio()) * 100.0
}

// Pack compresses the DUM stream src with compressionType and writes the archive to dst.
//
// Parameters:
//   - dst: Destination for the archive
//   - src: Complete DUM stream, header included
//   - compressionType: Codec for the body
//
// Returns:
//   - Stats: Sizes of the stream and the archive
//   - error: ErrInvalidArchive if src is not a DUM stream, a codec error, or the writer's error
func Pack(dst io.Writer, src []byte, compressionType format.CompressionType) (Stats, error) {
	if _, err := section.ParseHeader(src); err != nil {
		return Stats{}, fmt.Errorf("%w: source is not a DUM stream: %w", errs.ErrInvalidArchive, err)
	}

	codec, err := compress.CreateCodec(compressionType, "archive")
	if err != nil {
		return Stats{}, err
	}

	body, err := codec.Compress(src)
	if err != nil {
		return Stats{}, fmt.Errorf("compress stream: %w", err)
	}

	envelope := make([]byte, 0, HeaderSize)
	envelope = append(envelope, Magic...)
	envelope = append(envelope, byte(compressionType))
	envelope = binary.BigEndian.AppendUint64(envelope, uint64(len(src)))

	stats := Stats{Compression: compressionType, StreamSize: int64(len(src))}
	for _, part := range [][]byte{envelope, body} {
		n, err := dst.Write(part)
		stats.ArchiveSize += int64(n)
		if err != nil {
			return stats, fmt.Errorf("write archive: %w", err)
		}
	}

	return stats, nil
}

// Unpack decompresses an archive produced by Pack and returns the DUM stream.
// For format.CompressionNone the stream shares memory with src.
//
// Returns:
//   - []byte: DUM stream, header included
//   - format.CompressionType: Codec the body was compressed with
//   - error: ErrInvalidArchive for a bad envelope, a size mismatch or a body
//     that is not a DUM stream, or the codec's error
func Unpack(src []byte) ([]byte, format.CompressionType, error) {
	if len(src) < HeaderSize || string(src[:len(Magic)]) != Magic {
		return nil, 0, fmt.Errorf("%w: missing %q envelope", errs.ErrInvalidArchive, Magic)
	}

	compressionType := format.CompressionType(src[compressionOffset])
	size := binary.BigEndian.Uint64(src[sizeOffset:HeaderSize])
	if size > maxStreamSize {
		return nil, 0, fmt.Errorf("%w: recorded stream size %d too large", errs.ErrInvalidArchive, size)
	}

	codec, err := compress.GetCodec(compressionType)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", errs.ErrInvalidArchive, err)
	}

	stream, err := codec.Decompress(src[HeaderSize:], int(size))
	if err != nil {
		return nil, 0, fmt.Errorf("decompress %s archive: %w", compressionType, err)
	}

	if uint64(len(stream)) != size {
		return nil, 0, fmt.Errorf("%w: stream has %d bytes, envelope records %d",
			errs.ErrInvalidArchive, len(stream), size)
	}

	if _, err := section.ParseHeader(stream); err != nil {
		return nil, 0, fmt.Errorf("%w: body is not a DUM stream: %w", errs.ErrInvalidArchive, err)
	}

	return stream, compressionType, nil
}
