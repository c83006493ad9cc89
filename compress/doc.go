// Package compress provides whole-stream compression codecs for DUM archives.
//
// DUM frames are compressed individually by their frame codecs (palette,
// quantization, run-length). A finished stream still carries redundancy
// across frames, such as repeated palettes and similar raw rows, that a
// general-purpose compressor removes. The archive package wraps a stream in a
// small envelope and uses the codecs here for the body.
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): the stream is stored as is.
//   - Zstd (format.CompressionZstd): best ratio, moderate speed. Pure Go, from
//     github.com/klauspost/compress/zstd.
//   - S2 (format.CompressionS2): fast with a good ratio, from
//     github.com/klauspost/compress/s2.
//   - LZ4 (format.CompressionLZ4): fastest decompression, LZ4 block format
//     from github.com/pierrec/lz4/v4.
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	body, err := codec.Compress(stream)
//	...
//	stream, err = codec.Decompress(body, len(stream))
//
// Decompress takes the expected output length as a hint. LZ4 blocks do not
// record their uncompressed size, so without a hint the LZ4 codec grows its
// buffer until the block fits.
package compress
