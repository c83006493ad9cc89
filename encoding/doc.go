// Package encoding implements the byte-level building blocks of the DUM format.
//
// It provides:
//   - Big-endian unsigned integer primitives (AppendUint, DecodeUint)
//   - A generic run-length codec over packed 8-bit and 16-bit values (RunLength)
//   - One FrameCodec per payload-carrying frame type (Raw, ColorMapped,
//     Quantized16, Quantized8)
//
// Frame codecs append to and decode from in-memory payloads. Framing a payload
// into a frame record (tag, payload size) and choosing a codec per frame is the
// job of the stream package.
//
// # Payload Formats
//
//	Raw          R G B per pixel, width*height*3 bytes
//	ColorMapped  palette size (1 byte), palette (R G B each), one index byte per pixel
//	Quantized8   packed 0RRRGGBB literals and 1nnnnnnn run markers, one byte each
//	Quantized16  packed 0RRRRRGGGGGBBBBB literals and 1nnnnnnnnnnnnnnn run markers, two bytes each
//
// A run marker repeats the most recent literal n more times.
package encoding
