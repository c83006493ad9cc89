// Package dum reads and writes DUM files: a compact binary container for
// fixed-resolution pixel-color video.
//
// A DUM stream is a 15-byte header followed by self-describing frame records.
// Every frame is stored with the cheapest of five frame types:
//
//   - Repeated: the frame equals the previous one, no payload
//   - Color-mapped: fewer than 256 distinct colors, a palette and one index byte per pixel
//   - Quantized 8: 7-bit colors (3-2-2) with run-length encoding
//   - Quantized 16: 15-bit colors (5-5-5) with run-length encoding
//   - Raw: 3 bytes per pixel
//
// # Basic Usage
//
// Encoding frames:
//
//	import "github.com/arloliu/dum"
//
//	header := section.NewHeader(30, 20, 20, 32, 32, uint32(len(frames)))
//	data, _ := dum.Encode(*header, frames, stream.WithQuality(format.QualityMedium))
//
// Decoding frames:
//
//	dec, _ := dum.NewDecoder(bytes.NewReader(data))
//	for frame, err := range dec.Frames() {
//	    if err != nil {
//	        return err
//	    }
//	    show(frame.Pixels)
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the stream
// package. For seeking, skipping and per-frame control use stream.Encoder and
// stream.Decoder directly.
package dum

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/dum/internal/hash"
	"github.com/arloliu/dum/pixel"
	"github.com/arloliu/dum/section"
	"github.com/arloliu/dum/stream"
)

// NewEncoder creates a stream.Encoder writing to w and writes header.
//
// Parameters:
//   - w: Destination of the stream
//   - header: Stream header, FrameCount should match the number of frames written
//   - opts: Optional encoder options (quality, color mapping, repeat detection, logging)
//
// Returns:
//   - *stream.Encoder: Encoder ready for WriteFrame
//   - error: Option or header error
func NewEncoder(w io.Writer, header section.Header, opts ...stream.EncoderOption) (*stream.Encoder, error) {
	enc, err := stream.NewEncoder(w, opts...)
	if err != nil {
		return nil, err
	}

	if err := enc.WriteHeader(header); err != nil {
		return nil, err
	}

	return enc, nil
}

// NewDecoder creates a stream.Decoder reading from r and reads the header.
// r must be positioned at offset 0.
//
// Returns:
//   - *stream.Decoder: Decoder positioned at the first frame
//   - error: Option or header error
func NewDecoder(r io.ReadSeeker, opts ...stream.DecoderOption) (*stream.Decoder, error) {
	dec, err := stream.NewDecoder(r, opts...)
	if err != nil {
		return nil, err
	}

	if _, err := dec.ReadHeader(); err != nil {
		return nil, err
	}

	return dec, nil
}

// Encode encodes frames into an in-memory DUM stream.
//
// Returns:
//   - []byte: Complete stream
//   - error: Encoder error for the first frame that failed
func Encode(header section.Header, frames []pixel.Frame, opts ...stream.EncoderOption) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, header, opts...)
	if err != nil {
		return nil, err
	}

	for _, frame := range frames {
		if _, err := enc.WriteFrame(frame); err != nil {
			return nil, err
		}
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode decodes a complete in-memory DUM stream.
//
// Partial frames (raw payloads cut short) are returned as decoded; use
// stream.Decoder to inspect per-frame warnings.
//
// Returns:
//   - section.Header: Parsed header
//   - []pixel.Frame: All frames, FrameCount of them
//   - error: First decoding error
func Decode(data []byte, opts ...stream.DecoderOption) (section.Header, []pixel.Frame, error) {
	dec, err := NewDecoder(bytes.NewReader(data), opts...)
	if err != nil {
		return section.Header{}, nil, err
	}
	defer dec.Close()

	header, err := dec.Info()
	if err != nil {
		return section.Header{}, nil, err
	}

	frames := make([]pixel.Frame, 0, header.FrameCount)
	for frame, err := range dec.Frames() {
		if err != nil {
			return header, nil, err
		}
		frames = append(frames, frame.Pixels)
	}

	return header, frames, nil
}

// FrameDigest returns the xxHash64 fingerprint of a frame's packed RGB bytes.
func FrameDigest(frame pixel.Frame) uint64 {
	return hash.Frame(frame)
}

// FileEncoder is a stream.Encoder writing to a buffered file.
type FileEncoder struct {
	*stream.Encoder

	file *os.File
	bw   *bufio.Writer
}

// Create creates the file at path and writes header.
func Create(path string, header section.Header, opts ...stream.EncoderOption) (*FileEncoder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	bw := bufio.NewWriterSize(f, 256*1024)
	enc, err := NewEncoder(bw, header, opts...)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)

		return nil, err
	}

	return &FileEncoder{Encoder: enc, file: f, bw: bw}, nil
}

// Close ends the encoding session, flushes and closes the file.
func (e *FileEncoder) Close() error {
	errClose := e.Encoder.Close()
	errFlush := e.bw.Flush()
	errFile := e.file.Close()

	if err := errors.Join(errClose, errFlush, errFile); err != nil {
		return fmt.Errorf("close %s: %w", e.file.Name(), err)
	}

	return nil
}

// FileDecoder is a stream.Decoder reading from a file.
type FileDecoder struct {
	*stream.Decoder

	file *os.File
}

// Open opens the file at path and reads its header.
func Open(path string, opts ...stream.DecoderOption) (*FileDecoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec, err := NewDecoder(f, opts...)
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &FileDecoder{Decoder: dec, file: f}, nil
}

// Close ends the decoding session and closes the file.
func (d *FileDecoder) Close() error {
	_ = d.Decoder.Close()

	return d.file.Close()
}
