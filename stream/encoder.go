package stream

import (
	"fmt"
	"io"
	"maps"
	"math"

	"github.com/arloliu/dum/encoding"
	"github.com/arloliu/dum/errs"
	"github.com/arloliu/dum/format"
	"github.com/arloliu/dum/internal/hash"
	"github.com/arloliu/dum/internal/options"
	"github.com/arloliu/dum/internal/pool"
	"github.com/arloliu/dum/pixel"
	"github.com/arloliu/dum/section"
)

type encoderState uint8

const (
	encoderCreated encoderState = iota
	encoderHeaderWritten
	encoderClosed
)

// Stats summarizes what an Encoder has written so far.
type Stats struct {
	// Frames is the number of frame records written.
	Frames uint32
	// Bytes is the number of bytes written, header included.
	Bytes int64
	// ByType counts frame records per frame type.
	ByType map[format.FrameType]uint32
}

// Encoder writes a DUM stream: one header followed by frame records.
//
// For every frame the Encoder picks a frame type: a repeated frame when the
// pixels equal the previous frame, a color-mapped frame when the frame has
// fewer than 256 distinct colors, otherwise the frame type of the configured
// quality.
//
// Note: The Encoder is NOT thread-safe. Each encoder instance should be used by a single goroutine at a time.
type Encoder struct {
	*EncoderConfig

	w      io.Writer
	state  encoderState
	header section.Header

	// prev is an owned copy of the last frame written, never aliased with caller buffers.
	prev     pixel.Frame
	prevHash uint64

	stats Stats
}

// NewEncoder creates an Encoder writing to w.
//
// Returns:
//   - *Encoder: New encoder, WriteHeader must be called before any frame
//   - error: ErrUnsupportedQuality or other option errors
func NewEncoder(w io.Writer, opts ...EncoderOption) (*Encoder, error) {
	config := NewEncoderConfig()
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	return &Encoder{
		EncoderConfig: config,
		w:             w,
		stats:         Stats{ByType: make(map[format.FrameType]uint32, 5)},
	}, nil
}

// WriteHeader writes the stream header. It must be called exactly once, before any frame.
//
// Returns:
//   - error: ErrProtocolViolation if called twice or after Close,
//     ErrInvalidResolution if width or height is zero, or the writer's error
func (e *Encoder) WriteHeader(header section.Header) error {
	if e.state != encoderCreated {
		return fmt.Errorf("%w: header already written", errs.ErrProtocolViolation)
	}

	if header.Width == 0 || header.Height == 0 {
		return fmt.Errorf("%w: %dx%d", errs.ErrInvalidResolution, header.Width, header.Height)
	}

	n, err := e.w.Write(header.Bytes())
	e.stats.Bytes += int64(n)
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	header.HeaderSize = section.HeaderSize
	e.header = header
	e.state = encoderHeaderWritten

	e.logger.Debug("wrote header",
		"width", header.Width, "height", header.Height,
		"frame_rate", header.FrameRate, "frame_count", header.FrameCount)

	return nil
}

// Header returns the header written by WriteHeader.
func (e *Encoder) Header() section.Header {
	return e.header
}

// WriteFrame encodes one frame of exactly width×height pixels and writes it
// as a single frame record.
//
// The Encoder keeps its own copy of frame; the caller may reuse the slice
// once WriteFrame returns.
//
// Returns:
//   - format.FrameType: Frame type of the written record
//   - error: ErrProtocolViolation before WriteHeader or after Close,
//     ErrPixelCountMismatch, ErrUnsupportedQuality, or the writer's error
func (e *Encoder) WriteFrame(frame pixel.Frame) (format.FrameType, error) {
	switch e.state {
	case encoderCreated:
		return 0, fmt.Errorf("%w: frame written before header", errs.ErrProtocolViolation)
	case encoderClosed:
		return 0, fmt.Errorf("%w: encoder closed", errs.ErrProtocolViolation)
	case encoderHeaderWritten:
	}

	if len(frame) != e.header.Pixels() {
		return 0, fmt.Errorf("%w: got %d pixels, want %dx%d=%d",
			errs.ErrPixelCountMismatch, len(frame), e.header.Width, e.header.Height, e.header.Pixels())
	}

	var frameHash uint64
	if e.repeatDetection {
		frameHash = hash.Frame(frame)
		if e.prev != nil && frameHash == e.prevHash && frame.Equal(e.prev) {
			return format.FrameRepeated, e.writeRecord(format.FrameRepeated, 0, nil)
		}
	}

	frameType, err := e.selectFrameType(frame)
	if err != nil {
		return 0, err
	}

	codec, err := encoding.GetCodec(frameType)
	if err != nil {
		return 0, err
	}

	if err := e.writeRecord(frameType, codec.MaxPayloadSize(len(frame)), func(dst []byte) ([]byte, error) {
		return codec.Append(dst, frame)
	}); err != nil {
		return 0, err
	}

	if e.repeatDetection {
		e.prev = append(e.prev[:0], frame...)
		e.prevHash = frameHash
	}

	return frameType, nil
}

func (e *Encoder) selectFrameType(frame pixel.Frame) (format.FrameType, error) {
	if e.colorMapping && frame.DistinctColors(encoding.MaxPaletteSize+1) <= encoding.MaxPaletteSize {
		return format.FrameColorMapped, nil
	}

	if !e.quality.IsValid() {
		return 0, fmt.Errorf("%w: %d", errs.ErrUnsupportedQuality, uint8(e.quality))
	}

	return e.quality.FrameType(), nil
}

// writeRecord builds the record in a pooled buffer: the size field is reserved,
// the payload appended, then the size backfilled, and the record written at once.
// maxPayload is the largest payload appendPayload may produce.
func (e *Encoder) writeRecord(frameType format.FrameType, maxPayload int, appendPayload func([]byte) ([]byte, error)) error {
	buf := pool.GetFrameBuffer()
	defer pool.PutFrameBuffer(buf)

	buf.Grow(section.RecordHeaderSize + maxPayload)

	buf.B = section.RecordHeader{Type: frameType}.Append(buf.B)
	if appendPayload != nil {
		var err error
		buf.B, err = appendPayload(buf.B)
		if err != nil {
			return fmt.Errorf("encode %s frame %d: %w", frameType, e.stats.Frames, err)
		}
	}

	payloadSize := buf.Len() - section.RecordHeaderSize
	rec, err := recordHeader(frameType, payloadSize)
	if err != nil {
		return fmt.Errorf("encode %s frame %d: %w", frameType, e.stats.Frames, err)
	}
	copy(buf.Bytes(), rec.Bytes())

	n, err := buf.WriteTo(e.w)
	e.stats.Bytes += n
	if err != nil {
		return fmt.Errorf("write %s frame %d: %w", frameType, e.stats.Frames, err)
	}

	e.logger.Debug("wrote frame", "index", e.stats.Frames, "type", frameType, "payload_size", payloadSize)

	e.stats.Frames++
	e.stats.ByType[frameType]++

	return nil
}

// Stats returns a snapshot of the frames and bytes written so far.
func (e *Encoder) Stats() Stats {
	s := e.stats
	s.ByType = maps.Clone(e.stats.ByType)

	return s
}

// Close ends the encoding session. It does not close the underlying writer.
//
// Writing a different number of frames than the header's FrameCount is logged
// as a warning; the header is not rewritten.
func (e *Encoder) Close() error {
	if e.state == encoderClosed {
		return nil
	}

	if e.state == encoderHeaderWritten && e.stats.Frames != e.header.FrameCount {
		e.logger.Warn("frame count mismatch",
			"declared", e.header.FrameCount, "written", e.stats.Frames)
	}

	e.state = encoderClosed
	e.prev = nil

	return nil
}

// recordHeader returns the record header for a payload of payloadSize bytes.
// The size field is 32 bits wide; larger payloads cannot be framed.
func recordHeader(frameType format.FrameType, payloadSize int) (section.RecordHeader, error) {
	if payloadSize < 0 || uint64(payloadSize) > math.MaxUint32 {
		return section.RecordHeader{}, fmt.Errorf("%w: %s payload of %d bytes does not fit a record",
			errs.ErrInvalidPayloadSize, frameType, payloadSize)
	}

	return section.RecordHeader{Type: frameType, PayloadSize: uint32(payloadSize)}, nil
}
