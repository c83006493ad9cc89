package stream

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"math"

	"github.com/arloliu/dum/encoding"
	"github.com/arloliu/dum/errs"
	"github.com/arloliu/dum/format"
	"github.com/arloliu/dum/internal/options"
	"github.com/arloliu/dum/pixel"
	"github.com/arloliu/dum/section"
)

type decoderState uint8

const (
	decoderCreated decoderState = iota
	decoderHeaderRead
	decoderClosed
)

// Decoder reads a DUM stream from a seekable source.
//
// There is no frame index in the stream. Seeking walks the frame records from
// the current position, or from the first record when seeking backwards,
// reading only each record's tag and payload size.
//
// Note: The Decoder is NOT thread-safe. Each decoder instance should be used by a single goroutine at a time.
type Decoder struct {
	*DecoderConfig

	r      io.ReadSeeker
	state  decoderState
	header section.Header

	frameIndex int

	// last is the most recently decoded non-repeated frame, owned by the
	// Decoder. lastOffset is the record offset of the most recent
	// non-repeated frame passed, read or skipped, or -1. lastValid reports
	// whether last holds the decoding of the record at lastOffset.
	last       pixel.Frame
	lastOffset int64
	lastValid  bool
}

// NewDecoder creates a Decoder reading from r.
// ReadHeader must be called before any frame operation.
func NewDecoder(r io.ReadSeeker, opts ...DecoderOption) (*Decoder, error) {
	config := NewDecoderConfig()
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	return &Decoder{
		DecoderConfig: config,
		r:             r,
		lastOffset:    -1,
	}, nil
}

// ReadHeader parses the stream header. The source cursor must be at offset 0
// and ReadHeader may succeed only once.
//
// Returns:
//   - section.Header: Parsed header with HeaderSize and FileSize filled in
//   - error: ErrProtocolViolation, ErrInvalidMagic, ErrTruncatedRead or a source error
func (d *Decoder) ReadHeader() (section.Header, error) {
	if d.state != decoderCreated {
		return section.Header{}, fmt.Errorf("%w: header already read", errs.ErrProtocolViolation)
	}

	pos, err := d.tell()
	if err != nil {
		return section.Header{}, err
	}
	if pos != 0 {
		return section.Header{}, fmt.Errorf("%w: header must be read at offset 0, cursor at %d",
			errs.ErrProtocolViolation, pos)
	}

	fileSize, err := d.r.Seek(0, io.SeekEnd)
	if err != nil {
		return section.Header{}, fmt.Errorf("measure stream: %w", err)
	}
	if _, err := d.r.Seek(0, io.SeekStart); err != nil {
		return section.Header{}, fmt.Errorf("rewind stream: %w", err)
	}

	buf := make([]byte, section.HeaderSize)
	n, err := io.ReadFull(d.r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return section.Header{}, fmt.Errorf("read header: %w", err)
	}

	header, err := section.ParseHeader(buf[:n])
	if err != nil {
		return section.Header{}, err
	}
	header.FileSize = fileSize

	d.header = header
	d.state = decoderHeaderRead

	d.logger.Debug("read header",
		"width", header.Width, "height", header.Height,
		"frame_rate", header.FrameRate, "frame_count", header.FrameCount,
		"file_size", header.FileSize)

	return header, nil
}

// Info returns the parsed header.
func (d *Decoder) Info() (section.Header, error) {
	if d.state == decoderCreated {
		return section.Header{}, fmt.Errorf("%w: header not read", errs.ErrProtocolViolation)
	}

	return d.header, nil
}

// FrameIndex returns the index of the next frame ReadFrame or SkipFrame will visit.
func (d *Decoder) FrameIndex() int {
	return d.frameIndex
}

// ReadFrame decodes the next frame.
//
// A raw payload shorter than the frame is not an error: the partial frame is
// returned with Frame.Warning set.
//
// Returns:
//   - *Frame: Decoded frame, Pixels owned by the caller
//   - error: ErrProtocolViolation, ErrTruncatedRead, *errs.FrameTypeError,
//     ErrMalformedRun, ErrNoPreviousFrame, ErrInvalidPaletteIndex or ErrInvalidPayloadSize
func (d *Decoder) ReadFrame() (*Frame, error) {
	if err := d.checkReady(); err != nil {
		return nil, err
	}

	rec, offset, err := d.readRecordHeader()
	if err != nil {
		return nil, fmt.Errorf("read frame %d: %w", d.frameIndex, err)
	}

	var (
		frame   pixel.Frame
		warning error
	)
	switch rec.Type {
	case format.FrameRepeated:
		if rec.PayloadSize > 0 {
			if _, err = d.r.Seek(int64(rec.PayloadSize), io.SeekCurrent); err != nil {
				break
			}
		}
		frame, err = d.previousFrame()
	case format.FrameRaw, format.FrameColorMapped, format.FrameQuantized16, format.FrameQuantized8:
		frame, err = d.decodePayload(rec, offset)
		if errors.Is(err, errs.ErrShortPayload) {
			warning, err = err, nil
		}
		if err == nil {
			d.last = frame
			d.lastOffset = offset
			d.lastValid = true
		}
	default:
		err = &errs.FrameTypeError{Tag: uint8(rec.Type), Offset: offset}
	}
	if err != nil {
		return nil, fmt.Errorf("read frame %d: %w", d.frameIndex, err)
	}

	result := &Frame{
		Index:   d.frameIndex,
		Type:    rec.Type,
		Pixels:  frame.Clone(),
		Warning: warning,
	}
	d.frameIndex++

	if warning != nil {
		d.logger.Warn("partial frame", "index", result.Index, "type", rec.Type, "error", warning)
	}
	d.logger.Debug("read frame", "index", result.Index, "type", rec.Type,
		"payload_size", rec.PayloadSize, "frame_count", d.header.FrameCount)

	return result, nil
}

// SkipFrame moves past the next frame record without decoding its payload.
//
// Returns:
//   - format.FrameType: Tag of the skipped record
//   - uint32: Payload size of the skipped record
//   - error: ErrProtocolViolation, ErrTruncatedRead or *errs.FrameTypeError
func (d *Decoder) SkipFrame() (format.FrameType, uint32, error) {
	if err := d.checkReady(); err != nil {
		return 0, 0, err
	}

	rec, offset, err := d.readRecordHeader()
	if err != nil {
		return 0, 0, fmt.Errorf("skip frame %d: %w", d.frameIndex, err)
	}

	if _, err := d.r.Seek(int64(rec.PayloadSize), io.SeekCurrent); err != nil {
		return 0, 0, fmt.Errorf("skip frame %d: %w", d.frameIndex, err)
	}

	if rec.Type != format.FrameRepeated {
		d.lastOffset = offset
		d.lastValid = false
	}

	d.logger.Debug("skipped frame", "index", d.frameIndex, "type", rec.Type, "payload_size", rec.PayloadSize)
	d.frameIndex++

	return rec.Type, rec.PayloadSize, nil
}

// Seek positions the decoder at frame floor(FrameCount × progress).
//
// Parameters:
//   - progress: Position in the stream, 0 for the first frame, 1 for the end
//
// Returns:
//   - int: Index of the frame the next ReadFrame returns
//   - error: ErrInvalidProgress if progress is NaN or outside [0, 1], or a SeekFrame error
func (d *Decoder) Seek(progress float64) (int, error) {
	if err := d.checkReady(); err != nil {
		return d.frameIndex, err
	}

	if math.IsNaN(progress) || progress < 0 || progress > 1 {
		return d.frameIndex, fmt.Errorf("%w: %v", errs.ErrInvalidProgress, progress)
	}

	target := int(math.Floor(float64(d.header.FrameCount) * progress))

	return d.SeekFrame(target)
}

// SeekFrame positions the decoder at frame target.
//
// Seeking backwards rewinds to the first frame record and skips forward;
// seeking forwards skips the remaining frames. Both are linear in the number
// of records skipped.
//
// Returns:
//   - int: Index of the frame the next ReadFrame returns
//   - error: ErrFrameOutOfRange if target is outside [0, FrameCount], or a SkipFrame error
func (d *Decoder) SeekFrame(target int) (int, error) {
	if err := d.checkReady(); err != nil {
		return d.frameIndex, err
	}

	if target < 0 || target > int(d.header.FrameCount) {
		return d.frameIndex, fmt.Errorf("%w: %d not in [0, %d]", errs.ErrFrameOutOfRange, target, d.header.FrameCount)
	}

	from := d.frameIndex
	if target < d.frameIndex {
		d.logger.Info("seeking from beginning", "from", from, "to", target)
		if err := d.SeekToBeginning(); err != nil {
			return d.frameIndex, err
		}
	} else {
		d.logger.Info("seeking forward", "from", from, "to", target, "frames", target-from)
	}

	for d.frameIndex < target {
		if _, _, err := d.SkipFrame(); err != nil {
			return d.frameIndex, err
		}
	}

	return d.frameIndex, nil
}

// SeekToBeginning positions the decoder at the first frame record and forgets
// the previously decoded frame.
func (d *Decoder) SeekToBeginning() error {
	if err := d.checkReady(); err != nil {
		return err
	}

	if _, err := d.r.Seek(d.header.HeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("seek to first frame: %w", err)
	}

	d.frameIndex = 0
	d.last = nil
	d.lastOffset = -1
	d.lastValid = false

	return nil
}

// Frames returns an iterator over the frames from the current position to
// FrameCount. Iteration stops after the first error is yielded.
func (d *Decoder) Frames() iter.Seq2[*Frame, error] {
	return func(yield func(*Frame, error) bool) {
		if err := d.checkReady(); err != nil {
			yield(nil, err)
			return
		}

		for d.frameIndex < int(d.header.FrameCount) {
			frame, err := d.ReadFrame()
			if !yield(frame, err) || err != nil {
				return
			}
		}
	}
}

// Close ends the decoding session. It does not close the underlying source.
func (d *Decoder) Close() error {
	d.state = decoderClosed
	d.last = nil
	d.lastValid = false

	return nil
}

func (d *Decoder) checkReady() error {
	switch d.state {
	case decoderCreated:
		return fmt.Errorf("%w: header not read", errs.ErrProtocolViolation)
	case decoderClosed:
		return fmt.Errorf("%w: decoder closed", errs.ErrProtocolViolation)
	case decoderHeaderRead:
	}

	return nil
}

func (d *Decoder) tell() (int64, error) {
	pos, err := d.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("query stream position: %w", err)
	}

	return pos, nil
}

// readRecordHeader reads a record header and checks its tag. An unknown tag is
// reported even when the record header itself is cut short.
func (d *Decoder) readRecordHeader() (section.RecordHeader, int64, error) {
	offset, err := d.tell()
	if err != nil {
		return section.RecordHeader{}, 0, err
	}

	var buf [section.RecordHeaderSize]byte
	n, err := io.ReadFull(d.r, buf[:])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return section.RecordHeader{}, offset, fmt.Errorf("read record header: %w", err)
	}

	if n > 0 && !format.FrameType(buf[0]).IsValid() {
		return section.RecordHeader{}, offset, &errs.FrameTypeError{Tag: buf[0], Offset: offset}
	}

	rec, err := section.ParseRecordHeader(buf[:n])
	if err != nil {
		return section.RecordHeader{}, offset, err
	}

	return rec, offset, nil
}

// decodePayload reads and decodes the payload of the record at offset. For a
// short raw payload the partial frame is returned together with an error
// wrapping ErrShortPayload.
//
// The payload buffer never exceeds the bytes left in the stream, so a forged
// header or payload size cannot force a large allocation.
func (d *Decoder) decodePayload(rec section.RecordHeader, offset int64) (pixel.Frame, error) {
	codec, err := encoding.GetCodec(rec.Type)
	if err != nil {
		return nil, err
	}

	pixels := d.header.Pixels()
	limit := int64(codec.MaxPayloadSize(pixels))
	size := int64(rec.PayloadSize)
	if size > limit && rec.Type != format.FrameRaw {
		return nil, fmt.Errorf("%w: %s payload of %d bytes exceeds %d",
			errs.ErrInvalidPayloadSize, rec.Type, size, limit)
	}

	want := min(size, limit)
	available := max(d.header.FileSize-offset-section.RecordHeaderSize, 0)

	payload := make([]byte, min(want, available))
	n, err := io.ReadFull(d.r, payload)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}

	if int64(n) < want {
		if rec.Type != format.FrameRaw {
			return nil, fmt.Errorf("%w: %s payload has %d of %d bytes",
				errs.ErrTruncatedRead, rec.Type, n, size)
		}

		return codec.Decode(payload[:n], pixels)
	}

	if size > limit {
		if _, err := d.r.Seek(size-limit, io.SeekCurrent); err != nil {
			return nil, err
		}
	}

	return codec.Decode(payload, pixels)
}

// previousFrame returns the frame a repeated record stands for. After a seek
// the frame is re-decoded from the last non-repeated record skipped, and the
// cursor is restored to the record after the repeated one whether or not the
// re-decode succeeds.
func (d *Decoder) previousFrame() (frame pixel.Frame, err error) {
	if d.lastValid {
		return d.last, nil
	}

	if d.lastOffset < 0 {
		return nil, errs.ErrNoPreviousFrame
	}

	resume, err := d.tell()
	if err != nil {
		return nil, err
	}
	defer func() {
		if _, seekErr := d.r.Seek(resume, io.SeekStart); seekErr != nil && err == nil {
			frame, err = nil, fmt.Errorf("resume after repeated frame source: %w", seekErr)
		}
	}()

	if _, err := d.r.Seek(d.lastOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to repeated frame source: %w", err)
	}

	rec, offset, err := d.readRecordHeader()
	if err != nil {
		return nil, err
	}

	frame, err = d.decodePayload(rec, offset)
	if err != nil && !errors.Is(err, errs.ErrShortPayload) {
		return nil, err
	}

	d.last = frame
	d.lastValid = true

	return frame, nil
}
