// Package errs defines the sentinel errors returned by the dum packages.
//
// Callers should match them with errors.Is; most are wrapped with extra
// context (frame index, byte offset) by the package that returns them.
package errs

import (
	"errors"
	"fmt"
)

// Stream errors.
var (
	// ErrTruncatedRead is returned when a fixed-width field or payload runs past the end of the stream.
	ErrTruncatedRead = errors.New("truncated read")
	// ErrInvalidMagic is returned when the stream does not start with the DUM magic literal.
	ErrInvalidMagic = errors.New("invalid magic")
	// ErrProtocolViolation is returned when header and frame operations are called out of order.
	ErrProtocolViolation = errors.New("protocol violation")
	// ErrUnknownFrameType is returned when a frame record tag is outside the known frame types.
	ErrUnknownFrameType = errors.New("unknown frame type")
	// ErrMalformedRun is returned when a run marker appears before any literal, or overruns the frame.
	ErrMalformedRun = errors.New("malformed run")
	// ErrNoPreviousFrame is returned when a repeated frame has nothing to repeat.
	ErrNoPreviousFrame = errors.New("no previous frame")
	// ErrShortPayload reports a raw payload shorter than the frame; it is a warning, not a failure.
	ErrShortPayload = errors.New("short payload")
	// ErrInvalidPaletteIndex is returned when a color-mapped pixel indexes past the palette.
	ErrInvalidPaletteIndex = errors.New("invalid palette index")
	// ErrInvalidPayloadSize is returned when a frame record declares a payload larger than its frame type allows.
	ErrInvalidPayloadSize = errors.New("invalid payload size")
	// ErrInvalidProgress is returned when a seek progress is outside [0, 1].
	ErrInvalidProgress = errors.New("invalid seek progress")
	// ErrFrameOutOfRange is returned when a seek targets a frame index outside [0, frame count].
	ErrFrameOutOfRange = errors.New("frame index out of range")
)

// Encoder errors.
var (
	// ErrUnsupportedQuality is returned for a quality level outside the known levels.
	ErrUnsupportedQuality = errors.New("unsupported quality")
	// ErrPixelCountMismatch is returned when a frame does not hold exactly width×height pixels.
	ErrPixelCountMismatch = errors.New("pixel count mismatch")
	// ErrTooManyColors is returned when a color-mapped payload is requested for more than 255 colors.
	ErrTooManyColors = errors.New("too many colors for palette")
	// ErrInvalidResolution is returned when width or height is zero.
	ErrInvalidResolution = errors.New("invalid resolution")
)

// Archive errors.
var (
	// ErrInvalidArchive is returned when an archive envelope is malformed.
	ErrInvalidArchive = errors.New("invalid archive")
	// ErrDecompressedSize is returned when a recorded decompressed size cannot
	// come from the compressed data, or disagrees with the size the codec finds.
	ErrDecompressedSize = errors.New("invalid decompressed size")
)

// FrameTypeError reports an unrecognized frame record tag and where it was read.
type FrameTypeError struct {
	Tag    uint8
	Offset int64
}

func (e *FrameTypeError) Error() string {
	return fmt.Sprintf("%s: tag %d at offset %d", ErrUnknownFrameType, e.Tag, e.Offset)
}

func (e *FrameTypeError) Unwrap() error {
	return ErrUnknownFrameType
}
