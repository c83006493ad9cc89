package stream

import (
	"github.com/arloliu/dum/format"
	"github.com/arloliu/dum/pixel"
)

// Frame is one decoded frame.
type Frame struct {
	// Index is the zero-based position of the frame in the stream.
	Index int
	// Type is the frame type of the record the frame was read from.
	Type format.FrameType
	// Pixels holds width×height colors in row-major order, or fewer when
	// Warning is set. The slice is owned by the caller.
	Pixels pixel.Frame
	// Warning is non-nil for a usable but incomplete frame; it wraps
	// errs.ErrShortPayload when a raw payload ended early.
	Warning error
}

// Partial reports whether the frame holds fewer pixels than the stream resolution.
func (f *Frame) Partial() bool {
	return f.Warning != nil
}
