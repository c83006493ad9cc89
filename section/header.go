package section

import (
	"fmt"

	"github.com/arloliu/dum/encoding"
	"github.com/arloliu/dum/errs"
)

// Header is the fixed-size header at the start of a DUM stream.
type Header struct {
	// FrameRate is the playback rate in frames per second.
	FrameRate uint8 // byte offset 4
	// Width is the frame width in pixels.
	Width uint16 // byte offset 5-6
	// Height is the frame height in pixels.
	Height uint16 // byte offset 7-8
	// HScale is the horizontal display scaling factor.
	HScale uint8 // byte offset 9
	// VScale is the vertical display scaling factor.
	VScale uint8 // byte offset 10
	// FrameCount is the number of frame records that follow the header.
	// It is not checked against the stream.
	FrameCount uint32 // byte offset 11-14

	// HeaderSize is the number of bytes consumed by the header, i.e. the
	// offset of the first frame record. Derived on parse, not serialized.
	HeaderSize int64
	// FileSize is the total length of the stream. Derived on parse, not serialized.
	FileSize int64
}

// NewHeader creates a Header for frames of width×height pixels.
func NewHeader(frameRate uint8, width, height uint16, hScale, vScale uint8, frameCount uint32) *Header {
	return &Header{
		FrameRate:  frameRate,
		Width:      width,
		Height:     height,
		HScale:     hScale,
		VScale:     vScale,
		FrameCount: frameCount,
		HeaderSize: HeaderSize,
	}
}

// Pixels returns the number of pixels in every frame.
func (h *Header) Pixels() int {
	return int(h.Width) * int(h.Height)
}

// Bytes serializes the header, magic included.
func (h *Header) Bytes() []byte {
	return h.Append(make([]byte, 0, HeaderSize))
}

// Append appends the serialized header to dst.
func (h *Header) Append(dst []byte) []byte {
	dst = append(dst, Magic...)
	dst = encoding.AppendUint(dst, uint32(h.FrameRate), 1)
	dst = encoding.AppendUint(dst, uint32(h.Width), 2)
	dst = encoding.AppendUint(dst, uint32(h.Height), 2)
	dst = encoding.AppendUint(dst, uint32(h.HScale), 1)
	dst = encoding.AppendUint(dst, uint32(h.VScale), 1)
	dst = encoding.AppendUint(dst, h.FrameCount, 4)

	return dst
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice starting at stream offset 0, at least HeaderSize bytes
//
// Returns:
//   - error: ErrInvalidMagic if the magic literal does not match,
//     ErrTruncatedRead if data is shorter than the header
func (h *Header) Parse(data []byte) error {
	if len(data) < MagicSize || string(data[:MagicSize]) != Magic {
		n := min(len(data), MagicSize)
		return fmt.Errorf("%w: expected %q, found %q", errs.ErrInvalidMagic, Magic, data[:n])
	}

	if len(data) < HeaderSize {
		return fmt.Errorf("%w: header has %d of %d bytes", errs.ErrTruncatedRead, len(data), HeaderSize)
	}

	fields := []struct {
		offset, width int
		set           func(v uint32)
	}{
		{FrameRateOffset, 1, func(v uint32) { h.FrameRate = uint8(v) }}, //nolint:gosec
		{WidthOffset, 2, func(v uint32) { h.Width = uint16(v) }},        //nolint:gosec
		{HeightOffset, 2, func(v uint32) { h.Height = uint16(v) }},      //nolint:gosec
		{HScaleOffset, 1, func(v uint32) { h.HScale = uint8(v) }},       //nolint:gosec
		{VScaleOffset, 1, func(v uint32) { h.VScale = uint8(v) }},       //nolint:gosec
		{FrameCountOffset, 4, func(v uint32) { h.FrameCount = v }},
	}
	for _, f := range fields {
		v, err := encoding.DecodeUint(data[f.offset : f.offset+f.width])
		if err != nil {
			return err
		}
		f.set(v)
	}

	h.HeaderSize = HeaderSize

	return nil
}

func (h *Header) String() string {
	return fmt.Sprintf("DUM %dx%d @ %d fps, scale %dx%d, %d frames, header %dB, file %dB",
		h.Width, h.Height, h.FrameRate, h.HScale, h.VScale, h.FrameCount, h.HeaderSize, h.FileSize)
}

// ParseHeader parses a Header from a byte slice.
//
// Returns:
//   - Header: Parsed header, FileSize left at zero
//   - error: ErrInvalidMagic or ErrTruncatedRead
func ParseHeader(data []byte) (Header, error) {
	h := Header{}
	if err := h.Parse(data); err != nil {
		return Header{}, err
	}

	return h, nil
}
