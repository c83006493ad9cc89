package encoding

import (
	"fmt"

	"github.com/arloliu/dum/errs"
	"github.com/arloliu/dum/format"
	"github.com/arloliu/dum/pixel"
)

// MaxPaletteSize is the largest palette a color-mapped payload can declare.
const MaxPaletteSize = 255

// ColorMappedCodec stores a palette of distinct colors followed by one palette
// index byte per pixel.
//
// Payload layout:
//   - 1 byte: palette size p (0-255)
//   - p*3 bytes: palette colors, R G B, in first-seen order
//   - n bytes: palette index of each pixel
type ColorMappedCodec struct{}

var _ FrameCodec = ColorMappedCodec{}

func (ColorMappedCodec) Type() format.FrameType {
	return format.FrameColorMapped
}

// Append fails with ErrTooManyColors when frame has more than MaxPaletteSize distinct colors.
func (ColorMappedCodec) Append(dst []byte, frame pixel.Frame) ([]byte, error) {
	palette, index, err := BuildPalette(frame)
	if err != nil {
		return dst, err
	}

	dst = append(dst, uint8(len(palette))) //nolint:gosec
	for _, c := range palette {
		dst = append(dst, c.R, c.G, c.B)
	}
	for _, c := range frame {
		dst = append(dst, index[c])
	}

	return dst, nil
}

func (ColorMappedCodec) MaxPayloadSize(pixels int) int {
	return 1 + MaxPaletteSize*3 + pixels
}

func (ColorMappedCodec) Decode(payload []byte, pixels int) (pixel.Frame, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("%w: missing palette size", errs.ErrTruncatedRead)
	}

	size := int(payload[0])
	paletteEnd := 1 + size*3
	if len(payload) < paletteEnd+pixels {
		return nil, fmt.Errorf("%w: color-mapped payload has %d of %d bytes",
			errs.ErrTruncatedRead, len(payload), paletteEnd+pixels)
	}

	palette := pixel.FrameFromBytes(payload[1:paletteEnd])
	frame := make(pixel.Frame, pixels)
	for i, idx := range payload[paletteEnd : paletteEnd+pixels] {
		if int(idx) >= size {
			return nil, fmt.Errorf("%w: pixel %d uses index %d of a %d-color palette",
				errs.ErrInvalidPaletteIndex, i, idx, size)
		}
		frame[i] = palette[idx]
	}

	return frame, nil
}

// BuildPalette returns the distinct colors of frame in first-seen order and
// the palette index of each of them.
//
// Returns:
//   - []pixel.Color: Palette, at most MaxPaletteSize colors
//   - map[pixel.Color]uint8: Color to palette index
//   - error: ErrTooManyColors if frame has more than MaxPaletteSize distinct colors
func BuildPalette(frame pixel.Frame) ([]pixel.Color, map[pixel.Color]uint8, error) {
	palette := make([]pixel.Color, 0, 16)
	index := make(map[pixel.Color]uint8, 16)
	for _, c := range frame {
		if _, ok := index[c]; ok {
			continue
		}
		if len(palette) == MaxPaletteSize {
			return nil, nil, fmt.Errorf("%w: more than %d distinct colors", errs.ErrTooManyColors, MaxPaletteSize)
		}
		index[c] = uint8(len(palette)) //nolint:gosec
		palette = append(palette, c)
	}

	return palette, index, nil
}
