// Package pixel defines the color and frame types shared by every frame codec,
// and the lossy color quantizers used by the quantized frame codecs.
//
// Channels are always ordered (R, G, B): in memory, in raw payloads, in
// palettes and in the quantized bit layouts.
package pixel

import (
	"image"
	"image/color"
	"slices"
)

// Color is an 8-bit-per-channel RGB triplet. It is comparable and usable as a map key.
type Color struct {
	R, G, B uint8
}

// RGB returns a Color from its three channels.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// RGBA implements color.Color with an opaque alpha channel.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8

	return r, g, b, 0xffff
}

// FromColor converts any color.Color, dropping alpha.
func FromColor(c color.Color) Color {
	n, _ := color.NRGBAModel.Convert(c).(color.NRGBA)

	return Color{R: n.R, G: n.G, B: n.B}
}

// Frame is a flat, row-major sequence of width×height colors.
type Frame []Color

// Clone returns a copy of f that shares no memory with it.
func (f Frame) Clone() Frame {
	if f == nil {
		return nil
	}

	return slices.Clone(f)
}

// Equal reports whether f and other hold the same colors in the same order.
func (f Frame) Equal(other Frame) bool {
	return slices.Equal(f, other)
}

// Bytes returns the frame as consecutive R, G, B bytes.
func (f Frame) Bytes() []byte {
	return f.AppendBytes(make([]byte, 0, len(f)*3))
}

// AppendBytes appends the frame as consecutive R, G, B bytes to dst.
func (f Frame) AppendBytes(dst []byte) []byte {
	for _, c := range f {
		dst = append(dst, c.R, c.G, c.B)
	}

	return dst
}

// FrameFromBytes builds a frame from consecutive R, G, B bytes.
// A trailing incomplete triplet is dropped.
func FrameFromBytes(b []byte) Frame {
	f := make(Frame, len(b)/3)
	for i := range f {
		f[i] = Color{R: b[i*3], G: b[i*3+1], B: b[i*3+2]}
	}

	return f
}

// DistinctColors returns the number of distinct colors in f, stopping once
// the count reaches limit. A limit <= 0 counts every color.
func (f Frame) DistinctColors(limit int) int {
	seen := make(map[Color]struct{}, min(len(f), 256))
	for _, c := range f {
		seen[c] = struct{}{}
		if limit > 0 && len(seen) >= limit {
			break
		}
	}

	return len(seen)
}

// FrameFromImage samples img row by row over its bounds.
func FrameFromImage(img image.Image) Frame {
	bounds := img.Bounds()
	f := make(Frame, 0, bounds.Dx()*bounds.Dy())
	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			off := nrgba.PixOffset(bounds.Min.X, y)
			for x := 0; x < bounds.Dx(); x++ {
				p := nrgba.Pix[off+x*4 : off+x*4+3 : off+x*4+3]
				f = append(f, Color{R: p[0], G: p[1], B: p[2]})
			}
		}

		return f
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			f = append(f, FromColor(img.At(x, y)))
		}
	}

	return f
}

// Image renders f as an NRGBA image of the given width and height.
// Pixels beyond len(f) stay transparent black.
func (f Frame) Image(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, c := range f {
		if i >= width*height {
			break
		}
		off := i * 4
		img.Pix[off] = c.R
		img.Pix[off+1] = c.G
		img.Pix[off+2] = c.B
		img.Pix[off+3] = 0xff
	}

	return img
}
