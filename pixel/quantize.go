package pixel

// Bit layouts of the packed colors. The most significant bit of each packed
// width is never set by a quantizer; the run-length codec uses it as a flag.
const (
	// Quantized7Mask covers the 7 color bits of a packed 7-bit color: 0RRRGGBB.
	Quantized7Mask uint8 = 0x7f
	// Quantized15Mask covers the 15 color bits of a packed 15-bit color: 0RRRRRGGGGGBBBBB.
	Quantized15Mask uint16 = 0x7fff
)

// Quantize7 keeps the top 3 bits of red and the top 2 bits of green and blue.
func Quantize7(c Color) uint8 {
	return (c.R>>5)<<4 | (c.G>>6)<<2 | c.B>>6
}

// Dequantize7 shifts the kept bits of q back to the top of each channel.
// No bias is added, so the result is the lowest value of each bucket.
func Dequantize7(q uint8) Color {
	return Color{
		R: (q & 0x70) << 1,
		G: (q & 0x0c) << 4,
		B: (q & 0x03) << 6,
	}
}

// Quantize15 keeps the top 5 bits of each channel.
func Quantize15(c Color) uint16 {
	return uint16(c.R>>3)<<10 | uint16(c.G>>3)<<5 | uint16(c.B>>3)
}

// Dequantize15 shifts the kept bits of q back to the top of each channel.
func Dequantize15(q uint16) Color {
	return Color{
		R: uint8((q>>10)&0x1f) << 3,
		G: uint8((q>>5)&0x1f) << 3,
		B: uint8(q&0x1f) << 3,
	}
}
