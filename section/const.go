package section

// Magic is the literal every DUM stream starts with.
const Magic = "dumv"

// offset and section sizes in the stream
const (
	MagicSize        = 4  // magic literal size in bytes
	HeaderSize       = 15 // fixed header size in bytes, including the magic
	RecordHeaderSize = 5  // frame record tag (1 byte) plus payload size (4 bytes)

	FrameRateOffset   = 4  // byte offset of the frame rate (u8)
	WidthOffset       = 5  // byte offset of the width (u16)
	HeightOffset      = 7  // byte offset of the height (u16)
	HScaleOffset      = 9  // byte offset of the horizontal scale (u8)
	VScaleOffset      = 10 // byte offset of the vertical scale (u8)
	FrameCountOffset  = 11 // byte offset of the frame count (u32)
	FirstRecordOffset = HeaderSize
)
