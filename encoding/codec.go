package encoding

import (
	"fmt"

	"github.com/arloliu/dum/format"
	"github.com/arloliu/dum/pixel"
)

// FrameCodec owns the payload format of one frame type.
//
// A payload is the part of a frame record after the tag and payload size
// fields. Codecs work on in-memory payloads; the stream package frames them.
type FrameCodec interface {
	// Type returns the frame record tag this codec writes.
	Type() format.FrameType

	// Append appends the payload for frame to dst.
	//
	// The returned slice is dst with the payload appended. Only the color-mapped
	// codec can fail, when frame holds more colors than a palette can index.
	Append(dst []byte, frame pixel.Frame) ([]byte, error)

	// Decode decodes a payload into a frame of the given pixel count.
	//
	// The returned frame is newly allocated and owned by the caller. The raw
	// codec reports a payload shorter than pixels*3 by returning the partial
	// frame together with an error wrapping errs.ErrShortPayload.
	Decode(payload []byte, pixels int) (pixel.Frame, error)

	// MaxPayloadSize returns the largest payload Append can produce for a frame of the given pixel count.
	MaxPayloadSize(pixels int) int
}

var builtinCodecs = map[format.FrameType]FrameCodec{
	format.FrameRaw:         RawCodec{},
	format.FrameColorMapped: ColorMappedCodec{},
	format.FrameQuantized16: Quantized16Codec{},
	format.FrameQuantized8:  Quantized8Codec{},
}

// GetCodec returns the payload codec for a frame type.
//
// Repeated frames carry no payload and have no codec; asking for one, or for
// an unknown type, returns an error.
func GetCodec(frameType format.FrameType) (FrameCodec, error) {
	if codec, ok := builtinCodecs[frameType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("no payload codec for frame type %s (%d)", frameType, uint8(frameType))
}
