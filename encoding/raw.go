package encoding

import (
	"fmt"

	"github.com/arloliu/dum/errs"
	"github.com/arloliu/dum/format"
	"github.com/arloliu/dum/pixel"
)

// RawCodec stores every pixel as three bytes, R then G then B.
type RawCodec struct{}

var _ FrameCodec = RawCodec{}

func (RawCodec) Type() format.FrameType {
	return format.FrameRaw
}

func (RawCodec) Append(dst []byte, frame pixel.Frame) ([]byte, error) {
	return frame.AppendBytes(dst), nil
}

func (RawCodec) MaxPayloadSize(pixels int) int {
	return pixels * 3
}

// Decode returns the first pixels colors of payload. A shorter payload yields
// every complete triplet available plus an ErrShortPayload warning.
func (RawCodec) Decode(payload []byte, pixels int) (pixel.Frame, error) {
	want := pixels * 3
	if len(payload) < want {
		return pixel.FrameFromBytes(payload), fmt.Errorf("%w: raw payload has %d of %d bytes",
			errs.ErrShortPayload, len(payload), want)
	}

	return pixel.FrameFromBytes(payload[:want]), nil
}
