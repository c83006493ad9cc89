package encoding

import (
	"fmt"

	"github.com/arloliu/dum/errs"
	"github.com/arloliu/dum/format"
	"github.com/arloliu/dum/internal/pool"
	"github.com/arloliu/dum/pixel"
)

// Quantized8Codec quantizes pixels to 7-bit colors and run-length encodes them
// into one byte per packed value using RunLength8.
type Quantized8Codec struct{}

var _ FrameCodec = Quantized8Codec{}

func (Quantized8Codec) Type() format.FrameType {
	return format.FrameQuantized8
}

func (Quantized8Codec) Append(dst []byte, frame pixel.Frame) ([]byte, error) {
	values, cleanup := pool.GetUint8Slice(len(frame))
	defer cleanup()

	for i, c := range frame {
		values[i] = pixel.Quantize7(c)
	}

	return RunLength8.Encode(dst, values), nil
}

// MaxPayloadSize is reached when no two neighbouring pixels quantize alike.
func (Quantized8Codec) MaxPayloadSize(pixels int) int {
	return pixels
}

func (Quantized8Codec) Decode(payload []byte, pixels int) (pixel.Frame, error) {
	values, err := RunLength8.Decode(payload, pixels)
	if err != nil {
		return nil, err
	}

	frame := make(pixel.Frame, len(values))
	for i, q := range values {
		frame[i] = pixel.Dequantize7(q)
	}

	return frame, nil
}

// Quantized16Codec quantizes pixels to 15-bit colors and run-length encodes
// them into two big-endian bytes per packed value using RunLength16.
type Quantized16Codec struct{}

var _ FrameCodec = Quantized16Codec{}

func (Quantized16Codec) Type() format.FrameType {
	return format.FrameQuantized16
}

func (Quantized16Codec) Append(dst []byte, frame pixel.Frame) ([]byte, error) {
	values, cleanupValues := pool.GetUint16Slice(len(frame))
	defer cleanupValues()

	for i, c := range frame {
		values[i] = pixel.Quantize15(c)
	}

	packed, cleanupPacked := pool.GetUint16Slice(len(values))
	defer cleanupPacked()

	packed = RunLength16.Encode(packed[:0], values)
	for _, v := range packed {
		dst = byteOrder.AppendUint16(dst, v)
	}

	return dst, nil
}

func (Quantized16Codec) MaxPayloadSize(pixels int) int {
	return pixels * 2
}

func (Quantized16Codec) Decode(payload []byte, pixels int) (pixel.Frame, error) {
	if len(payload)%2 != 0 {
		return nil, fmt.Errorf("%w: odd 16-bit payload length %d", errs.ErrTruncatedRead, len(payload))
	}

	packed, cleanup := pool.GetUint16Slice(len(payload) / 2)
	defer cleanup()

	for i := range packed {
		packed[i] = byteOrder.Uint16(payload[i*2:])
	}

	values, err := RunLength16.Decode(packed, pixels)
	if err != nil {
		return nil, err
	}

	frame := make(pixel.Frame, len(values))
	for i, q := range values {
		frame[i] = pixel.Dequantize15(q)
	}

	return frame, nil
}
