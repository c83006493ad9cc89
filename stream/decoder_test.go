package stream

import (
	"bytes"
	"log/slog"
	"math"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dum/encoding"
	"github.com/arloliu/dum/errs"
	"github.com/arloliu/dum/format"
	"github.com/arloliu/dum/pixel"
	"github.com/arloliu/dum/section"
)

func newTestDecoder(t *testing.T, data []byte, opts ...DecoderOption) *Decoder {
	t.Helper()

	dec, err := NewDecoder(bytes.NewReader(data), opts...)
	require.NoError(t, err)

	return dec
}

// openStream returns a decoder positioned at the first frame record.
func openStream(t *testing.T, data []byte) *Decoder {
	t.Helper()

	dec := newTestDecoder(t, data)
	_, err := dec.ReadHeader()
	require.NoError(t, err)

	return dec
}

// rawStream builds a stream by hand from a header and already encoded records.
func rawStream(header section.Header, records ...[]byte) []byte {
	data := header.Bytes()
	for _, rec := range records {
		data = append(data, rec...)
	}

	return data
}

func record(frameType format.FrameType, payload []byte) []byte {
	rec := section.RecordHeader{Type: frameType, PayloadSize: uint32(len(payload))} //nolint:gosec
	return append(rec.Bytes(), payload...)
}

// distinctFrames returns n frames of 16 pixels, each frame differing from the others.
func distinctFrames(n int) []pixel.Frame {
	frames := make([]pixel.Frame, n)
	for i := range frames {
		frames[i] = solidFrame(pixel.RGB(uint8(i), uint8(i*3), uint8(i*5)), 16) //nolint:gosec
		frames[i][0] = pixel.RGB(255, 255, uint8(i))                             //nolint:gosec
	}

	return frames
}

func TestDecoder_ReadHeader(t *testing.T) {
	data := section.NewHeader(10, 20, 32, 40, 50, 60).Bytes()
	dec := newTestDecoder(t, data)

	header, err := dec.ReadHeader()
	require.NoError(t, err)
	require.Equal(t, section.Header{
		FrameRate:  10,
		Width:      20,
		Height:     32,
		HScale:     40,
		VScale:     50,
		FrameCount: 60,
		HeaderSize: 15,
		FileSize:   15,
	}, header)

	info, err := dec.Info()
	require.NoError(t, err)
	require.Equal(t, header, info)
}

func TestDecoder_ReadHeader_Errors(t *testing.T) {
	t.Run("invalid magic", func(t *testing.T) {
		data := section.NewHeader(10, 20, 32, 40, 50, 60).Bytes()
		copy(data, "dumz")

		_, err := newTestDecoder(t, data).ReadHeader()
		require.ErrorIs(t, err, errs.ErrInvalidMagic)
	})

	t.Run("truncated", func(t *testing.T) {
		data := section.NewHeader(10, 20, 32, 40, 50, 60).Bytes()

		_, err := newTestDecoder(t, data[:9]).ReadHeader()
		require.ErrorIs(t, err, errs.ErrTruncatedRead)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := newTestDecoder(t, nil).ReadHeader()
		require.Error(t, err)
	})

	t.Run("twice", func(t *testing.T) {
		dec := openStream(t, rawStream(twoFrameHeader()))

		_, err := dec.ReadHeader()
		require.ErrorIs(t, err, errs.ErrProtocolViolation)
	})

	t.Run("not at offset zero", func(t *testing.T) {
		r := bytes.NewReader(rawStream(twoFrameHeader()))
		_, err := r.Seek(3, 0)
		require.NoError(t, err)

		dec, err := NewDecoder(r)
		require.NoError(t, err)

		_, err = dec.ReadHeader()
		require.ErrorIs(t, err, errs.ErrProtocolViolation)
	})
}

func TestDecoder_BeforeHeader(t *testing.T) {
	dec := newTestDecoder(t, rawStream(twoFrameHeader()))

	_, err := dec.Info()
	require.ErrorIs(t, err, errs.ErrProtocolViolation)

	_, err = dec.ReadFrame()
	require.ErrorIs(t, err, errs.ErrProtocolViolation)

	_, _, err = dec.SkipFrame()
	require.ErrorIs(t, err, errs.ErrProtocolViolation)

	_, err = dec.Seek(0.5)
	require.ErrorIs(t, err, errs.ErrProtocolViolation)

	for _, err := range dec.Frames() {
		require.ErrorIs(t, err, errs.ErrProtocolViolation)
	}
}

func TestDecoder_RoundTrip(t *testing.T) {
	first := append(pixel.Frame{pixel.RGB(0, 0, 0), pixel.RGB(100, 100, 100)}, solidFrame(pixel.RGB(0, 0, 0), 14)...)
	second := append(pixel.Frame{pixel.RGB(150, 150, 150), pixel.RGB(250, 250, 250)}, solidFrame(pixel.RGB(0, 0, 0), 14)...)

	t.Run("color mapped", func(t *testing.T) {
		data := encodeStream(t, twoFrameHeader(), []pixel.Frame{first, second})
		dec := openStream(t, data)

		info, err := dec.Info()
		require.NoError(t, err)
		require.Equal(t, section.Header{
			FrameRate: 1, Width: 4, Height: 4, HScale: 4, VScale: 5,
			FrameCount: 2, HeaderSize: 15, FileSize: 74,
		}, info)

		frame, err := dec.ReadFrame()
		require.NoError(t, err)
		require.Equal(t, format.FrameColorMapped, frame.Type)
		require.Equal(t, 0, frame.Index)
		require.Equal(t, first, frame.Pixels)

		frame, err = dec.ReadFrame()
		require.NoError(t, err)
		require.Equal(t, 1, frame.Index)
		require.Equal(t, second, frame.Pixels)
		require.False(t, frame.Partial())
	})

	t.Run("raw", func(t *testing.T) {
		data := encodeStream(t, twoFrameHeader(), []pixel.Frame{first, second}, WithColorMapping(false))
		require.Len(t, data, section.HeaderSize+2*(section.RecordHeaderSize+48))

		dec := openStream(t, data)
		for i, want := range []pixel.Frame{first, second} {
			frame, err := dec.ReadFrame()
			require.NoError(t, err)
			require.Equal(t, format.FrameRaw, frame.Type)
			require.Equal(t, i, frame.Index)
			require.Equal(t, want, frame.Pixels)
		}
		require.Equal(t, 2, dec.FrameIndex())
	})
}

func TestDecoder_QuantizedFrames(t *testing.T) {
	t.Run("7-bit run length", func(t *testing.T) {
		pixels := append(solidFrame(pixel.RGB(0, 80, 130), 100), solidFrame(pixel.RGB(150, 200, 255), 9900)...)
		header := *section.NewHeader(1, 100, 100, 1, 1, 1)
		data := encodeStream(t, header, []pixel.Frame{pixels}, WithQuality(format.QualityLow), WithColorMapping(false))

		frame, err := openStream(t, data).ReadFrame()
		require.NoError(t, err)
		require.Equal(t, format.FrameQuantized8, frame.Type)
		require.Equal(t, solidFrame(pixel.RGB(0, 64, 128), 100), frame.Pixels[:100])
		require.Equal(t, solidFrame(pixel.RGB(128, 192, 192), 9900), frame.Pixels[100:])
	})

	t.Run("15-bit", func(t *testing.T) {
		header := *section.NewHeader(1, 16, 16, 1, 1, 1)
		data := encodeStream(t, header, []pixel.Frame{manyColorsFrame()}, WithQuality(format.QualityMedium))

		frame, err := openStream(t, data).ReadFrame()
		require.NoError(t, err)
		require.Equal(t, format.FrameQuantized16, frame.Type)
		for i, c := range manyColorsFrame() {
			require.Equal(t, pixel.Dequantize15(pixel.Quantize15(c)), frame.Pixels[i])
		}
	})
}

func TestDecoder_RepeatedFrame(t *testing.T) {
	frame := manyColorsFrame()
	header := *section.NewHeader(1, 16, 16, 1, 1, 2)
	data := encodeStream(t, header, []pixel.Frame{frame, frame})

	dec := openStream(t, data)
	first, err := dec.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, format.FrameRaw, first.Type)

	// Pixels belong to the caller and do not alias the decoder's copy.
	first.Pixels[0] = pixel.RGB(1, 1, 1)

	second, err := dec.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, format.FrameRepeated, second.Type)
	require.Equal(t, frame, second.Pixels)
}

func TestDecoder_RepeatedAfterSeek(t *testing.T) {
	frames := distinctFrames(3)
	header := *section.NewHeader(1, 4, 4, 1, 1, 4)
	data := encodeStream(t, header, []pixel.Frame{frames[0], frames[1], frames[1], frames[2]})

	dec := openStream(t, data)
	for range 4 {
		_, err := dec.ReadFrame()
		require.NoError(t, err)
	}

	index, err := dec.SeekFrame(2)
	require.NoError(t, err)
	require.Equal(t, 2, index)

	frame, err := dec.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, format.FrameRepeated, frame.Type)
	require.Equal(t, frames[1], frame.Pixels, "repeated frame resolves to the record before the seek target")

	frame, err = dec.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, frames[2], frame.Pixels)
}

func TestDecoder_NoPreviousFrame(t *testing.T) {
	data := rawStream(twoFrameHeader(), record(format.FrameRepeated, nil))

	_, err := openStream(t, data).ReadFrame()
	require.ErrorIs(t, err, errs.ErrNoPreviousFrame)
}

func TestDecoder_UnknownFrameType(t *testing.T) {
	data := rawStream(twoFrameHeader(), []byte{9, 0, 0, 0, 0})

	_, err := openStream(t, data).ReadFrame()
	require.ErrorIs(t, err, errs.ErrUnknownFrameType)

	var typeErr *errs.FrameTypeError
	require.ErrorAs(t, err, &typeErr)
	require.Equal(t, uint8(9), typeErr.Tag)
	require.Equal(t, int64(section.HeaderSize), typeErr.Offset)

	_, _, err = openStream(t, data).SkipFrame()
	require.ErrorIs(t, err, errs.ErrUnknownFrameType)

	// The tag is checked before the payload size is needed.
	_, err = openStream(t, rawStream(twoFrameHeader(), []byte{9})).ReadFrame()
	require.ErrorIs(t, err, errs.ErrUnknownFrameType)
}

func TestDecoder_TruncatedRecord(t *testing.T) {
	data := rawStream(twoFrameHeader(), []byte{byte(format.FrameColorMapped), 0, 0})

	_, err := openStream(t, data).ReadFrame()
	require.ErrorIs(t, err, errs.ErrTruncatedRead)

	// A color-mapped payload cut short is fatal.
	payload := append([]byte{1, 10, 20, 30}, make([]byte, 16)...)
	rec := record(format.FrameColorMapped, payload)
	data = rawStream(twoFrameHeader(), rec[:len(rec)-4])

	_, err = openStream(t, data).ReadFrame()
	require.ErrorIs(t, err, errs.ErrTruncatedRead)
}

func TestDecoder_ShortRawPayload(t *testing.T) {
	header := *section.NewHeader(1, 2, 2, 1, 1, 2)
	pixels := []byte{1, 2, 3, 4, 5, 6}

	t.Run("declared short", func(t *testing.T) {
		data := rawStream(header, record(format.FrameRaw, pixels))

		frame, err := openStream(t, data).ReadFrame()
		require.NoError(t, err)
		require.True(t, frame.Partial())
		require.ErrorIs(t, frame.Warning, errs.ErrShortPayload)
		require.Equal(t, pixel.Frame{pixel.RGB(1, 2, 3), pixel.RGB(4, 5, 6)}, frame.Pixels)
	})

	t.Run("stream ends early", func(t *testing.T) {
		rec := section.RecordHeader{Type: format.FrameRaw, PayloadSize: 12}
		data := rawStream(header, rec.Bytes(), pixels)

		frame, err := openStream(t, data).ReadFrame()
		require.NoError(t, err)
		require.ErrorIs(t, frame.Warning, errs.ErrShortPayload)
		require.Len(t, frame.Pixels, 2)
	})
}

func TestDecoder_OversizedPayload(t *testing.T) {
	header := *section.NewHeader(1, 2, 2, 1, 1, 2)

	t.Run("raw excess is skipped", func(t *testing.T) {
		payload := make([]byte, 15)
		for i := range payload {
			payload[i] = byte(i)
		}
		next := record(format.FrameQuantized8, []byte{0x7f, 0x80 + 3})
		data := rawStream(header, record(format.FrameRaw, payload), next)

		dec := openStream(t, data)
		frame, err := dec.ReadFrame()
		require.NoError(t, err)
		require.Nil(t, frame.Warning)
		require.Equal(t, pixel.FrameFromBytes(payload[:12]), frame.Pixels)

		frame, err = dec.ReadFrame()
		require.NoError(t, err)
		require.Equal(t, solidFrame(pixel.Dequantize7(0x7f), 4), frame.Pixels)
	})

	t.Run("color mapped", func(t *testing.T) {
		limit := encoding.ColorMappedCodec{}.MaxPayloadSize(4)
		data := rawStream(header, record(format.FrameColorMapped, make([]byte, limit+1)))

		_, err := openStream(t, data).ReadFrame()
		require.ErrorIs(t, err, errs.ErrInvalidPayloadSize)
	})
}

// allocated returns the bytes allocated while fn runs.
func allocated(fn func()) uint64 {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)

	return after.TotalAlloc - before.TotalAlloc
}

func TestDecoder_PayloadLargerThanStream(t *testing.T) {
	header := *section.NewHeader(1, math.MaxUint16, math.MaxUint16, 1, 1, 1)

	t.Run("raw", func(t *testing.T) {
		rec := section.RecordHeader{Type: format.FrameRaw, PayloadSize: math.MaxUint32}
		data := rawStream(header, rec.Bytes(), []byte{1, 2, 3})
		dec := openStream(t, data)

		var (
			frame *Frame
			err   error
		)
		n := allocated(func() { frame, err = dec.ReadFrame() })

		require.NoError(t, err)
		require.ErrorIs(t, frame.Warning, errs.ErrShortPayload)
		require.Equal(t, pixel.Frame{pixel.RGB(1, 2, 3)}, frame.Pixels)
		require.Less(t, n, uint64(1<<20), "allocated %d bytes", n)
	})

	t.Run("quantized", func(t *testing.T) {
		rec := section.RecordHeader{Type: format.FrameQuantized8, PayloadSize: 0xfffe0000}
		data := rawStream(header, rec.Bytes(), []byte{0x7f, 0x80 + 3})
		dec := openStream(t, data)

		var err error
		n := allocated(func() { _, err = dec.ReadFrame() })

		require.ErrorIs(t, err, errs.ErrTruncatedRead)
		require.Less(t, n, uint64(1<<20), "allocated %d bytes", n)
	})

	t.Run("runs shorter than frame", func(t *testing.T) {
		data := rawStream(header, record(format.FrameQuantized8, []byte{0x7f, 0x80 + 3}))
		dec := openStream(t, data)

		var err error
		n := allocated(func() { _, err = dec.ReadFrame() })

		require.ErrorIs(t, err, errs.ErrTruncatedRead)
		require.Less(t, n, uint64(1<<20), "allocated %d bytes", n)
	})
}

func TestDecoder_RepeatedSourceInvalid(t *testing.T) {
	header := *section.NewHeader(1, 2, 2, 1, 1, 3)
	limit := encoding.ColorMappedCodec{}.MaxPayloadSize(4)
	data := rawStream(header,
		record(format.FrameColorMapped, make([]byte, limit+1)),
		record(format.FrameRepeated, nil),
		record(format.FrameQuantized8, []byte{0x7f, 0x80 + 3}),
	)

	dec := openStream(t, data)
	_, _, err := dec.SkipFrame()
	require.NoError(t, err)

	_, err = dec.ReadFrame()
	require.ErrorIs(t, err, errs.ErrInvalidPayloadSize)

	// The cursor is back after the repeated record.
	frameType, size, err := dec.SkipFrame()
	require.NoError(t, err)
	require.Equal(t, format.FrameQuantized8, frameType)
	require.Equal(t, uint32(2), size)
}

func TestDecoder_InvalidPaletteIndex(t *testing.T) {
	header := *section.NewHeader(1, 2, 2, 1, 1, 1)
	data := rawStream(header, record(format.FrameColorMapped, []byte{1, 10, 20, 30, 0, 0, 1, 0}))

	_, err := openStream(t, data).ReadFrame()
	require.ErrorIs(t, err, errs.ErrInvalidPaletteIndex)
}

func TestDecoder_MalformedRun(t *testing.T) {
	header := *section.NewHeader(1, 2, 2, 1, 1, 1)
	data := rawStream(header, record(format.FrameQuantized8, []byte{0x80 + 3}))

	_, err := openStream(t, data).ReadFrame()
	require.ErrorIs(t, err, errs.ErrMalformedRun)
}

func TestDecoder_SkipFrame(t *testing.T) {
	frames := distinctFrames(2)
	header := *section.NewHeader(1, 4, 4, 1, 1, 3)
	data := encodeStream(t, header, []pixel.Frame{frames[0], frames[0], frames[1]})

	dec := openStream(t, data)
	frameType, size, err := dec.SkipFrame()
	require.NoError(t, err)
	require.Equal(t, format.FrameColorMapped, frameType)
	require.Equal(t, uint32(1+2*3+16), size)

	frameType, size, err = dec.SkipFrame()
	require.NoError(t, err)
	require.Equal(t, format.FrameRepeated, frameType)
	require.Zero(t, size)

	frame, err := dec.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, 2, frame.Index)
	require.Equal(t, frames[1], frame.Pixels)

	_, _, err = dec.SkipFrame()
	require.ErrorIs(t, err, errs.ErrTruncatedRead)
}

func TestDecoder_Seek(t *testing.T) {
	const n = 10
	frames := distinctFrames(n)
	header := *section.NewHeader(1, 4, 4, 1, 1, n)
	data := encodeStream(t, header, frames)

	tests := []struct {
		name     string
		start    int
		progress float64
		want     int
	}{
		{"half from start", 0, 0.5, 5},
		{"half from behind target", 7, 0.5, 5},
		{"half from target", 5, 0.5, 5},
		{"zero from middle", 6, 0.0, 0},
		{"zero from end", n, 0.0, 0},
		{"floor", 0, 0.39, 3},
		{"end", 2, 1.0, n},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := openStream(t, data)
			for range tt.start {
				_, err := dec.ReadFrame()
				require.NoError(t, err)
			}

			index, err := dec.Seek(tt.progress)
			require.NoError(t, err)
			require.Equal(t, tt.want, index)
			require.Equal(t, tt.want, dec.FrameIndex())

			if tt.want == n {
				_, err := dec.ReadFrame()
				require.ErrorIs(t, err, errs.ErrTruncatedRead)

				return
			}

			frame, err := dec.ReadFrame()
			require.NoError(t, err)
			require.Equal(t, tt.want, frame.Index)
			require.Equal(t, frames[tt.want], frame.Pixels)
		})
	}
}

func TestDecoder_Seek_Invalid(t *testing.T) {
	data := encodeStream(t, *section.NewHeader(1, 4, 4, 1, 1, 2), distinctFrames(2))
	dec := openStream(t, data)

	for _, progress := range []float64{-0.1, 1.5, math.NaN(), math.Inf(1)} {
		_, err := dec.Seek(progress)
		require.ErrorIs(t, err, errs.ErrInvalidProgress)
	}

	_, err := dec.SeekFrame(3)
	require.ErrorIs(t, err, errs.ErrFrameOutOfRange)

	_, err = dec.SeekFrame(-1)
	require.ErrorIs(t, err, errs.ErrFrameOutOfRange)
	require.Zero(t, dec.FrameIndex())
}

func TestDecoder_SeekToBeginning(t *testing.T) {
	frames := distinctFrames(3)
	data := encodeStream(t, *section.NewHeader(1, 4, 4, 1, 1, 3), frames)
	dec := openStream(t, data)

	for range 3 {
		_, err := dec.ReadFrame()
		require.NoError(t, err)
	}

	require.NoError(t, dec.SeekToBeginning())
	require.Zero(t, dec.FrameIndex())

	frame, err := dec.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, frames[0], frame.Pixels)
}

func TestDecoder_Frames(t *testing.T) {
	frames := distinctFrames(4)
	data := encodeStream(t, *section.NewHeader(1, 4, 4, 1, 1, 4), frames)
	dec := openStream(t, data)

	var got []pixel.Frame
	for frame, err := range dec.Frames() {
		require.NoError(t, err)
		got = append(got, frame.Pixels)
	}
	require.Equal(t, frames, got)

	t.Run("stops at first error", func(t *testing.T) {
		header := *section.NewHeader(1, 4, 4, 1, 1, 3)
		data := rawStream(header, record(format.FrameRepeated, nil), record(format.FrameRepeated, nil))

		count := 0
		for frame, err := range openStream(t, data).Frames() {
			count++
			require.Nil(t, frame)
			require.ErrorIs(t, err, errs.ErrNoPreviousFrame)
		}
		require.Equal(t, 1, count)
	})
}

func TestDecoder_Close(t *testing.T) {
	dec := openStream(t, encodeStream(t, twoFrameHeader(), distinctFrames(2)))
	require.NoError(t, dec.Close())

	_, err := dec.ReadFrame()
	require.ErrorIs(t, err, errs.ErrProtocolViolation)

	info, err := dec.Info()
	require.NoError(t, err)
	require.Equal(t, uint32(2), info.FrameCount)
}

func TestDecoder_Logging(t *testing.T) {
	var logs bytes.Buffer
	data := encodeStream(t, *section.NewHeader(1, 4, 4, 1, 1, 4), distinctFrames(4))
	dec := newTestDecoder(t, data, WithDecoderLogger(newTextLogger(&logs, slog.LevelDebug)))

	_, err := dec.ReadHeader()
	require.NoError(t, err)
	_, err = dec.Seek(0.75)
	require.NoError(t, err)
	_, err = dec.Seek(0.25)
	require.NoError(t, err)

	require.Contains(t, logs.String(), "seeking forward")
	require.Contains(t, logs.String(), "seeking from beginning")
	require.Contains(t, logs.String(), "skipped frame")
}
