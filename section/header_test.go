package section

import (
	"testing"

	"github.com/arloliu/dum/errs"
	"github.com/stretchr/testify/require"
)

func TestNewHeader(t *testing.T) {
	header := NewHeader(30, 320, 200, 2, 3, 100)

	require.NotNil(t, header)
	require.Equal(t, uint8(30), header.FrameRate)
	require.Equal(t, uint16(320), header.Width)
	require.Equal(t, uint16(200), header.Height)
	require.Equal(t, int64(HeaderSize), header.HeaderSize)
	require.Equal(t, 64000, header.Pixels())
}

func TestHeader_Bytes(t *testing.T) {
	header := NewHeader(10, 20, 32, 40, 50, 60)
	data := header.Bytes()

	require.Len(t, data, HeaderSize)
	require.Equal(t, []byte{
		'd', 'u', 'm', 'v',
		10,
		0, 20,
		0, 32,
		40,
		50,
		0, 0, 0, 60,
	}, data)
}

func TestHeader_Parse(t *testing.T) {
	t.Run("Valid header", func(t *testing.T) {
		original := NewHeader(1, 0x0102, 0x0304, 4, 5, 0x01020304)

		parsed := &Header{}
		err := parsed.Parse(original.Bytes())

		require.NoError(t, err)
		require.Equal(t, original.FrameRate, parsed.FrameRate)
		require.Equal(t, original.Width, parsed.Width)
		require.Equal(t, original.Height, parsed.Height)
		require.Equal(t, original.HScale, parsed.HScale)
		require.Equal(t, original.VScale, parsed.VScale)
		require.Equal(t, original.FrameCount, parsed.FrameCount)
		require.Equal(t, int64(15), parsed.HeaderSize)
	})

	t.Run("Trailing data is ignored", func(t *testing.T) {
		data := append(NewHeader(1, 4, 4, 1, 1, 2).Bytes(), 1, 0, 0, 0, 0)

		parsed, err := ParseHeader(data)
		require.NoError(t, err)
		require.Equal(t, uint32(2), parsed.FrameCount)
	})

	t.Run("Invalid magic", func(t *testing.T) {
		data := NewHeader(1, 4, 4, 1, 1, 2).Bytes()
		data[3] = 'x'

		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidMagic)
	})

	t.Run("Too short for magic", func(t *testing.T) {
		_, err := ParseHeader([]byte("du"))
		require.ErrorIs(t, err, errs.ErrInvalidMagic)
	})

	t.Run("Truncated fields", func(t *testing.T) {
		data := NewHeader(1, 4, 4, 1, 1, 2).Bytes()

		_, err := ParseHeader(data[:HeaderSize-1])
		require.ErrorIs(t, err, errs.ErrTruncatedRead)
	})
}

func TestHeader_String(t *testing.T) {
	header := NewHeader(4, 2, 2, 150, 150, 4)
	header.FileSize = 120

	require.Equal(t, "DUM 2x2 @ 4 fps, scale 150x150, 4 frames, header 15B, file 120B", header.String())
}
