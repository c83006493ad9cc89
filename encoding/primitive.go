package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/dum/errs"
)

// byteOrder is the byte order of every multi-byte integer in a DUM stream.
var byteOrder = binary.BigEndian

// AppendUint appends v to dst as an n-byte big-endian unsigned integer.
//
// Parameters:
//   - dst: Destination slice
//   - v: Value to encode, truncated to n bytes
//   - n: Width in bytes, one of 1, 2 or 4
//
// Returns:
//   - []byte: dst with the encoded bytes appended
func AppendUint(dst []byte, v uint32, n int) []byte {
	switch n {
	case 1:
		return append(dst, uint8(v)) //nolint:gosec
	case 2:
		return byteOrder.AppendUint16(dst, uint16(v)) //nolint:gosec
	case 4:
		return byteOrder.AppendUint32(dst, v)
	default:
		panic(fmt.Sprintf("AppendUint: unsupported width %d", n))
	}
}

// DecodeUint decodes a big-endian unsigned integer from all of b.
//
// Returns:
//   - uint32: Decoded value
//   - error: ErrTruncatedRead if b is empty
func DecodeUint(b []byte) (uint32, error) {
	switch len(b) {
	case 0:
		return 0, errs.ErrTruncatedRead
	case 1:
		return uint32(b[0]), nil
	case 2:
		return uint32(byteOrder.Uint16(b)), nil
	case 4:
		return byteOrder.Uint32(b), nil
	default:
		var v uint32
		for _, x := range b {
			v = v<<8 | uint32(x)
		}

		return v, nil
	}
}
