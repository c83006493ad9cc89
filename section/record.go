package section

import (
	"fmt"

	"github.com/arloliu/dum/encoding"
	"github.com/arloliu/dum/errs"
	"github.com/arloliu/dum/format"
)

// RecordHeader is the tag and payload size that open every frame record.
type RecordHeader struct {
	Type        format.FrameType // byte offset 0
	PayloadSize uint32           // byte offset 1-4
}

// Append appends the serialized record header to dst.
func (r RecordHeader) Append(dst []byte) []byte {
	dst = encoding.AppendUint(dst, uint32(r.Type), 1)
	return encoding.AppendUint(dst, r.PayloadSize, 4)
}

// Bytes serializes the record header.
func (r RecordHeader) Bytes() []byte {
	return r.Append(make([]byte, 0, RecordHeaderSize))
}

// ParseRecordHeader parses a record header from the first RecordHeaderSize bytes of data.
//
// The tag is returned as read; checking it against the known frame types is
// left to the caller, which knows the stream offset to report.
//
// Returns:
//   - RecordHeader: Parsed record header
//   - error: ErrTruncatedRead if data is shorter than RecordHeaderSize
func ParseRecordHeader(data []byte) (RecordHeader, error) {
	if len(data) < RecordHeaderSize {
		return RecordHeader{}, fmt.Errorf("%w: record header has %d of %d bytes",
			errs.ErrTruncatedRead, len(data), RecordHeaderSize)
	}

	tag, err := encoding.DecodeUint(data[0:1])
	if err != nil {
		return RecordHeader{}, err
	}

	size, err := encoding.DecodeUint(data[1:RecordHeaderSize])
	if err != nil {
		return RecordHeader{}, err
	}

	return RecordHeader{Type: format.FrameType(tag), PayloadSize: size}, nil //nolint:gosec
}
