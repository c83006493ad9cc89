package hash

import (
	"github.com/arloliu/dum/pixel"
	"github.com/cespare/xxhash/v2"
)

// Frame computes the xxHash64 of frame serialized as consecutive R, G, B bytes.
func Frame(frame pixel.Frame) uint64 {
	d := xxhash.New()
	var buf [3 * 256]byte
	chunk := buf[:0]
	for _, c := range frame {
		chunk = append(chunk, c.R, c.G, c.B)
		if len(chunk) == len(buf) {
			_, _ = d.Write(chunk)
			chunk = chunk[:0]
		}
	}
	_, _ = d.Write(chunk)

	return d.Sum64()
}
