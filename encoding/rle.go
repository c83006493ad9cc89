package encoding

import (
	"fmt"

	"github.com/arloliu/dum/errs"
)

// Packed is the set of packed quantized value widths the run-length codec handles.
type Packed interface {
	~uint8 | ~uint16
}

// RunLength describes a run-length scheme over packed values of type T.
//
// A packed value with Flag clear is a literal. A packed value with Flag set is
// a run marker whose remaining bits count how many more times the most recent
// literal repeats, from 1 up to MaxRun.
type RunLength[T Packed] struct {
	Flag   T
	MaxRun int
}

// Run-length schemes used by the quantized frame codecs.
var (
	RunLength8  = RunLength[uint8]{Flag: 1 << 7, MaxRun: 1<<7 - 1}
	RunLength16 = RunLength[uint16]{Flag: 1 << 15, MaxRun: 1<<15 - 1}
)

// Encode appends the run-length encoding of values to dst.
//
// Values are scanned left to right. A value equal to the previous literal
// extends the pending run unless the run already holds MaxRun repeats, in
// which case the run is flushed and the value is emitted as a new literal.
// A pending run is flushed at the end.
//
// Values must not have Flag set.
func (rl RunLength[T]) Encode(dst []T, values []T) []T {
	if len(values) == 0 {
		return dst
	}

	literal := values[0]
	dst = append(dst, literal)
	run := 0
	for _, v := range values[1:] {
		if v == literal && run < rl.MaxRun {
			run++
			continue
		}

		if run > 0 {
			dst = append(dst, rl.Flag|T(run)) //nolint:gosec
		}
		dst = append(dst, v)
		literal = v
		run = 0
	}

	if run > 0 {
		dst = append(dst, rl.Flag|T(run)) //nolint:gosec
	}

	return dst
}

// Decode expands packed into exactly n literal values.
//
// Returns:
//   - []T: The expanded literals, len == n
//   - error: ErrMalformedRun if a run marker precedes every literal, is empty or overruns n,
//     ErrTruncatedRead if packed ends before n values are produced
func (rl RunLength[T]) Decode(packed []T, n int) ([]T, error) {
	// Each packed value yields at most MaxRun+1 literals; a short payload
	// must not reserve a frame it cannot fill.
	out := make([]T, 0, min(n, len(packed)*(rl.MaxRun+1)))
	var literal T
	seen := false
	for i, v := range packed {
		if len(out) == n {
			return nil, fmt.Errorf("%w: %d trailing packed values", errs.ErrMalformedRun, len(packed)-i)
		}

		if v&rl.Flag == 0 {
			literal = v
			seen = true
			out = append(out, v)

			continue
		}

		if !seen {
			return nil, fmt.Errorf("%w: run marker at position %d before any literal", errs.ErrMalformedRun, i)
		}

		count := int(v &^ rl.Flag)
		if count == 0 {
			return nil, fmt.Errorf("%w: empty run at position %d", errs.ErrMalformedRun, i)
		}
		if len(out)+count > n {
			return nil, fmt.Errorf("%w: run of %d overruns frame of %d values", errs.ErrMalformedRun, count, n)
		}
		for range count {
			out = append(out, literal)
		}
	}

	if len(out) < n {
		return nil, fmt.Errorf("%w: decoded %d of %d values", errs.ErrTruncatedRead, len(out), n)
	}

	return out, nil
}
