package castfile

import (
	"bytes"
	"fmt"
	"math"

	"github.com/dshills/castedit/internal/cast"
)

// GetLines returns up to n original lines worth of events starting at the
// line boundary nearest to pos, a fraction of the file size in [0, 1].
//
// Pending insertions are returned before the line they are anchored to and
// deleted lines are omitted, so the result is what a save would write for
// the same range. Lines that cannot be parsed are logged and skipped.
func (f *CastFile) GetLines(pos float64, n int) ([]cast.Positioned, error) {
	if f.closed {
		return nil, ErrClosed
	}

	start, err := f.windowStart(pos)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	end := f.windowEnd(start, n)

	out := make([]cast.Positioned, 0, n)
	f.merge(start, end, func(p cast.Positioned) bool {
		out = append(out, p)
		return true
	})
	return out, nil
}

// Each calls fn for every event of the edited file in order until fn
// returns false.
func (f *CastFile) Each(fn func(cast.Positioned) bool) error {
	if f.closed {
		return ErrClosed
	}
	f.merge(f.bodyStart, len(f.data), fn)
	return nil
}

// windowStart maps pos to the start of a line: the line after the next
// terminator at or past pos, or failing that the last line of the file.
func (f *CastFile) windowStart(pos float64) (int, error) {
	if math.IsNaN(pos) || pos < 0 {
		pos = 0
	}
	pos = min(pos, 1)

	bytePos := min(int(pos*float64(len(f.data))), len(f.data))
	if i := bytes.IndexByte(f.data[bytePos:], '\n'); i >= 0 {
		return bytePos + i + 1, nil
	}
	if i := bytes.LastIndexByte(f.data[:bytePos], '\n'); i >= 0 {
		return i + 1, nil
	}
	return 0, fmt.Errorf("%w: no newlines found in file", ErrDeserialization)
}

// windowEnd returns the offset just past the n-th line terminator after
// start, or the end of the file.
func (f *CastFile) windowEnd(start, n int) int {
	end := start
	for j := 0; j < n; j++ {
		i := bytes.IndexByte(f.data[end:], '\n')
		if i < 0 {
			return len(f.data)
		}
		end += i + 1
	}
	return end
}

// merge walks [lo, hi) emitting overlay insertions before their anchor line
// and parsed original lines, skipping deleted ones.
//
// The overlay is consulted again at every line, so fn may edit the file
// while the walk is in progress. Edits at lines already passed are not
// revisited.
func (f *CastFile) merge(lo, hi int, fn func(cast.Positioned) bool) {
	upper := hi
	if hi == len(f.data) {
		// Chains anchored at the end of the file render after the last line.
		upper = hi + 1
	}

	for cur := lo; cur < upper; {
		if chain, ok := f.overlay.Get(cur); ok {
			for _, ev := range chain.Modifications {
				if !fn(cast.Positioned{Event: ev, Offset: cur}) {
					return
				}
			}
		}
		if cur >= hi {
			return
		}
		next := min(f.lineEnd(cur), hi)
		if chain, ok := f.overlay.Get(cur); !ok || !chain.OriginalDeleted {
			if !f.parseLine(cur, next, fn) {
				return
			}
		}
		cur = next
	}
}

// parseLine parses the line in [lo, hi). It returns false if fn stopped the
// walk.
func (f *CastFile) parseLine(lo, hi int, fn func(cast.Positioned) bool) bool {
	line := bytes.TrimSpace(f.data[lo:hi])
	if len(line) == 0 {
		return true
	}
	ev, err := cast.ParseLine(string(line))
	if err != nil {
		f.log.WithField("offset", lo).Warn("skipping line: %v", err)
		return true
	}
	return fn(cast.Positioned{Event: ev, Offset: lo})
}
