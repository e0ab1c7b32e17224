package overlay

import "fmt"

// Target addresses one position within a chain: either an inserted event
// by index or the original line the chain is anchored to.
type Target struct {
	index    int
	original bool
}

// Inserted returns a target for the inserted event at index i.
func Inserted(i int) Target {
	return Target{index: i}
}

// Original returns a target for the original line of a chain.
func Original() Target {
	return Target{original: true}
}

// TargetAt converts a positional order into a target for a chain holding
// n insertions. Orders are clamped into [0, n] and n addresses the
// original line.
func TargetAt(n, order int) Target {
	if order < 0 {
		order = 0
	}
	if order >= n {
		return Original()
	}
	return Inserted(order)
}

// IsOriginal reports whether t addresses the original line.
func (t Target) IsOriginal() bool {
	return t.original
}

// Index returns the insertion index. It is meaningless for the original.
func (t Target) Index() int {
	return t.index
}

// String implements fmt.Stringer.
func (t Target) String() string {
	if t.original {
		return "original"
	}
	return fmt.Sprintf("inserted[%d]", t.index)
}
