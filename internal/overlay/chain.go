package overlay

import (
	"slices"

	"github.com/dshills/castedit/internal/cast"
)

// Chain is the set of edits anchored to one original line.
type Chain struct {
	// Modifications are rendered in order immediately before the original line.
	Modifications []cast.Event
	// OriginalDeleted suppresses the original line.
	OriginalDeleted bool
}

// Len returns the number of inserted events.
func (c *Chain) Len() int {
	return len(c.Modifications)
}

// IsNoop reports whether the chain has no visible effect.
func (c *Chain) IsNoop() bool {
	return len(c.Modifications) == 0 && !c.OriginalDeleted
}

// Insert places e at index i, clamped into [0, Len()].
func (c *Chain) Insert(i int, e cast.Event) {
	i = max(0, min(i, len(c.Modifications)))
	c.Modifications = slices.Insert(c.Modifications, i, e)
}

// Delete removes the event addressed by t or, when t is the original,
// toggles whether the original line is suppressed.
func (c *Chain) Delete(t Target) {
	if t.IsOriginal() || t.Index() >= len(c.Modifications) {
		c.OriginalDeleted = !c.OriginalDeleted
		return
	}
	c.Modifications = slices.Delete(c.Modifications, t.Index(), t.Index()+1)
}

// SetData replaces the data of the inserted event addressed by t. Times are
// left untouched.
func (c *Chain) SetData(t Target, data cast.EventData) error {
	if t.IsOriginal() || t.Index() >= len(c.Modifications) {
		return ErrNoInsertion
	}
	c.Modifications[t.Index()].Data = data
	return nil
}

// OrderOf returns the index of the first insertion with exactly time t or
// Len() when none matches.
func (c *Chain) OrderOf(t float64) int {
	for i, e := range c.Modifications {
		if e.Time == t {
			return i
		}
	}
	return len(c.Modifications)
}

func (c *Chain) clone() *Chain {
	return &Chain{
		Modifications:   slices.Clone(c.Modifications),
		OriginalDeleted: c.OriginalDeleted,
	}
}
