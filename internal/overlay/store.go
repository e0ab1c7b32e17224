package overlay

import (
	"slices"
	"sort"
)

// Store maps byte offsets to chains in ascending offset order.
//
// Chains are created on first use and never removed. A Store is not safe
// for concurrent use.
type Store struct {
	offsets []int
	chains  map[int]*Chain
}

// New creates an empty store.
func New() *Store {
	return &Store{chains: make(map[int]*Chain)}
}

// Len returns the number of chains.
func (s *Store) Len() int {
	return len(s.offsets)
}

// Get returns the chain at offset.
func (s *Store) Get(offset int) (*Chain, bool) {
	c, ok := s.chains[offset]
	return c, ok
}

// Entry returns the chain at offset, creating it if needed.
func (s *Store) Entry(offset int) *Chain {
	if c, ok := s.chains[offset]; ok {
		return c
	}
	c := &Chain{}
	s.put(offset, c)
	return c
}

func (s *Store) put(offset int, c *Chain) {
	if _, ok := s.chains[offset]; !ok {
		i := sort.SearchInts(s.offsets, offset)
		s.offsets = slices.Insert(s.offsets, i, offset)
	}
	s.chains[offset] = c
}

// Offsets returns a copy of the chain offsets within [lo, hi) in ascending
// order. A negative hi means no upper bound.
func (s *Store) Offsets(lo, hi int) []int {
	start := sort.SearchInts(s.offsets, lo)
	end := len(s.offsets)
	if hi >= 0 {
		end = sort.SearchInts(s.offsets, hi)
	}
	if start >= end {
		return nil
	}
	return slices.Clone(s.offsets[start:end])
}

// Modified reports whether any chain has a visible effect.
func (s *Store) Modified() bool {
	for _, c := range s.chains {
		if !c.IsNoop() {
			return true
		}
	}
	return false
}

// Stats summarizes pending edits.
type Stats struct {
	Chains     int
	Insertions int
	Deletions  int
}

// Stats counts chains, inserted events and suppressed original lines.
func (s *Store) Stats() Stats {
	st := Stats{Chains: len(s.offsets)}
	for _, c := range s.chains {
		st.Insertions += len(c.Modifications)
		if c.OriginalDeleted {
			st.Deletions++
		}
	}
	return st
}

// Transaction runs fn against a staged view of the store. Chains touched
// through the Txn are copies; they replace the originals only when fn
// returns nil. When fn fails the store is left exactly as it was.
func (s *Store) Transaction(fn func(tx *Txn) error) error {
	tx := &Txn{store: s, staged: make(map[int]*Chain)}
	defer func() { tx.done = true }()

	if err := fn(tx); err != nil {
		return err
	}
	for off, c := range tx.staged {
		s.put(off, c)
	}
	return nil
}

// Txn is a copy-on-write view of a Store used by Transaction.
type Txn struct {
	store  *Store
	staged map[int]*Chain
	done   bool
}

// Entry returns the staged chain at offset, copying or creating it as needed.
func (tx *Txn) Entry(offset int) *Chain {
	if tx.done {
		panic(ErrTxnDone)
	}
	if c, ok := tx.staged[offset]; ok {
		return c
	}
	var c *Chain
	if orig, ok := tx.store.chains[offset]; ok {
		c = orig.clone()
	} else {
		c = &Chain{}
	}
	tx.staged[offset] = c
	return c
}

// Peek returns the chain at offset as the transaction currently sees it
// without staging a copy.
func (tx *Txn) Peek(offset int) (*Chain, bool) {
	if c, ok := tx.staged[offset]; ok {
		return c, true
	}
	return tx.store.Get(offset)
}
