// Package dirty records black objects that received a reference store after
// they were scanned, so a minor collection can rescan them.
//
// The tracker is a stack of cell ids. The write barrier only pushes a cell
// the first time its header dirty flag flips, so duplicates are rare; Drain
// sorts and deduplicates anyway.
package dirty

import "slices"

// defaultCapacity is the pre-allocated stack size.
const defaultCapacity = 64

// Tracker accumulates dirty cell ids for one arena.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	cells []int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{cells: make([]int, 0, defaultCapacity)}
}

// Add pushes cell on the stack.
func (t *Tracker) Add(cell int) {
	t.cells = append(t.cells, cell)
}

// Len returns the number of pushed entries, duplicates included.
func (t *Tracker) Len() int { return len(t.cells) }

// Drain returns the pushed cells sorted and deduplicated, and empties the
// tracker. The returned slice is owned by the caller.
func (t *Tracker) Drain() []int {
	if len(t.cells) == 0 {
		return nil
	}
	out := slices.Clone(t.cells)
	slices.Sort(out)
	out = slices.Compact(out)
	t.cells = t.cells[:0]
	return out
}

// Remove drops every entry for cell. Used when a dirty object is reclaimed
// before the next drain.
func (t *Tracker) Remove(cell int) {
	t.cells = slices.DeleteFunc(t.cells, func(c int) bool { return c == cell })
}

// Reset discards all entries.
func (t *Tracker) Reset() {
	t.cells = t.cells[:0]
}
