// Package alloc provides cell allocation and free-run management inside a
// single arena.
//
// # Overview
//
// Two types cooperate:
//
//   - Quipu: a free-list structure stored inside the arena's own free cells.
//   - Owner: one arena, one Quipu and a bump cursor into the untouched tail.
//
// # Quipu
//
// The Quipu is anchored at the largest known free block, the head. The head's
// cells double as a bucket array: bucket k (word 0 of cell head+k) starts a
// doubly linked chain of free blocks of exactly headSize-k cells. Bucket 0 is
// the head's own next link, a chain of spares with the head's size.
//
//	head (12 cells)
//	┌────────┬────────┬────────┬ ... ┬──────────┐
//	│ b0|12  │ b1|-   │ b2|-   │     │ prev|st  │
//	└────────┴────────┴────────┴ ... ┴──────────┘
//	   │         │        └─→ 10-cell chain
//	   │         └─→ 11-cell chain
//	   └─→ 12-cell spares
//
// All links are cell ids plus one, so a zero word means "none". Single-cell
// free blocks cannot carry a backlink; they are counted as fragments and
// found again only through coalescing.
//
// When a freed block is larger than the head it becomes the new head and the
// old buckets are re-seated at their new offsets (head rotation). When the
// head is taken, the first non-empty bucket is promoted.
//
// # Owner
//
// Allocation order is exact fit, then bump, then best fit:
//
//	cell, err := owner.Allocate(cells, value.TypeTuple)
//	if errors.Is(err, alloc.ErrNoSpace) {
//	    // try another arena
//	}
//
// Deallocation coalesces with the free runs on both sides, folds the result
// into the bump region when it touches the cursor, and otherwise hands it to
// the Quipu. Sweeps reclaim every white object through the same path.
//
// # Accounting
//
// At every quiescent point, per arena:
//
//	live cells + Quipu.Total() + Fragments() + (End() - Bump()) == Cells()
//
// heap/verify checks this and the layout walk.
package alloc
