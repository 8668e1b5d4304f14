package alloc

import (
	"fmt"

	"github.com/joshuapare/espgc/heap/arena"
	"github.com/joshuapare/espgc/internal/format"
)

// none marks an absent block.
const none = -1

// Quipu tracks the detached free blocks of one arena.
//
// It only knows about whole blocks; merging neighbours is the Owner's job.
// Callers must keep the bitmap of every tracked block empty.
type Quipu struct {
	a        *arena.Arena
	head     int
	headSize int
	total    int // head + every chained block, fragments excluded
	frags    int // single-cell free blocks

	rotations  int // larger blocks that displaced the head
	promotions int // buckets promoted to head by PopHead
}

// NewQuipu creates an empty Quipu over a.
func NewQuipu(a *arena.Arena) *Quipu {
	return &Quipu{a: a, head: none}
}

// Head returns the head block and its size. ok is false when the Quipu is empty.
func (q *Quipu) Head() (cell, cells int, ok bool) {
	if q.head == none {
		return 0, 0, false
	}
	return q.head, q.headSize, true
}

// IsHeadEnd reports whether cell is the last cell of the head.
func (q *Quipu) IsHeadEnd(cell int) bool {
	return q.head != none && cell == q.head+q.headSize-1
}

// Total returns the number of free cells held in the head and all chains.
func (q *Quipu) Total() int { return q.total }

// Fragments returns the number of untracked single-cell free blocks.
func (q *Quipu) Fragments() int { return q.frags }

// Rotations returns how many times a larger block displaced the head.
func (q *Quipu) Rotations() int { return q.rotations }

// Promotions returns how many times PopHead promoted a chained block.
func (q *Quipu) Promotions() int { return q.promotions }

// link decodes a stored link word, checking it against arena capacity.
func (q *Quipu) link(w uint32) int {
	if w == 0 {
		return none
	}
	c := int(w) - 1
	if c >= q.a.Cells() {
		panic(fmt.Sprintf("alloc: corrupted link %d in arena of %d cells", w, q.a.Cells()))
	}
	return c
}

func enc(c int) uint32 {
	if c == none {
		return 0
	}
	return uint32(c + 1)
}

func (q *Quipu) bucket(k int) int {
	return q.link(q.a.Word(q.head+k, format.LinkSlot))
}

func (q *Quipu) setBucket(k, b int) {
	q.a.SetWord(q.head+k, format.LinkSlot, enc(b))
}

func (q *Quipu) next(b int) int { return q.link(q.a.Word(b, format.LinkNext)) }

func (q *Quipu) setNext(b, n int) { q.a.SetWord(b, format.LinkNext, enc(n)) }

func (q *Quipu) prev(b, cells int) int { return q.link(q.a.Word(b+cells-1, format.LinkPrev)) }

func (q *Quipu) setPrev(b, cells, p int) { q.a.SetWord(b+cells-1, format.LinkPrev, enc(p)) }

// writeBlock stamps the size and start words of a detached block and clears
// its chain links.
func (q *Quipu) writeBlock(b, cells int) {
	q.a.SetWord(b, format.LinkNext, 0)
	q.a.SetWord(b, format.LinkSize, uint32(cells))
	q.a.SetWord(b+cells-1, format.LinkPrev, 0)
	q.a.SetWord(b+cells-1, format.LinkStart, enc(b))
}

// checkBlock panics when the stored size of b disagrees with cells.
func (q *Quipu) checkBlock(b, cells int) {
	if got := int(q.a.Word(b, format.LinkSize)); got != cells {
		panic(fmt.Sprintf("alloc: free block %d records %d cells, expected %d", b, got, cells))
	}
}

func (q *Quipu) bucketFor(cells int) int {
	k := q.headSize - cells
	if k < 0 || k > q.headSize-2 {
		panic(fmt.Sprintf("alloc: no bucket for %d cells under head of %d", cells, q.headSize))
	}
	return k
}

func (q *Quipu) push(k, b, cells int) {
	old := q.bucket(k)
	q.writeBlock(b, cells)
	q.setNext(b, old)
	if old != none {
		q.setPrev(old, cells, b)
	}
	q.setBucket(k, b)
}

func (q *Quipu) unlink(k, b, cells int) {
	n, p := q.next(b), q.prev(b, cells)
	if p == none {
		if q.bucket(k) != b {
			panic(fmt.Sprintf("alloc: block %d has no backlink but is not first in bucket %d", b, k))
		}
		q.setBucket(k, n)
	} else {
		q.setNext(p, n)
	}
	if n != none {
		q.setPrev(n, cells, p)
	}
	q.a.SetWord(b, format.LinkNext, 0)
	q.a.SetWord(b+cells-1, format.LinkPrev, 0)
}

func (q *Quipu) pop(k int) int {
	b := q.bucket(k)
	if b == none {
		return none
	}
	cells := q.headSize - k
	q.checkBlock(b, cells)
	q.unlink(k, b, cells)
	q.total -= cells
	return b
}

// takeHead detaches the head, or a same-size spare when one exists.
func (q *Quipu) takeHead() int {
	if b := q.pop(0); b != none {
		return b
	}
	h := q.head
	q.PopHead()
	return h
}

// AllocExact returns a free block of exactly cells cells, or false.
func (q *Quipu) AllocExact(cells int) (int, bool) {
	if q.head == none || cells < 2 || cells > q.headSize {
		return 0, false
	}
	if cells == q.headSize {
		return q.takeHead(), true
	}
	b := q.pop(q.headSize - cells)
	return b, b != none
}

// AllocBestFit returns the smallest free block of at least cells cells,
// split so that exactly cells cells are handed out. The leftover tail goes
// back through Dealloc; a one-cell leftover becomes a fragment.
func (q *Quipu) AllocBestFit(cells int) (int, bool) {
	if q.head == none || cells < 1 || cells > q.headSize {
		return 0, false
	}
	b, size := none, 0
	for s := max(cells, 2); s < q.headSize; s++ {
		if b = q.pop(q.headSize - s); b != none {
			size = s
			break
		}
	}
	if b == none {
		size = q.headSize
		b = q.takeHead()
	}
	if rest := size - cells; rest > 0 {
		q.Dealloc(b+cells, rest)
	}
	return b, true
}

// Dealloc zeroes the block [b, b+cells) and makes it available. The block
// must already be maximal: the Owner coalesces before calling.
func (q *Quipu) Dealloc(b, cells int) {
	if cells < 1 {
		panic(fmt.Sprintf("alloc: dealloc of %d cells", cells))
	}
	q.a.Zero(b, cells)
	if cells == 1 {
		q.frags++
		return
	}
	q.total += cells

	switch {
	case q.head == none:
		q.head, q.headSize = b, cells
		q.writeBlock(b, cells)
	case cells <= q.headSize:
		q.push(q.bucketFor(cells), b, cells)
	default:
		q.rotate(b, cells)
	}
}

// rotate makes b the new head and demotes the old head into the bucket for
// its size. Existing buckets keep their sizes, so they shift by the growth.
func (q *Quipu) rotate(b, cells int) {
	old, oldSize := q.head, q.headSize
	shift := cells - oldSize

	q.writeBlock(b, cells)
	for k := 0; k <= oldSize-2; k++ {
		w := q.a.Word(old+k, format.LinkSlot)
		q.a.SetWord(b+shift+k, format.LinkSlot, w)
	}
	q.a.Zero(old, oldSize)

	q.head, q.headSize = b, cells
	q.push(shift, old, oldSize)
	q.rotations++
}

// PopHead detaches the head and promotes the first non-empty bucket. The
// detached block's contents are unspecified.
func (q *Quipu) PopHead() {
	if q.head == none {
		panic("alloc: pop of empty quipu")
	}
	old, oldSize := q.head, q.headSize
	q.total -= oldSize

	for k := 0; k <= oldSize-2; k++ {
		if q.bucket(k) == none {
			continue
		}
		n := q.pop(k)
		q.total += oldSize - k // n becomes the head and stays counted
		size := oldSize - k
		for j := 0; j <= size-2; j++ {
			q.a.SetWord(n+j, format.LinkSlot, q.a.Word(old+k+j, format.LinkSlot))
		}
		q.head, q.headSize = n, size
		q.a.SetWord(n, format.LinkSize, uint32(size))
		q.a.SetWord(n+size-1, format.LinkPrev, 0)
		q.a.SetWord(n+size-1, format.LinkStart, enc(n))
		q.promotions++
		return
	}
	q.head, q.headSize = none, 0
}

// Remove detaches the block [b, b+cells) wherever it is tracked. Used when
// the Owner merges a neighbouring free run.
func (q *Quipu) Remove(b, cells int) {
	switch {
	case cells == 1:
		q.DropFragment()
	case b == q.head:
		if cells != q.headSize {
			panic(fmt.Sprintf("alloc: head %d has %d cells, removal claims %d", b, q.headSize, cells))
		}
		q.PopHead()
	default:
		if q.head == none {
			panic(fmt.Sprintf("alloc: remove of block %d from empty quipu", b))
		}
		q.checkBlock(b, cells)
		q.unlink(q.bucketFor(cells), b, cells)
		q.total -= cells
	}
}

// DropFragment forgets one single-cell fragment that the caller absorbed.
func (q *Quipu) DropFragment() {
	if q.frags == 0 {
		panic("alloc: fragment count underflow")
	}
	q.frags--
}

// Walk calls fn for the head and every chained block. bucket is -1 for the
// head. Walk stops when fn returns false.
func (q *Quipu) Walk(fn func(b, cells, bucket int) bool) {
	if q.head == none {
		return
	}
	if !fn(q.head, q.headSize, -1) {
		return
	}
	for k := 0; k <= q.headSize-2; k++ {
		cells := q.headSize - k
		seen := 0
		for b := q.bucket(k); b != none; b = q.next(b) {
			if seen++; seen > q.a.Cells() {
				panic(fmt.Sprintf("alloc: cycle in bucket %d", k))
			}
			if !fn(b, cells, k) {
				return
			}
		}
	}
}
