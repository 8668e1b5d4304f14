package arena

import (
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/joshuapare/espgc/internal/buf"
	"github.com/joshuapare/espgc/internal/format"
	"github.com/joshuapare/espgc/internal/pages"
)

// CellID is the index of a cell inside its arena.
type CellID uint16

// Backing selects where arena memory comes from.
type Backing uint8

const (
	// BackingPages maps anonymous pages outside the Go heap (Go slice on
	// platforms without mmap). Cells and both bitmaps share one mapping.
	BackingPages Backing = iota
	// BackingGo allocates cells and bitmaps as ordinary Go slices.
	BackingGo
)

func (b Backing) String() string {
	switch b {
	case BackingPages:
		return "pages"
	case BackingGo:
		return "go"
	}
	return fmt.Sprintf("backing(%d)", uint8(b))
}

// Arena is a fixed array of cells with block and mark bitmaps.
//
// NOT thread-safe.
type Arena struct {
	mem     []byte   // cells * format.CellSize
	block   []uint64 // 1 bit per cell
	mark    []uint64 // 1 bit per cell
	cells   int
	backing Backing
	release func() error
}

// New creates an arena of cells cells with every cell empty.
func New(cells int, backing Backing) (*Arena, error) {
	if cells < 1 || cells > format.MaxCells {
		return nil, fmt.Errorf("arena: capacity %d cells out of range [1, %d]", cells, format.MaxCells)
	}
	words := format.BitmapWords(cells)
	a := &Arena{cells: cells, backing: backing}

	switch backing {
	case BackingPages:
		raw, release, err := pages.Map(format.ArenaBytes(cells))
		if err != nil {
			return nil, fmt.Errorf("arena: %w", err)
		}
		memLen := cells * format.CellSize
		a.mem = raw[:memLen:memLen]
		a.block = wordsAt(raw, memLen, words)
		a.mark = wordsAt(raw, memLen+words*8, words)
		a.release = release
	case BackingGo:
		a.mem = make([]byte, cells*format.CellSize)
		a.block = make([]uint64, words)
		a.mark = make([]uint64, words)
		a.release = func() error { return nil }
	default:
		return nil, fmt.Errorf("arena: unknown backing %v", backing)
	}

	a.setRange(a.mark, 0, cells, true)
	return a, nil
}

// wordsAt views raw[off:] as n uint64 words. off is a multiple of 8 inside
// a page-aligned mapping.
func wordsAt(raw []byte, off, n int) []uint64 {
	return unsafe.Slice((*uint64)(unsafe.Pointer(&raw[off])), n)
}

// Cells returns the arena capacity in cells.
func (a *Arena) Cells() int { return a.cells }

// Backing returns the memory source of the arena.
func (a *Arena) Backing() Backing { return a.backing }

// Close releases the backing memory. The arena must not be used afterwards.
func (a *Arena) Close() error {
	if a.release == nil {
		return nil
	}
	err := a.release()
	a.release = nil
	a.mem, a.block, a.mark = nil, nil, nil
	return err
}

func (a *Arena) check(i int) {
	if uint(i) >= uint(a.cells) {
		panic(fmt.Sprintf("arena: cell %d out of range [0, %d)", i, a.cells))
	}
}

func (a *Arena) checkRange(i, n int) {
	if _, _, err := buf.CheckRange(a.cells, i, n, 1); err != nil {
		panic(fmt.Sprintf("arena: cells [%d, +%d): %v", i, n, err))
	}
}

// IndexOf converts an arena-relative byte offset to the cell id containing
// it. The offset must be cell-aligned and inside the arena.
func (a *Arena) IndexOf(off int) CellID {
	if off&format.CellAlignmentMask != 0 {
		panic(fmt.Sprintf("arena: offset %#x not cell aligned", off))
	}
	i := off >> format.CellShift
	a.check(i)
	return CellID(i)
}

// Offset returns the byte offset of p within the cell memory. ok is false
// when p points elsewhere.
func (a *Arena) Offset(p *byte) (off int, ok bool) {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.mem)))
	addr := uintptr(unsafe.Pointer(p))
	if p == nil || addr < base || addr-base >= uintptr(len(a.mem)) {
		return 0, false
	}
	return int(addr - base), true
}

// IndexOfPtr converts a pointer into arena memory to its cell id.
func (a *Arena) IndexOfPtr(p *byte) CellID {
	off, ok := a.Offset(p)
	if !ok {
		panic(fmt.Sprintf("arena: address %p outside arena", p))
	}
	return a.IndexOf(off)
}

// OffsetOf returns the byte offset of cell i.
func (a *Arena) OffsetOf(i CellID) int {
	a.check(int(i))
	return int(i) << format.CellShift
}

// Cell returns the 8 bytes of cell i.
func (a *Arena) Cell(i int) []byte {
	a.check(i)
	off := i << format.CellShift
	return a.mem[off : off+format.CellSize : off+format.CellSize]
}

// Bytes returns the memory of cells [i, i+n).
func (a *Arena) Bytes(i, n int) []byte {
	a.checkRange(i, n)
	lo, hi := i<<format.CellShift, (i+n)<<format.CellShift
	return a.mem[lo:hi:hi]
}

// Zero clears the memory of cells [i, i+n).
func (a *Arena) Zero(i, n int) {
	clear(a.Bytes(i, n))
}

// Word reads link word slot (0 or 1) of cell i.
func (a *Arena) Word(i, slot int) uint32 {
	return buf.U32LE(a.Cell(i)[slot*format.WordSize:])
}

// SetWord writes link word slot (0 or 1) of cell i.
func (a *Arena) SetWord(i, slot int, v uint32) {
	buf.PutU32LE(a.Cell(i)[slot*format.WordSize:], v)
}

func bit(i int) (int, uint64) {
	return i / format.BitmapWordBits, 1 << uint(i%format.BitmapWordBits)
}

func (a *Arena) set(i int, s State) {
	a.check(i)
	w, m := bit(i)
	if s&0b10 != 0 {
		a.block[w] |= m
	} else {
		a.block[w] &^= m
	}
	if s&0b01 != 0 {
		a.mark[w] |= m
	} else {
		a.mark[w] &^= m
	}
}

// State returns the state of cell i.
func (a *Arena) State(i int) State {
	a.check(i)
	w, m := bit(i)
	var s State
	if a.block[w]&m != 0 {
		s |= 0b10
	}
	if a.mark[w]&m != 0 {
		s |= 0b01
	}
	return s
}

// White marks cell i as the unmarked start of an object.
func (a *Arena) White(i int) { a.set(i, White) }

// Black marks cell i as the marked start of an object.
func (a *Arena) Black(i int) { a.set(i, Black) }

// Empty marks cell i as free.
func (a *Arena) Empty(i int) { a.set(i, Empty) }

// Extent marks cell i as an object interior cell.
func (a *Arena) Extent(i int) { a.set(i, Extent) }

func (a *Arena) IsWhite(i int) bool  { return a.State(i) == White }
func (a *Arena) IsBlack(i int) bool  { return a.State(i) == Black }
func (a *Arena) IsEmpty(i int) bool  { return a.State(i) == Empty }
func (a *Arena) IsExtent(i int) bool { return a.State(i) == Extent }
func (a *Arena) IsStart(i int) bool  { return a.State(i).IsStart() }

// SetEmptyRange marks cells [i, i+n) empty.
func (a *Arena) SetEmptyRange(i, n int) {
	a.checkRange(i, n)
	a.setRange(a.block, i, n, false)
	a.setRange(a.mark, i, n, true)
}

// SetExtentRange marks cells [i, i+n) as object interior.
func (a *Arena) SetExtentRange(i, n int) {
	a.checkRange(i, n)
	a.setRange(a.block, i, n, false)
	a.setRange(a.mark, i, n, false)
}

func (a *Arena) setRange(bm []uint64, i, n int, on bool) {
	for n > 0 {
		w, off := i/format.BitmapWordBits, i%format.BitmapWordBits
		span := min(format.BitmapWordBits-off, n)
		m := ^uint64(0) >> uint(format.BitmapWordBits-span) << uint(off)
		if on {
			bm[w] |= m
		} else {
			bm[w] &^= m
		}
		i += span
		n -= span
	}
}

// EmptyRun returns the number of consecutive empty cells starting at i,
// stopping at limit.
func (a *Arena) EmptyRun(i, limit int) int {
	if limit > a.cells {
		limit = a.cells
	}
	n := 0
	for j := i; j < limit; {
		w, off := j/format.BitmapWordBits, j%format.BitmapWordBits
		avail := min(format.BitmapWordBits-off, limit-j)
		stop := (a.block[w] | ^a.mark[w]) >> uint(off)
		if stop != 0 {
			if z := bits.TrailingZeros64(stop); z < avail {
				return n + z
			}
		}
		n += avail
		j += avail
	}
	return n
}

// ExtentRun returns the number of consecutive extent cells starting at i,
// stopping at limit.
func (a *Arena) ExtentRun(i, limit int) int {
	if limit > a.cells {
		limit = a.cells
	}
	n := 0
	for j := i; j < limit; {
		w, off := j/format.BitmapWordBits, j%format.BitmapWordBits
		avail := min(format.BitmapWordBits-off, limit-j)
		stop := (a.block[w] | a.mark[w]) >> uint(off)
		if stop != 0 {
			if z := bits.TrailingZeros64(stop); z < avail {
				return n + z
			}
		}
		n += avail
		j += avail
	}
	return n
}

// Counts tallies the states of all cells.
type Counts struct {
	White, Black, Empty, Extent int
}

// Count returns how many cells are in each state.
func (a *Arena) Count() Counts {
	var c Counts
	for w := range a.block {
		valid := ^uint64(0)
		if rem := a.cells - w*format.BitmapWordBits; rem < format.BitmapWordBits {
			valid = 1<<uint(rem) - 1
		}
		b, m := a.block[w]&valid, a.mark[w]&valid
		c.Black += bits.OnesCount64(b & m)
		c.White += bits.OnesCount64(b &^ m)
		c.Empty += bits.OnesCount64(m &^ b)
		c.Extent += bits.OnesCount64(valid &^ (b | m))
	}
	return c
}
