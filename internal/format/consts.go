// Package format describes the in-arena layout shared by the arena, the
// allocator and the heap: cell geometry, the object header record and the
// link words of free blocks.
package format

const (
	// CellSize is the allocation unit in bytes.
	CellSize = 8

	// CellShift is log2(CellSize).
	CellShift = 3

	// CellAlignmentMask is the bitmask used for aligning to cell boundaries.
	CellAlignmentMask = CellSize - 1

	// WordSize is the width of one link or header word.
	WordSize = 4

	// WordsPerCell is the number of words stored in a cell.
	WordsPerCell = CellSize / WordSize

	// MaxCells is the largest arena capacity addressable by a 16-bit cell id.
	MaxCells = 1 << 16

	// BitmapWordBits is the width of one bitmap word.
	BitmapWordBits = 64
)

// Object header layout (first cell of every live block, little-endian):
//
//	Offset  Size  Description
//	0x00    4     size_in_cells, including the header cell
//	0x04    1     object type tag
//	0x05    1     flags (bit0 here, bit1 dirty, bit2 moved)
//	0x06    2     reserved, zero
const (
	HeaderSize   = CellSize
	HeaderCells  = HeaderSize / CellSize
	HeaderCellsO = 0x00
	HeaderTypeO  = 0x04
	HeaderFlagsO = 0x05

	FlagHere  = 1 << 0
	FlagDirty = 1 << 1
	FlagMoved = 1 << 2
)

// Free block layout. Links hold a cell id plus one so that zero means "no
// block"; a zeroed cell is an untracked single-cell fragment.
//
//	first cell: word 0 next, word 1 size in cells
//	last cell:  word 0 prev, word 1 start
//
// The quipu head stores bucket k in word 0 of cell head+k.
const (
	LinkNext  = 0
	LinkSize  = 1
	LinkPrev  = 0
	LinkStart = 1
	LinkSlot  = 0
)

// Default arena geometry: the cell array plus both bitmaps fit in 64 KiB of
// backing memory.
const (
	DefaultArenaBytes = 64 << 10
	DefaultArenaCells = 7936
)
