package format

// Align8 returns n aligned up to the next cell boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
func Align8(n int) int {
	return (n + CellAlignmentMask) & ^CellAlignmentMask
}

// CellsFor returns the number of cells needed for an object with a payload of
// n bytes, header included. The result is at least 1.
//
// Example:
//
//	CellsFor(0)  = 1
//	CellsFor(1)  = 2
//	CellsFor(8)  = 2
//	CellsFor(9)  = 3
func CellsFor(n int) int {
	if n < 0 {
		n = 0
	}
	return Align8(HeaderSize+n) >> CellShift
}

// PayloadBytes returns the payload capacity of an object spanning cells.
func PayloadBytes(cells int) int {
	if cells <= HeaderCells {
		return 0
	}
	return (cells - HeaderCells) << CellShift
}

// BitmapWords returns how many 64-bit words cover cells bits.
func BitmapWords(cells int) int {
	return (cells + BitmapWordBits - 1) / BitmapWordBits
}

// ArenaBytes returns the memory an arena of cells needs: the cell array plus
// two bitmaps.
func ArenaBytes(cells int) int {
	return cells*CellSize + 2*BitmapWords(cells)*(BitmapWordBits/8)
}
