// Package arena implements the fixed-capacity cell store that every heap
// object lives in.
//
// An Arena is an array of 8-byte cells plus two bitmaps with one bit per
// cell. The pair of bits (block, mark) gives each cell one of four states:
//
//	block mark  state
//	  0    0    extent  (interior cell of a live object)
//	  0    1    empty   (part of a free run)
//	  1    0    white   (first cell of an unmarked object)
//	  1    1    black   (first cell of a marked object)
//
// A fresh arena has every cell empty. The arena knows nothing about free
// lists or object types; the allocator in heap/alloc layers those on top.
//
// Cell ids are 16 bits wide, which bounds an arena to format.MaxCells cells.
// Any index outside [0, Cells()) is a programming error and panics.
package arena
