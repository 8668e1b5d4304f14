package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false on
// overflow or when either operand is negative.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// CheckRange validates that n units of unitSize bytes starting at unit index
// first lie inside a buffer of bufLen bytes. It returns the byte offsets of
// the range.
//
//	lo, hi, err := buf.CheckRange(len(mem), cell, cells, format.CellSize)
//	if err != nil {
//	    return fmt.Errorf("object: %w", err)
//	}
func CheckRange(bufLen, first, n, unitSize int) (lo, hi int, err error) {
	if first < 0 {
		return 0, 0, fmt.Errorf("negative index: %d", first)
	}
	if n < 0 {
		return 0, 0, fmt.Errorf("negative count: %d", n)
	}
	lo, ok := MulOverflowSafe(first, unitSize)
	if !ok {
		return 0, 0, fmt.Errorf("overflow: index=%d * unit=%d", first, unitSize)
	}
	size, ok := MulOverflowSafe(n, unitSize)
	if !ok {
		return 0, 0, fmt.Errorf("overflow: count=%d * unit=%d", n, unitSize)
	}
	hi, ok = AddOverflowSafe(lo, size)
	if !ok {
		return 0, 0, fmt.Errorf("overflow: offset=%d + size=%d", lo, size)
	}
	if hi > bufLen {
		return 0, 0, fmt.Errorf("bounds: end=%d > len=%d", hi, bufLen)
	}
	return lo, hi, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end:end], true
}
