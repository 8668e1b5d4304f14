package buf

import (
	"math"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestMulOverflowSafe(t *testing.T) {
	if p, ok := MulOverflowSafe(7, 8); !ok || p != 56 {
		t.Fatalf("MulOverflowSafe(7,8)=%d,%v want 56,true", p, ok)
	}
	if p, ok := MulOverflowSafe(0, math.MaxInt); !ok || p != 0 {
		t.Fatalf("zero operand should succeed")
	}
	if _, ok := MulOverflowSafe(math.MaxInt/2, 3); ok {
		t.Fatalf("expected overflow")
	}
	if _, ok := MulOverflowSafe(-1, 3); ok {
		t.Fatalf("negative operand should fail")
	}
}

func TestCheckRange(t *testing.T) {
	lo, hi, err := CheckRange(64, 2, 3, 8)
	if err != nil || lo != 16 || hi != 40 {
		t.Fatalf("CheckRange = %d,%d,%v want 16,40,nil", lo, hi, err)
	}
	if _, _, err := CheckRange(64, 0, 8, 8); err != nil {
		t.Fatalf("exact fit should pass: %v", err)
	}
	if _, _, err := CheckRange(64, 7, 2, 8); err == nil {
		t.Fatalf("range past end should fail")
	}
	if _, _, err := CheckRange(64, -1, 1, 8); err == nil {
		t.Fatalf("negative index should fail")
	}
	if _, _, err := CheckRange(64, 0, math.MaxInt, 8); err == nil {
		t.Fatalf("overflowing count should fail")
	}
}

func TestSlice(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	got, ok := Slice(data, 1, 3)
	if !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if cap(got) != 3 {
		t.Fatalf("Slice should cap the result, cap=%d", cap(got))
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if _, ok := Slice(data, 5, 0); !ok {
		t.Fatalf("Slice should allow an empty range at the end")
	}
	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
}
