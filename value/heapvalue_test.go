package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var heapKindChecks = map[Kind]func(HeapValue) bool{
	KindNone:  HeapValue.IsNone,
	KindEmpty: HeapValue.IsEmpty,
	KindBool:  HeapValue.IsBool,
	KindInt:   HeapValue.IsInt,
	KindFloat: HeapValue.IsFloat,
	KindChar:  HeapValue.IsChar,
	KindRef:   HeapValue.IsRef,
}

func assertOnlyHeapKind(t *testing.T, h HeapValue, want Kind) {
	t.Helper()
	assert.Equal(t, want, h.Kind(), "kind of %#08x", uint32(h))
	for k, is := range heapKindChecks {
		assert.Equal(t, k == want, is(h), "Is%s(%#08x)", k, uint32(h))
	}
}

func TestHeapValue_Specials(t *testing.T) {
	assertOnlyHeapKind(t, HeapNone, KindNone)
	assertOnlyHeapKind(t, HeapEmpty, KindEmpty)
	assertOnlyHeapKind(t, HeapTrue, KindBool)
	assertOnlyHeapKind(t, HeapFalse, KindBool)
	assert.True(t, HeapBool(true).AsBool())
	assert.False(t, HeapBool(false).AsBool())
}

func TestHeapValue_IntRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 1000, -1000, MaxHeapInt, MinHeapInt} {
		h := HeapInt(n)
		assertOnlyHeapKind(t, h, KindInt)
		assert.Equal(t, n, h.AsInt())
	}
	assert.Panics(t, func() { HeapInt(MaxHeapInt + 1) })
	assert.Panics(t, func() { HeapInt(MinHeapInt - 1) })
}

func TestHeapValue_CharRoundTrip(t *testing.T) {
	for _, r := range []rune{0, 'z', 'ß', 0x10000, MaxChar} {
		h := HeapChar(r)
		assertOnlyHeapKind(t, h, KindChar)
		assert.Equal(t, r, h.AsChar())
	}
}

func TestHeapValue_RefRoundTrip(t *testing.T) {
	for _, r := range []Ref{NewRef(0, 0), NewRef(5, 100), NewRef(MaxArenas-1, 0xFFFF)} {
		h := HeapRef(r)
		assertOnlyHeapKind(t, h, KindRef)
		assert.Equal(t, r, h.AsRef())
	}
}

func TestHeapValue_InvalidPatterns(t *testing.T) {
	for _, bits := range []uint32{18, 0x22, uint32(MaxChar+1)<<4 | 14} {
		h := HeapValue(bits)
		assert.Equal(t, KindInvalid, h.Kind(), "%#08x", bits)
		assert.Equal(t, None, h.Live())
	}
}

func TestToHeap(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		ok   bool
	}{
		{"none", None, true},
		{"empty", Empty, true},
		{"true", True, true},
		{"false", False, true},
		{"small int", MakeInt(-12345), true},
		{"heap int max", MakeInt(MaxHeapInt), true},
		{"wide int", MakeInt(MaxHeapInt + 1), false},
		{"float", MakeFloat(1.5), false},
		{"char", MakeChar('q'), true},
		{"ref", MakeRef(NewRef(2, 9)), true},
		{"invalid", Value(3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := ToHeap(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.in, h.Live())
				assert.Equal(t, tt.in.Kind(), h.Kind())
			}
		})
	}
}

func TestHeapValue_ImmediatesNeverAliasRefs(t *testing.T) {
	for _, h := range []HeapValue{HeapNone, HeapEmpty, HeapTrue, HeapFalse, HeapInt(0), HeapInt(-1), HeapChar(0)} {
		assert.False(t, h.IsRef(), "%v", h)
	}
}
