package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/espgc/internal/format"
)

func newArena(t *testing.T, cells int, backing Backing) *Arena {
	t.Helper()
	a, err := New(cells, backing)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })
	return a
}

func TestNewAllEmpty(t *testing.T) {
	for _, backing := range []Backing{BackingPages, BackingGo} {
		t.Run(backing.String(), func(t *testing.T) {
			a := newArena(t, 130, backing)
			require.Equal(t, 130, a.Cells())
			for i := range a.Cells() {
				require.Equal(t, Empty, a.State(i), "cell %d", i)
			}
			require.Equal(t, Counts{Empty: 130}, a.Count())
			require.Equal(t, 130, a.EmptyRun(0, a.Cells()))
		})
	}
}

func TestNewRejectsCapacity(t *testing.T) {
	_, err := New(0, BackingGo)
	require.Error(t, err)
	_, err = New(format.MaxCells+1, BackingGo)
	require.Error(t, err)
}

func TestStateTransitions(t *testing.T) {
	a := newArena(t, 16, BackingGo)

	a.White(3)
	assert.True(t, a.IsWhite(3))
	assert.True(t, a.IsStart(3))
	a.Black(3)
	assert.True(t, a.IsBlack(3))
	assert.True(t, a.IsStart(3))
	a.Extent(4)
	assert.True(t, a.IsExtent(4))
	assert.False(t, a.IsStart(4))
	a.Empty(3)
	assert.True(t, a.IsEmpty(3))

	// Neighbours untouched.
	assert.True(t, a.IsEmpty(2))
	assert.True(t, a.IsEmpty(5))
}

func TestRangesAcrossWords(t *testing.T) {
	a := newArena(t, 200, BackingGo)

	a.White(60)
	a.SetExtentRange(61, 100)
	require.Equal(t, Counts{White: 1, Extent: 100, Empty: 99}, a.Count())
	require.Equal(t, 100, a.ExtentRun(61, a.Cells()))
	require.Equal(t, 50, a.ExtentRun(61, 111))
	require.Equal(t, 60, a.EmptyRun(0, a.Cells()))
	require.Equal(t, 0, a.EmptyRun(60, a.Cells()))
	require.Equal(t, 39, a.EmptyRun(161, a.Cells()))
	require.Equal(t, 39, a.EmptyRun(161, 1000), "limit clamps to capacity")

	a.SetEmptyRange(60, 101)
	require.Equal(t, Counts{Empty: 200}, a.Count())
}

func TestWordsAndZero(t *testing.T) {
	a := newArena(t, 8, BackingPages)

	a.SetWord(2, 0, 0xDEADBEEF)
	a.SetWord(2, 1, 7)
	require.Equal(t, uint32(0xDEADBEEF), a.Word(2, 0))
	require.Equal(t, uint32(7), a.Word(2, 1))
	require.Equal(t, byte(0xEF), a.Bytes(2, 1)[0])

	a.Zero(2, 1)
	require.Zero(t, a.Word(2, 0))
	require.Zero(t, a.Word(2, 1))
	require.Len(t, a.Bytes(0, 8), 8*format.CellSize)
}

func TestIndexOf(t *testing.T) {
	a := newArena(t, 32, BackingGo)

	require.Equal(t, CellID(0), a.IndexOf(0))
	require.Equal(t, CellID(5), a.IndexOf(40))
	require.Equal(t, 40, a.OffsetOf(5))
	require.Equal(t, CellID(7), a.IndexOfPtr(&a.Cell(7)[0]))

	require.Panics(t, func() { a.IndexOf(3) }, "misaligned")
	require.Panics(t, func() { a.IndexOf(32 * format.CellSize) }, "past end")
	require.Panics(t, func() { a.IndexOf(-8) }, "negative")
}

func TestOutOfRangePanics(t *testing.T) {
	a := newArena(t, 8, BackingGo)
	require.Panics(t, func() { a.State(8) })
	require.Panics(t, func() { a.White(-1) })
	require.Panics(t, func() { a.Bytes(6, 3) })
	require.Panics(t, func() { a.SetEmptyRange(7, 2) })
}

func TestStateString(t *testing.T) {
	require.Equal(t, "extent", Extent.String())
	require.Equal(t, "empty", Empty.String())
	require.Equal(t, "white", White.String())
	require.Equal(t, "black", Black.String())
	require.Equal(t, "invalid", State(9).String())
}

func BenchmarkEmptyRun(b *testing.B) {
	a, err := New(format.DefaultArenaCells, BackingGo)
	require.NoError(b, err)
	b.ResetTimer()
	for range b.N {
		_ = a.EmptyRun(0, a.Cells())
	}
}
