package heap

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/espgc/heap/arena"
	"github.com/joshuapare/espgc/heap/verify"
	"github.com/joshuapare/espgc/internal/format"
	"github.com/joshuapare/espgc/value"
)

func newTestHeap(t testing.TB, cells, maxArenas int) *Heap {
	t.Helper()
	h, err := New(Config{ArenaCells: cells, MaxArenas: maxArenas, Backing: arena.BackingGo})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, h.Close()) })
	return h
}

// tuple allocates a tuple with n slots.
func tuple(t testing.TB, h *Heap, n int) value.Ref {
	t.Helper()
	ref, err := h.Allocate(value.TypeTuple, n*SlotSize)
	require.NoError(t, err)
	return ref
}

func assertHeapInvariants(t testing.TB, h *Heap) {
	t.Helper()
	require.NoError(t, verify.Owners(h.Owners()))
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{ArenaCells: 1})
	require.Error(t, err)
	_, err = New(Config{ArenaCells: format.MaxCells + 1})
	require.Error(t, err)
	_, err = New(Config{MaxArenas: value.MaxArenas + 1})
	require.Error(t, err)

	h, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, format.DefaultArenaCells, h.Config().ArenaCells)
	assert.Equal(t, value.MaxArenas, h.Config().MaxArenas)
	require.NoError(t, h.Close())
}

func TestAllocateWritesHeader(t *testing.T) {
	h := newTestHeap(t, 64, 4)
	ref, err := h.Allocate(value.TypeBytes, 13)
	require.NoError(t, err)
	assert.Equal(t, 0, ref.Arena())
	assert.Equal(t, 0, ref.Cell())

	hdr, err := h.Header(ref)
	require.NoError(t, err)
	assert.Equal(t, format.CellsFor(13), hdr.Cells)
	assert.Equal(t, value.TypeBytes, hdr.Type)
	assert.True(t, hdr.Here)

	p, err := h.Payload(ref)
	require.NoError(t, err)
	assert.Len(t, p, 16)

	_, err = h.Allocate(value.Type(99), 8)
	require.Error(t, err)
	_, err = h.Allocate(value.TypeBytes, -1)
	require.Error(t, err)
}

func TestAllocateGrowsAndOrders(t *testing.T) {
	h := newTestHeap(t, 16, 3)

	a := tuple(t, h, 20) // 11 cells
	b := tuple(t, h, 20) // does not fit the 5 left: new arena
	assert.Equal(t, 0, a.Arena())
	assert.Equal(t, 1, b.Arena())

	c := tuple(t, h, 4) // 3 cells: both arenas have 5 free, first in order wins
	assert.Equal(t, 2, h.Stats().Arenas)
	owners := h.Owners()
	for i := 1; i < len(owners); i++ {
		assert.LessOrEqual(t, owners[i-1].Free(), owners[i].Free(), "ascending free order")
	}

	// Freeing grows an arena's free space and moves it to the back.
	require.NoError(t, h.Free(c))
	require.NoError(t, h.Free(a))
	owners = h.Owners()
	assert.Equal(t, 0, owners[len(owners)-1].ID())
	assertHeapInvariants(t, h)
}

func TestAllocatePicksFullestArenaThatFits(t *testing.T) {
	h := newTestHeap(t, 16, 3)
	tuple(t, h, 20)      // arena 0: 5 free
	b := tuple(t, h, 20) // arena 1: 5 free
	require.NoError(t, h.Free(b))

	// Arena 0 has less free space and still fits a 2-cell object.
	ref := tuple(t, h, 2)
	assert.Equal(t, 0, ref.Arena())
}

func TestOutOfMemory(t *testing.T) {
	h := newTestHeap(t, 16, 1)

	_, err := h.Allocate(value.TypeBytes, 16*format.CellSize)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.ErrorIs(t, err, ErrTooLarge)

	for _, size := range []int{math.MaxInt, math.MaxInt - format.HeaderSize, 1 << 62} {
		_, err = h.Allocate(value.TypeBytes, size)
		require.ErrorIs(t, err, ErrOutOfMemory, "size %d", size)
		require.ErrorIs(t, err, ErrTooLarge, "size %d", size)
	}
	assert.Empty(t, h.Owners(), "rejected requests create no arena")

	ref, err := h.Allocate(value.TypeBytes, format.PayloadBytes(16))
	require.NoError(t, err, "the largest object fills a whole arena")
	require.NoError(t, h.Free(ref))

	tuple(t, h, 30) // 16 cells fill the only arena
	_, err = h.Allocate(value.TypeTuple, 0)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.False(t, errors.Is(err, ErrTooLarge))
}

func TestFree(t *testing.T) {
	h := newTestHeap(t, 64, 1)
	ref := tuple(t, h, 4)
	require.NoError(t, h.Free(ref))
	require.ErrorIs(t, h.Free(ref), ErrBadRef, "double free is reported, not fatal")
	require.ErrorIs(t, h.Free(value.Nil), ErrBadRef)
	require.ErrorIs(t, h.Free(value.NewRef(7, 0)), ErrBadRef)
	assert.Equal(t, 1, h.Stats().Frees)
}

func TestCloseIsIdempotent(t *testing.T) {
	h, err := New(Config{ArenaCells: 64, Backing: arena.BackingPages})
	require.NoError(t, err)
	ref := tuple(t, h, 2)
	r := h.Pin(value.MakeRef(ref))

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	r.Release()

	_, err = h.Allocate(value.TypeTuple, 4)
	require.ErrorIs(t, err, ErrClosed)
	_, err = h.Header(ref)
	require.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, CollectStats{Mode: Major}, h.Collect(Major))
}

func TestStats(t *testing.T) {
	h := newTestHeap(t, 64, 2)
	tuple(t, h, 4)
	ref := tuple(t, h, 2)
	r := h.Pin(value.MakeRef(ref))
	defer r.Release()

	s := h.Stats()
	assert.Equal(t, 1, s.Arenas)
	assert.Equal(t, 64, s.Cells)
	assert.Equal(t, 5, s.LiveCells)
	assert.Equal(t, 59, s.FreeCells)
	assert.Equal(t, 1, s.Roots)
	assert.Equal(t, 2, s.Allocations)
	require.Len(t, s.Owners, 1)
	assert.Equal(t, 2, s.Owners[0].AllocBump)
}

func BenchmarkAllocate(b *testing.B) {
	h := newTestHeap(b, format.DefaultArenaCells, value.MaxArenas)
	b.ResetTimer()
	for i := range b.N {
		if _, err := h.Allocate(value.TypeTuple, (i%7)*SlotSize); err != nil {
			b.Fatal(err)
		}
		if i%4096 == 4095 {
			h.Collect(Major)
		}
	}
}

func TestRefOfPayload(t *testing.T) {
	h := newTestHeap(t, 16, 3)
	var refs []value.Ref
	for range 3 {
		refs = append(refs, tuple(t, h, 20)) // 11 cells: one object per arena
	}
	require.Len(t, h.Owners(), 3)

	for _, ref := range refs {
		p, err := h.Payload(ref)
		require.NoError(t, err)
		got, err := h.RefOf(p)
		require.NoError(t, err)
		assert.Equal(t, ref, got)
	}

	p, err := h.Payload(refs[0])
	require.NoError(t, err)
	_, err = h.RefOf(p[format.CellSize:])
	require.ErrorIs(t, err, ErrBadRef, "extent cell")
	_, err = h.RefOf(p[3:])
	require.ErrorIs(t, err, ErrBadRef, "misaligned")
	_, err = h.RefOf(make([]byte, 8))
	require.ErrorIs(t, err, ErrBadRef, "foreign memory")
	_, err = h.RefOf(nil)
	require.ErrorIs(t, err, ErrBadRef)

	stale, err := h.Payload(refs[1])
	require.NoError(t, err)
	require.NoError(t, h.Free(refs[1]))
	_, err = h.RefOf(stale)
	require.ErrorIs(t, err, ErrBadRef, "reclaimed object")
}
