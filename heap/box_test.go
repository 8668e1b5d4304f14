package heap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/espgc/internal/buf"
	"github.com/joshuapare/espgc/value"
)

func TestBoxImmediates(t *testing.T) {
	h := newTestHeap(t, 64, 1)
	for _, v := range []value.Value{
		value.None, value.Empty, value.True, value.False,
		value.MakeInt(0), value.MakeInt(value.MaxHeapInt), value.MakeInt(value.MinHeapInt),
		value.MakeChar('λ'),
	} {
		hv, err := h.Box(v)
		require.NoError(t, err)
		assert.False(t, hv.IsRef(), "%v", v)
		assert.Equal(t, v, h.Unbox(hv))
	}
	assert.Zero(t, h.Stats().Boxed)
	assert.Zero(t, h.Stats().Arenas, "immediates allocate nothing")
}

func TestBoxFloatsAndWideInts(t *testing.T) {
	h := newTestHeap(t, 64, 1)
	for _, v := range []value.Value{
		value.MakeFloat(3.25),
		value.MakeFloat(math.Inf(-1)),
		value.MakeFloat(0),
		value.MakeInt(value.MaxHeapInt + 1),
		value.MakeInt(value.MinInt),
		value.MakeInt(value.MaxInt),
	} {
		hv, err := h.Box(v)
		require.NoError(t, err)
		require.True(t, hv.IsRef(), "%v", v)
		assert.Equal(t, v, h.Unbox(hv))

		hdr, err := h.Header(hv.AsRef())
		require.NoError(t, err)
		if v.IsFloat() {
			assert.Equal(t, value.TypeFloat, hdr.Type)
		} else {
			assert.Equal(t, value.TypeLong, hdr.Type)
		}
	}
	assert.Equal(t, 6, h.Stats().Boxed)

	nan, err := h.Box(value.MakeFloat(math.NaN()))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(h.Unbox(nan).AsFloat()))
}

func TestBoxInt64(t *testing.T) {
	h := newTestHeap(t, 64, 1)

	hv, err := h.BoxInt64(7)
	require.NoError(t, err)
	assert.Equal(t, value.HeapInt(7), hv)

	hv, err = h.BoxInt64(math.MinInt64)
	require.NoError(t, err)
	require.True(t, hv.IsRef())
	n, err := h.UnboxLong(hv.AsRef())
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), n)

	// Too wide for a live int: stays a reference.
	v := h.Unbox(hv)
	require.True(t, v.IsRef())
	assert.Equal(t, hv.AsRef(), v.AsRef())

	f, err := h.Box(value.MakeFloat(1))
	require.NoError(t, err)
	_, err = h.UnboxLong(f.AsRef())
	require.ErrorIs(t, err, ErrBadRef)
}

func TestBoxRejectsInvalidPattern(t *testing.T) {
	h := newTestHeap(t, 64, 1)
	_, err := h.Box(value.Value(4)) // tag-0 payload that is neither special nor ref
	require.ErrorIs(t, err, ErrNotBoxed)
}

func TestBoxOutOfMemory(t *testing.T) {
	h := newTestHeap(t, 2, 1)
	_, err := h.Box(value.MakeFloat(1.5)) // 2 cells: fills the arena
	require.NoError(t, err)
	_, err = h.Box(value.MakeFloat(2.5))
	require.ErrorIs(t, err, ErrOutOfMemory)
}

func TestGetSet(t *testing.T) {
	h := newTestHeap(t, 64, 1)
	ref := tuple(t, h, 3)

	n, err := h.Slots(ref)
	require.NoError(t, err)
	assert.Equal(t, 4, n, "3 slots round up to a whole cell")

	other := tuple(t, h, 1)
	vals := []value.Value{value.MakeInt(-9), value.MakeFloat(2.5), value.MakeRef(other), value.True}
	for i, v := range vals {
		require.NoError(t, h.Set(ref, i, v))
	}
	for i, v := range vals {
		got, err := h.Get(ref, i)
		require.NoError(t, err)
		assert.Equal(t, v, got, "slot %d", i)
	}

	hv, err := h.Slot(ref, 2)
	require.NoError(t, err)
	assert.Equal(t, value.HeapRef(other), hv)

	_, err = h.Get(ref, 4)
	require.ErrorIs(t, err, ErrIndex)
	_, err = h.Get(ref, -1)
	require.ErrorIs(t, err, ErrIndex)
	require.ErrorIs(t, h.Set(ref, 9, value.None), ErrIndex)
}

func TestSlotIndexOverflow(t *testing.T) {
	h := newTestHeap(t, 64, 1)
	ref := tuple(t, h, 2)
	require.NoError(t, h.SetSlot(ref, 0, value.HeapInt(42)))

	// Indexes whose byte offset wraps to zero must not alias slot 0.
	for _, i := range []int{1 << 62, math.MaxInt, math.MinInt, math.MaxInt / SlotSize} {
		_, err := h.Slot(ref, i)
		require.ErrorIs(t, err, ErrIndex, "slot %d", i)
		require.ErrorIs(t, h.SetSlot(ref, i, value.HeapInt(7)), ErrIndex, "slot %d", i)
		require.ErrorIs(t, h.Set(ref, i, value.MakeInt(7)), ErrIndex, "slot %d", i)
	}
	hv, err := h.Slot(ref, 0)
	require.NoError(t, err)
	assert.Equal(t, value.HeapInt(42), hv)
}

func TestSetRejectsDeadTarget(t *testing.T) {
	h := newTestHeap(t, 64, 1)
	ref := tuple(t, h, 1)
	dead := tuple(t, h, 1)
	tuple(t, h, 1)
	require.NoError(t, h.Free(dead))

	require.ErrorIs(t, h.Set(ref, 0, value.MakeRef(dead)), ErrBadRef)
	require.ErrorIs(t, h.SetSlot(ref, 0, value.HeapRef(dead)), ErrBadRef)
}

func TestSlotsOnLeafType(t *testing.T) {
	h := newTestHeap(t, 64, 1)
	ref, err := h.Allocate(value.TypeString, 16)
	require.NoError(t, err)

	_, err = h.Slots(ref)
	require.ErrorIs(t, err, ErrBadRef)
	_, err = h.Get(ref, 0)
	require.ErrorIs(t, err, ErrBadRef)
}

func TestTraceSlotsIgnoresLeaves(t *testing.T) {
	payload := make([]byte, 8)
	buf.PutU32LE(payload, uint32(value.HeapRef(value.NewRef(0, 4))))
	var seen []value.Ref
	TraceSlots(value.TypeBytes, payload, func(r value.Ref) { seen = append(seen, r) })
	assert.Empty(t, seen)

	TraceSlots(value.TypeTuple, payload, func(r value.Ref) { seen = append(seen, r) })
	assert.Equal(t, []value.Ref{value.NewRef(0, 4)}, seen)
}
