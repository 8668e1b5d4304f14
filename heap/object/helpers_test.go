package object

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/espgc/heap"
	"github.com/joshuapare/espgc/heap/arena"
	"github.com/joshuapare/espgc/heap/verify"
)

func newTestHeap(t testing.TB) *heap.Heap {
	t.Helper()
	h, err := heap.New(heap.Config{ArenaCells: 512, MaxArenas: 4, Backing: arena.BackingGo})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, h.Close()) })
	return h
}

func assertHeapInvariants(t testing.TB, h *heap.Heap) {
	t.Helper()
	require.NoError(t, verify.Owners(h.Owners()))
}
