package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/espgc/heap/arena"
	"github.com/joshuapare/espgc/value"
)

func newTestOwner(t testing.TB, cells int) *Owner {
	t.Helper()
	a, err := arena.New(cells, arena.BackingGo)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return NewOwner(a, Options{})
}

// mustAlloc allocates and records the object in live.
func mustAlloc(t testing.TB, o *Owner, live map[int]int, cells int) int {
	t.Helper()
	c, err := o.Allocate(cells, value.TypeTuple)
	require.NoError(t, err)
	live[c] = cells
	return c
}

func free(o *Owner, live map[int]int, cell int) {
	o.Deallocate(cell)
	delete(live, cell)
}

// assertInvariants checks conservation, the layout walk and that the Quipu
// tracks exactly the free runs the bitmap shows.
func assertInvariants(t testing.TB, o *Owner, live map[int]int) {
	t.Helper()
	a := o.Arena()

	liveCells := 0
	for c, n := range live {
		liveCells += n
		h, err := o.Header(c)
		require.NoError(t, err)
		require.Equal(t, n, h.Cells, "header of cell %d", c)
	}
	require.Equal(t, a.Cells(), liveCells+o.Quipu().Total()+o.Quipu().Fragments()+o.End()-o.Bump(),
		"conservation")
	require.Equal(t, a.Cells()-liveCells, o.Free())

	covered, frags, nlive := 0, 0, 0
	prevFree := false
	runs := map[int]int{}
	o.Walk(func(b Block) bool {
		require.Equal(t, covered, b.Start, "layout gap")
		covered += b.Cells
		switch b.Kind {
		case BlockFree:
			require.False(t, prevFree, "adjacent free runs at %d", b.Start)
			if b.Cells == 1 {
				frags++
			} else {
				runs[b.Start] = b.Cells
			}
			prevFree = true
		case BlockLive:
			nlive++
			require.Equal(t, live[b.Start], b.Cells, "live object at %d", b.Start)
			prevFree = false
		case BlockBump:
			require.False(t, prevFree, "free run abuts bump")
		}
		return true
	})
	require.Equal(t, a.Cells(), covered, "layout coverage")
	require.Equal(t, len(live), nlive)
	require.Equal(t, frags, o.Quipu().Fragments(), "fragment count")

	tracked := map[int]int{}
	o.Quipu().Walk(func(b, cells, _ int) bool {
		_, dup := tracked[b]
		require.False(t, dup, "block %d tracked twice", b)
		tracked[b] = cells
		return true
	})
	require.Equal(t, runs, tracked, "quipu blocks vs bitmap runs")
}
