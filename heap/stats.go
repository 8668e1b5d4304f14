package heap

import "github.com/joshuapare/espgc/heap/alloc"

// Stats is a snapshot of heap-wide counters.
type Stats struct {
	Arenas           int
	Cells            int // capacity across arenas
	FreeCells        int // Quipu + fragments + bump, across arenas
	LiveCells        int
	Roots            int
	Attachments      int
	Allocations      int
	Frees            int // explicit Free calls
	Boxed            int // FLOAT/LONG objects created by boxing
	BarrierHits      int // objects newly marked dirty
	Collections      int
	MajorCollections int
	MinorCollections int
	Owners           []alloc.Stats // indexed by arena number
}

// Stats returns a snapshot of the heap counters.
func (h *Heap) Stats() Stats {
	s := h.stats
	s.Arenas = len(h.owners)
	s.Roots = len(h.roots)
	s.Attachments = len(h.attached)
	s.Owners = make([]alloc.Stats, len(h.owners))
	for i, o := range h.owners {
		s.Cells += o.Arena().Cells()
		s.FreeCells += o.Free()
		s.Owners[i] = o.Stats()
	}
	s.LiveCells = s.Cells - s.FreeCells
	return s
}
