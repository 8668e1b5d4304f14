package heap

import (
	"fmt"
	"time"

	"github.com/joshuapare/espgc/heap/alloc"
	"github.com/joshuapare/espgc/internal/format"
	"github.com/joshuapare/espgc/value"
)

// CollectStats summarises one collection.
type CollectStats struct {
	Mode           Mode
	Roots          int // root slots read
	Marked         int // objects turned black this cycle
	Rescanned      int // dirty objects rescanned (minor only)
	Reclaimed      int
	CellsReclaimed int
	Survivors      int
	Duration       time.Duration
}

// Collect runs a stop-the-world collection and returns its statistics.
// Collecting a closed heap is a no-op.
func (h *Heap) Collect(mode Mode) CollectStats {
	st := CollectStats{Mode: mode}
	if h.closed {
		return st
	}
	start := time.Now()

	if mode == Major {
		for _, o := range h.owners {
			o.Whiten()
		}
	}

	for p := range h.roots {
		st.Roots++
		if v := *p; v.IsRef() {
			st.Marked += h.shade(v.AsRef())
		}
	}
	st.Marked += h.drain()

	if mode == Minor {
		for _, o := range h.owners {
			for _, cell := range o.Dirty().Drain() {
				format.SetFlag(o.Arena().Cell(cell), format.FlagDirty, false)
				if !o.Arena().IsBlack(cell) {
					continue
				}
				st.Rescanned++
				st.Marked += h.scan(value.NewRef(o.ID(), cell))
			}
		}
		st.Marked += h.drain()
	}

	var sw alloc.SweepStats
	for _, o := range h.owners {
		if mode == Major {
			sw.Add(o.MajorSweep())
		} else {
			sw.Add(o.MinorSweep())
		}
	}
	h.resort()

	st.Reclaimed = sw.Reclaimed
	st.CellsReclaimed = sw.CellsReclaimed
	st.Survivors = sw.Survivors
	st.Duration = time.Since(start)

	h.stats.Collections++
	if mode == Major {
		h.stats.MajorCollections++
	} else {
		h.stats.MinorCollections++
	}
	h.log.Info("collect", "mode", mode, "roots", st.Roots, "marked", st.Marked,
		"rescanned", st.Rescanned, "reclaimed", st.Reclaimed, "cells", st.CellsReclaimed,
		"survivors", st.Survivors, "duration", st.Duration)
	return st
}

// shade turns a white object black and queues it for scanning. It returns
// 1 when the object changed colour.
func (h *Heap) shade(ref value.Ref) int {
	if ref.Arena() >= len(h.owners) {
		panic(fmt.Sprintf("heap: reference %v names no arena", ref))
	}
	a := h.owners[ref.Arena()].Arena()
	cell := ref.Cell()
	if cell >= a.Cells() || !a.IsStart(cell) {
		panic(fmt.Sprintf("heap: dangling reference %v", ref))
	}
	if a.IsBlack(cell) {
		return 0
	}
	a.Black(cell)
	h.stack = append(h.stack, ref)
	return 1
}

// drain scans queued objects until the mark stack is empty.
func (h *Heap) drain() int {
	n := 0
	for len(h.stack) > 0 {
		ref := h.stack[len(h.stack)-1]
		h.stack = h.stack[:len(h.stack)-1]
		n += h.scan(ref)
	}
	return n
}

// scan shades the children of ref and returns how many changed colour.
func (h *Heap) scan(ref value.Ref) int {
	o := h.owners[ref.Arena()]
	cell := ref.Cell()
	hdr := format.DecodeHeader(o.Arena().Cell(cell))
	n := 0
	h.cfg.Tracer(hdr.Type, o.Arena().Bytes(cell+format.HeaderCells, hdr.Cells-format.HeaderCells), func(child value.Ref) {
		n += h.shade(child)
	})
	return n
}
