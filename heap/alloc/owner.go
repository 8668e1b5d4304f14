package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/espgc/heap/arena"
	"github.com/joshuapare/espgc/heap/dirty"
	"github.com/joshuapare/espgc/internal/format"
	"github.com/joshuapare/espgc/internal/logger"
	"github.com/joshuapare/espgc/value"
)

// Finalizer releases off-arena resources of an object about to be
// reclaimed. It is only called for types whose NeedsFinalizer is true.
// An error is logged; reclamation proceeds regardless.
type Finalizer func(id, cell int, typ value.Type) error

// Options configures an Owner.
type Options struct {
	ID       int          // Arena number, used in logs and refs
	Finalize Finalizer    // Optional
	Logger   *slog.Logger // Default: logger.L
}

// Owner couples one arena, one Quipu and the bump region.
//
// NOT thread-safe. Allocate, Deallocate and the sweeps must not be called
// reentrantly; a Deallocate issued while a sweep is running panics.
type Owner struct {
	id       int
	a        *arena.Arena
	q        *Quipu
	bump     int // first untouched cell
	end      int // capacity
	dirty    *dirty.Tracker
	finalize Finalizer
	log      *slog.Logger
	stats    Stats
	sweeping bool
}

// NewOwner wraps a fresh arena. The whole arena starts as bump region.
func NewOwner(a *arena.Arena, opts Options) *Owner {
	l := opts.Logger
	if l == nil {
		l = logger.L
	}
	return &Owner{
		id:       opts.ID,
		a:        a,
		q:        NewQuipu(a),
		end:      a.Cells(),
		dirty:    dirty.NewTracker(),
		finalize: opts.Finalize,
		log:      l.With("arena", opts.ID),
	}
}

// ID returns the arena number.
func (o *Owner) ID() int { return o.id }

// Arena returns the underlying arena.
func (o *Owner) Arena() *arena.Arena { return o.a }

// Quipu returns the free-list state.
func (o *Owner) Quipu() *Quipu { return o.q }

// Dirty returns the arena's dirty stack.
func (o *Owner) Dirty() *dirty.Tracker { return o.dirty }

// Bump returns the bump cursor.
func (o *Owner) Bump() int { return o.bump }

// End returns the end of the bump region.
func (o *Owner) End() int { return o.end }

// Free returns every free cell: Quipu blocks, fragments and the bump region.
func (o *Owner) Free() int {
	return o.q.Total() + o.q.Fragments() + (o.end - o.bump)
}

// Stats returns a copy of the counters.
func (o *Owner) Stats() Stats {
	s := o.stats
	s.HeadRotations = o.q.Rotations()
	s.HeadPromotions = o.q.Promotions()
	return s
}

// Allocate carves an object of cells cells (header included) and returns
// its first cell. The header is written with here set, the payload is
// zeroed and the object starts white.
func (o *Owner) Allocate(cells int, typ value.Type) (int, error) {
	if cells < 1 {
		panic(fmt.Sprintf("alloc: allocate of %d cells", cells))
	}
	o.stats.AllocCalls++

	b, ok := o.q.AllocExact(cells)
	switch {
	case ok:
		o.stats.AllocExact++
	case o.end-o.bump >= cells:
		b = o.bump
		o.bump += cells
		o.stats.AllocBump++
	default:
		if cells == 1 && o.q.Fragments() > 0 {
			b, ok = o.takeFragment()
			if ok {
				o.stats.AllocFragment++
				break
			}
		}
		if b, ok = o.q.AllocBestFit(cells); ok {
			o.stats.AllocBestFit++
			o.log.Debug("best fit", "cells", cells, "cell", b, "quipu_total", o.q.Total())
			break
		}
		o.stats.AllocFailed++
		return 0, fmt.Errorf("arena %d: %d cells: %w", o.id, cells, ErrNoSpace)
	}

	o.a.Zero(b, cells)
	format.Header{Cells: cells, Type: typ, Here: true}.Encode(o.a.Cell(b))
	o.a.White(b)
	if cells > 1 {
		o.a.SetExtentRange(b+1, cells-1)
	}
	o.stats.CellsAllocated += cells
	if logger.TraceEnabled(o.log) {
		logger.Trace(o.log, "allocate", "cell", b, "cells", cells, "type", typ, "bump", o.bump)
	}
	return b, nil
}

// takeFragment finds an isolated empty cell below the bump cursor.
func (o *Owner) takeFragment() (int, bool) {
	for i := 0; i < o.bump; {
		if !o.a.IsEmpty(i) {
			i++
			continue
		}
		run := o.a.EmptyRun(i, o.bump)
		if run == 1 {
			o.q.DropFragment()
			return i, true
		}
		i += run
	}
	return 0, false
}

// Header decodes the header of the live object starting at cell.
func (o *Owner) Header(cell int) (format.Header, error) {
	if cell < 0 || cell >= o.bump || !o.a.IsStart(cell) {
		return format.Header{}, fmt.Errorf("arena %d cell %d: %w", o.id, cell, ErrBadRef)
	}
	return format.DecodeHeader(o.a.Cell(cell)), nil
}

// Deallocate reclaims the live object starting at cell. Passing anything
// other than the start of a live object panics.
func (o *Owner) Deallocate(cell int) {
	if o.sweeping {
		panic(fmt.Sprintf("alloc: deallocate of arena %d cell %d during sweep", o.id, cell))
	}
	o.reclaim(cell)
}

// reclaim finalizes the object, merges it with neighbouring free runs and
// returns the result to the bump region or the Quipu.
func (o *Owner) reclaim(cell int) int {
	if cell < 0 || cell >= o.bump || !o.a.IsStart(cell) {
		panic(fmt.Sprintf("alloc: arena %d cell %d is not a live object (double free?)", o.id, cell))
	}
	h := format.DecodeHeader(o.a.Cell(cell))
	if h.Cells < 1 || cell+h.Cells > o.bump || o.a.ExtentRun(cell+1, cell+h.Cells) != h.Cells-1 {
		panic(fmt.Sprintf("alloc: arena %d cell %d header claims %d cells, layout disagrees", o.id, cell, h.Cells))
	}

	if o.finalize != nil && h.Type.NeedsFinalizer() {
		if err := o.finalize(o.id, cell, h.Type); err != nil {
			o.stats.FinalizeErrors++
			o.log.Warn("finalizer failed", "cell", cell, "type", h.Type, "error", err)
		}
	}
	if h.Dirty {
		o.dirty.Remove(cell)
	}

	start, n := cell, h.Cells
	o.stats.FreeCalls++
	o.stats.CellsFreed += n

	if start > 0 && o.a.IsEmpty(start-1) {
		p := start - 1
		switch {
		case o.q.IsHeadEnd(p):
			hc, hs, _ := o.q.Head()
			o.q.PopHead()
			start, n = hc, n+hs
		case o.a.Word(p, format.LinkStart) != 0:
			b := int(o.a.Word(p, format.LinkStart)) - 1
			if b > p {
				panic(fmt.Sprintf("alloc: arena %d cell %d backlink %d points forward", o.id, p, b))
			}
			o.q.Remove(b, p-b+1)
			start, n = b, n+p-b+1
		default:
			o.q.DropFragment()
			start, n = p, n+1
		}
		o.stats.CoalesceBackward++
	}

	if e := start + n; e < o.bump && o.a.IsEmpty(e) {
		run := o.a.EmptyRun(e, o.bump)
		if hc, hs, ok := o.q.Head(); ok && hc == e {
			if hs != run {
				panic(fmt.Sprintf("alloc: arena %d head %d has %d cells, bitmap run is %d", o.id, e, hs, run))
			}
			o.q.PopHead()
		} else {
			o.q.Remove(e, run)
		}
		n += run
		o.stats.CoalesceForward++
	}

	if n != h.Cells {
		o.log.Debug("coalesce", "cell", cell, "cells", h.Cells, "run", start, "run_cells", n)
	}

	if start+n == o.bump {
		o.a.Zero(start, n)
		o.bump = start
		o.stats.BumpFolds++
	} else {
		o.q.Dealloc(start, n)
	}
	o.a.SetEmptyRange(start, n)

	if logger.TraceEnabled(o.log) {
		logger.Trace(o.log, "deallocate", "cell", cell, "cells", h.Cells, "run", start, "run_cells", n, "bump", o.bump)
	}
	return h.Cells
}

// MajorSweep reclaims every white object and demotes black survivors to
// white for the next cycle.
func (o *Owner) MajorSweep() SweepStats {
	o.stats.MajorSweeps++
	return o.sweep(true)
}

// MinorSweep reclaims every white object and leaves black survivors black.
func (o *Owner) MinorSweep() SweepStats {
	o.stats.MinorSweeps++
	return o.sweep(false)
}

func (o *Owner) sweep(major bool) SweepStats {
	o.sweeping = true
	defer func() { o.sweeping = false }()

	var st SweepStats
	for i := 0; i < o.bump; {
		switch o.a.State(i) {
		case arena.White:
			n := o.reclaim(i)
			st.Reclaimed++
			st.CellsReclaimed += n
			i += n
		case arena.Black:
			if major {
				o.a.White(i)
			}
			st.Survivors++
			i += o.cellsAt(i)
		case arena.Empty:
			i += o.a.EmptyRun(i, o.bump)
		default:
			panic(fmt.Sprintf("alloc: arena %d sweep hit extent cell %d", o.id, i))
		}
	}
	o.log.Info("sweep", "major", major, "reclaimed", st.Reclaimed, "cells", st.CellsReclaimed,
		"survivors", st.Survivors, "free", o.Free())
	return st
}

func (o *Owner) cellsAt(i int) int {
	n := format.DecodeHeader(o.a.Cell(i)).Cells
	if n < 1 || i+n > o.bump {
		panic(fmt.Sprintf("alloc: arena %d cell %d has bad size %d", o.id, i, n))
	}
	return n
}

// Whiten demotes every black object to white and clears dirty flags. A
// major collection calls it before marking.
func (o *Owner) Whiten() {
	for i := 0; i < o.bump; {
		switch o.a.State(i) {
		case arena.Empty:
			i += o.a.EmptyRun(i, o.bump)
		case arena.Extent:
			panic(fmt.Sprintf("alloc: arena %d walk hit extent cell %d", o.id, i))
		default:
			o.a.White(i)
			format.SetFlag(o.a.Cell(i), format.FlagDirty, false)
			i += o.cellsAt(i)
		}
	}
	o.dirty.Reset()
}

// MarkDirty records a store into the black object at cell. It sets the
// header dirty flag and pushes the cell once per cycle.
func (o *Owner) MarkDirty(cell int) bool {
	c := o.a.Cell(cell)
	if format.DecodeHeader(c).Dirty {
		return false
	}
	format.SetFlag(c, format.FlagDirty, true)
	o.dirty.Add(cell)
	return true
}

// BlockKind classifies a run reported by Walk.
type BlockKind uint8

const (
	BlockLive BlockKind = iota
	BlockFree
	BlockBump
)

func (k BlockKind) String() string {
	switch k {
	case BlockLive:
		return "live"
	case BlockFree:
		return "free"
	case BlockBump:
		return "bump"
	}
	return "invalid"
}

// Block is one contiguous run of the arena layout.
type Block struct {
	Start int
	Cells int
	Kind  BlockKind
	State arena.State // start cell state; Empty for free runs
}

// Walk reports the arena layout in address order: live objects, free runs
// and finally the bump region. It stops when fn returns false. Walk does
// not trust free-run bookkeeping; run lengths come from the bitmap.
func (o *Owner) Walk(fn func(Block) bool) {
	for i := 0; i < o.bump; {
		s := o.a.State(i)
		var b Block
		switch s {
		case arena.Empty:
			b = Block{Start: i, Cells: o.a.EmptyRun(i, o.bump), Kind: BlockFree, State: s}
		case arena.Extent:
			panic(fmt.Sprintf("alloc: arena %d walk hit extent cell %d", o.id, i))
		default:
			b = Block{Start: i, Cells: o.cellsAt(i), Kind: BlockLive, State: s}
		}
		if !fn(b) {
			return
		}
		i += b.Cells
	}
	if o.bump < o.end {
		fn(Block{Start: o.bump, Cells: o.end - o.bump, Kind: BlockBump, State: arena.Empty})
	}
}
