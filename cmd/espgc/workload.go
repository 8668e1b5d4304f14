package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/joshuapare/espgc/heap"
	"github.com/joshuapare/espgc/heap/object"
	"github.com/joshuapare/espgc/heap/verify"
	"github.com/joshuapare/espgc/internal/logger"
	"github.com/joshuapare/espgc/value"
)

// workloadOptions parameterises a seeded random mutator.
type workloadOptions struct {
	Seed         uint64
	Ops          int
	ArenaCells   int
	MaxArenas    int
	Backing      string
	CollectEvery int  // operations between collections
	MajorEvery   int  // every n-th collection is major
	Verify       bool // check invariants after every collection
}

func defaultWorkloadOptions() workloadOptions {
	return workloadOptions{
		Seed:         1,
		Ops:          10000,
		ArenaCells:   1024,
		MaxArenas:    8,
		Backing:      "pages",
		CollectEvery: 200,
		MajorEvery:   4,
	}
}

// workloadReport summarises a run.
type workloadReport struct {
	Seed           uint64        `json:"seed"`
	Ops            int           `json:"ops"`
	Allocations    int           `json:"allocations"`
	Links          int           `json:"links"`
	OutOfMemory    int           `json:"out_of_memory"`
	Collections    int           `json:"collections"`
	Major          int           `json:"major"`
	Minor          int           `json:"minor"`
	Marked         int           `json:"marked"`
	Rescanned      int           `json:"rescanned"`
	Reclaimed      int           `json:"reclaimed"`
	CellsReclaimed int           `json:"cells_reclaimed"`
	Verified       int           `json:"verified"`
	Duration       time.Duration `json:"duration_ns"`
	Heap           heap.Stats    `json:"heap"`
}

// workload is a random mutator over a heap. It keeps some objects pinned,
// links objects to each other and collects on a fixed schedule.
type workload struct {
	opts  workloadOptions
	h     *heap.Heap
	rng   *rand.Rand
	roots []*heap.Root
	objs  []value.Ref
	rep   workloadReport
}

var words = []string{"arena", "cell", "quipu", "bump", "mark", "sweep", "root", "extent", "café"}

func newWorkload(opts workloadOptions) (*workload, error) {
	backing, err := parseBacking(opts.Backing)
	if err != nil {
		return nil, err
	}
	if opts.CollectEvery < 1 || opts.MajorEvery < 1 {
		return nil, errors.New("collect-every and major-every must be positive")
	}
	h, err := heap.New(heap.Config{
		ArenaCells: opts.ArenaCells,
		MaxArenas:  opts.MaxArenas,
		Backing:    backing,
	})
	if err != nil {
		return nil, err
	}
	return &workload{
		opts: opts,
		h:    h,
		rng:  rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		rep:  workloadReport{Seed: opts.Seed, Ops: opts.Ops},
	}, nil
}

// Close releases the heap.
func (w *workload) Close() error {
	return w.h.Close()
}

// Run performs the configured number of operations and a final major
// collection.
func (w *workload) Run() (workloadReport, error) {
	start := time.Now()
	for i := range w.opts.Ops {
		if err := w.step(); err != nil {
			return w.rep, fmt.Errorf("op %d: %w", i, err)
		}
		if (i+1)%w.opts.CollectEvery == 0 {
			mode := heap.Minor
			if (w.rep.Collections+1)%w.opts.MajorEvery == 0 {
				mode = heap.Major
			}
			if err := w.collect(mode); err != nil {
				return w.rep, err
			}
		}
	}
	if err := w.collect(heap.Major); err != nil {
		return w.rep, err
	}
	w.rep.Duration = time.Since(start)
	w.rep.Heap = w.h.Stats()
	return w.rep, nil
}

func (w *workload) step() error {
	switch n := w.rng.IntN(100); {
	case n < 45 || len(w.objs) < 2:
		return w.allocate()
	case n < 75:
		return w.link()
	case n < 85:
		return w.store()
	default:
		w.unpin()
		return nil
	}
}

func (w *workload) allocate() error {
	var (
		ref value.Ref
		err error
	)
	switch n := w.rng.IntN(100); {
	case n < 60:
		ref, err = w.h.Allocate(value.TypeTuple, (1+w.rng.IntN(8))*heap.SlotSize)
	case n < 85:
		ref, err = object.NewString(w.h, words[w.rng.IntN(len(words))])
	case n < 95:
		ref, err = object.NewList(w.h, w.rng.IntN(4))
	default:
		ref, err = object.NewBuffer(w.h, 16+w.rng.IntN(256))
	}
	if errors.Is(err, heap.ErrOutOfMemory) {
		w.rep.OutOfMemory++
		return w.collect(heap.Major)
	}
	if err != nil {
		return err
	}
	w.rep.Allocations++
	w.objs = append(w.objs, ref)
	if w.rng.IntN(10) < 3 {
		w.roots = append(w.roots, w.h.Pin(value.MakeRef(ref)))
	}
	return nil
}

// link stores a reference to one object into another that has slots.
func (w *workload) link() error {
	src := w.objs[w.rng.IntN(len(w.objs))]
	dst := w.objs[w.rng.IntN(len(w.objs))]
	hdr, err := w.h.Header(src)
	if err != nil {
		return err
	}
	switch hdr.Type {
	case value.TypeTuple:
		n, _ := w.h.Slots(src)
		err = w.h.Set(src, w.rng.IntN(n), value.MakeRef(dst))
	case value.TypeList:
		err = object.Append(w.h, src, value.MakeRef(dst))
	default:
		return nil
	}
	if errors.Is(err, heap.ErrOutOfMemory) {
		w.rep.OutOfMemory++
		return w.collect(heap.Major)
	}
	if err == nil {
		w.rep.Links++
	}
	return err
}

// store writes an immediate or boxed number into a tuple slot.
func (w *workload) store() error {
	src := w.objs[w.rng.IntN(len(w.objs))]
	hdr, err := w.h.Header(src)
	if err != nil || hdr.Type != value.TypeTuple {
		return err
	}
	v := value.MakeInt(int64(w.rng.IntN(1 << 20)))
	switch w.rng.IntN(3) {
	case 0:
		v = value.MakeFloat(w.rng.Float64())
	case 1:
		v = value.MakeInt(1<<40 + int64(w.rng.IntN(1000)))
	}
	n, _ := w.h.Slots(src)
	err = w.h.Set(src, w.rng.IntN(n), v)
	if errors.Is(err, heap.ErrOutOfMemory) {
		w.rep.OutOfMemory++
		return w.collect(heap.Major)
	}
	return err
}

func (w *workload) unpin() {
	if len(w.roots) == 0 {
		return
	}
	i := w.rng.IntN(len(w.roots))
	w.roots[i].Release()
	w.roots[i] = w.roots[len(w.roots)-1]
	w.roots = w.roots[:len(w.roots)-1]
}

// collect runs one collection and forgets objects it reclaimed.
func (w *workload) collect(mode heap.Mode) error {
	st := w.h.Collect(mode)
	w.rep.Collections++
	if mode == heap.Major {
		w.rep.Major++
	} else {
		w.rep.Minor++
	}
	w.rep.Marked += st.Marked
	w.rep.Rescanned += st.Rescanned
	w.rep.Reclaimed += st.Reclaimed
	w.rep.CellsReclaimed += st.CellsReclaimed
	logger.Debug("collect", "mode", mode, "roots", st.Roots, "marked", st.Marked,
		"reclaimed", st.Reclaimed, "survivors", st.Survivors, "duration", st.Duration)

	live := w.objs[:0]
	for _, ref := range w.objs {
		if _, err := w.h.Header(ref); err == nil {
			live = append(live, ref)
		}
	}
	w.objs = live

	if w.opts.Verify {
		if err := verify.Owners(w.h.Owners()); err != nil {
			return fmt.Errorf("after %s collection %d: %w", mode, w.rep.Collections, err)
		}
		w.rep.Verified++
	}
	return nil
}
