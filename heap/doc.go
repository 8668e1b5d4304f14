// Package heap ties arenas together into a collected object heap.
//
// A Heap owns a growing set of arena owners (heap/alloc), kept ordered by
// ascending free space so allocation packs the fullest arena that still
// fits. It also owns the root set, drives mark/sweep collection and boxes
// live values into their 32-bit heap form.
//
// # Allocation
//
//	h, err := heap.New(heap.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer h.Close()
//
//	ref, err := h.Allocate(value.TypeTuple, 4*4)
//	if errors.Is(err, heap.ErrOutOfMemory) {
//	    // collect and retry, or give up
//	}
//
// # Roots and collection
//
// Roots are addresses of live Values. A collection marks everything
// reachable from them and sweeps the rest:
//
//	r := h.Pin(value.MakeRef(ref))
//	defer r.Release()
//	stats := h.Collect(heap.Major)
//
// A major collection whitens every object first. A minor collection keeps
// objects that survived earlier cycles black and rescans only those written
// since (the dirty set fed by Set's write barrier).
//
// # Concurrency
//
// A Heap is NOT safe for concurrent use. One Heap per execution context.
package heap
