package object

import (
	"fmt"

	"github.com/joshuapare/espgc/heap"
	"github.com/joshuapare/espgc/value"
)

// NewTuple allocates a TUPLE holding vals. Values that need boxing are
// boxed into fresh objects.
func NewTuple(h *heap.Heap, vals ...value.Value) (value.Ref, error) {
	ref, err := h.Allocate(value.TypeTuple, len(vals)*heap.SlotSize)
	if err != nil {
		return value.Nil, fmt.Errorf("object: tuple of %d: %w", len(vals), err)
	}
	for i, v := range vals {
		if err := h.Set(ref, i, v); err != nil {
			return value.Nil, err
		}
	}
	return ref, nil
}

// Elements returns the slots of a TUPLE as live values. Slots past the
// values stored at construction hold none.
func Elements(h *heap.Heap, ref value.Ref) ([]value.Value, error) {
	hdr, err := h.Header(ref)
	if err != nil {
		return nil, err
	}
	if hdr.Type != value.TypeTuple {
		return nil, fmt.Errorf("%v is %v, not tuple: %w", ref, hdr.Type, ErrType)
	}
	n, _ := h.Slots(ref)
	out := make([]value.Value, n)
	for i := range out {
		if out[i], err = h.Get(ref, i); err != nil {
			return nil, err
		}
	}
	return out, nil
}
