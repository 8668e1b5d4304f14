package object

import (
	"fmt"

	"github.com/joshuapare/espgc/heap"
	"github.com/joshuapare/espgc/internal/buf"
	"github.com/joshuapare/espgc/value"
)

const (
	listLenSlot  = 0
	listDataSlot = 1
	listMinCap   = 4
)

// slotBytes returns the payload size of n slots.
func slotBytes(n int) (int, error) {
	size, ok := buf.MulOverflowSafe(n, heap.SlotSize)
	if !ok {
		return 0, fmt.Errorf("object: %d slots: %w", n, ErrRange)
	}
	return size, nil
}

// NewList allocates an empty LIST with room for capacity elements.
func NewList(h *heap.Heap, capacity int) (value.Ref, error) {
	size, err := slotBytes(capacity)
	if err != nil {
		return value.Nil, err
	}
	ref, err := h.Allocate(value.TypeList, 2*heap.SlotSize)
	if err != nil {
		return value.Nil, fmt.Errorf("object: list: %w", err)
	}
	if err := h.SetSlot(ref, listLenSlot, value.HeapInt(0)); err != nil {
		return value.Nil, err
	}
	if capacity > 0 {
		data, err := h.Allocate(value.TypeTuple, size)
		if err != nil {
			return value.Nil, fmt.Errorf("object: list storage: %w", err)
		}
		if err := h.SetSlot(ref, listDataSlot, value.HeapRef(data)); err != nil {
			return value.Nil, err
		}
	}
	return ref, nil
}

// list returns the length and backing tuple of a LIST.
func list(h *heap.Heap, ref value.Ref) (int, value.Ref, error) {
	hdr, err := h.Header(ref)
	if err != nil {
		return 0, value.Nil, err
	}
	if hdr.Type != value.TypeList {
		return 0, value.Nil, fmt.Errorf("%v is %v, not list: %w", ref, hdr.Type, ErrType)
	}
	n, _ := h.Slot(ref, listLenSlot)
	data, _ := h.Slot(ref, listDataSlot)
	if !data.IsRef() {
		return int(n.AsInt()), value.Nil, nil
	}
	return int(n.AsInt()), data.AsRef(), nil
}

// Len returns the number of elements in a LIST.
func Len(h *heap.Heap, ref value.Ref) (int, error) {
	n, _, err := list(h, ref)
	return n, err
}

// Cap returns the capacity of a LIST's backing storage.
func Cap(h *heap.Heap, ref value.Ref) (int, error) {
	_, data, err := list(h, ref)
	if err != nil || data.IsNil() {
		return 0, err
	}
	return h.Slots(data)
}

// Append adds v to the end of a LIST, moving the elements to a larger
// backing tuple when full.
func Append(h *heap.Heap, ref value.Ref, v value.Value) error {
	n, data, err := list(h, ref)
	if err != nil {
		return err
	}
	capacity := 0
	if !data.IsNil() {
		capacity, _ = h.Slots(data)
	}
	if n == capacity {
		size, err := slotBytes(max(listMinCap, 2*capacity))
		if err != nil {
			return err
		}
		grown, err := h.Allocate(value.TypeTuple, size)
		if err != nil {
			return fmt.Errorf("object: grow list to %d: %w", 2*capacity, err)
		}
		for i := range n {
			hv, _ := h.Slot(data, i)
			if err := h.SetSlot(grown, i, hv); err != nil {
				return err
			}
		}
		if err := h.SetSlot(ref, listDataSlot, value.HeapRef(grown)); err != nil {
			return err
		}
		data = grown
	}
	if err := h.Set(data, n, v); err != nil {
		return err
	}
	return h.SetSlot(ref, listLenSlot, value.HeapInt(int64(n+1)))
}

// Get returns element i of a LIST.
func Get(h *heap.Heap, ref value.Ref, i int) (value.Value, error) {
	n, data, err := list(h, ref)
	if err != nil {
		return value.None, err
	}
	if i < 0 || i >= n {
		return value.None, fmt.Errorf("%v: index %d of %d: %w", ref, i, n, ErrRange)
	}
	return h.Get(data, i)
}

// Set replaces element i of a LIST.
func Set(h *heap.Heap, ref value.Ref, i int, v value.Value) error {
	n, data, err := list(h, ref)
	if err != nil {
		return err
	}
	if i < 0 || i >= n {
		return fmt.Errorf("%v: index %d of %d: %w", ref, i, n, ErrRange)
	}
	return h.Set(data, i, v)
}
