package heap

import (
	"fmt"

	"github.com/joshuapare/espgc/internal/buf"
	"github.com/joshuapare/espgc/internal/format"
	"github.com/joshuapare/espgc/value"
)

// Header returns the decoded header of ref.
func (h *Heap) Header(ref value.Ref) (format.Header, error) {
	_, _, hdr, err := h.lookup(ref)
	return hdr, err
}

// Payload returns the payload bytes of ref. The slice aliases arena memory
// and is valid until the object is reclaimed. Writing references through it
// bypasses the write barrier; use SetSlot for those.
func (h *Heap) Payload(ref value.Ref) ([]byte, error) {
	o, cell, hdr, err := h.lookup(ref)
	if err != nil {
		return nil, err
	}
	return o.Arena().Bytes(cell+format.HeaderCells, hdr.Cells-format.HeaderCells), nil
}

// Slots returns the number of HeapValue slots in a slotted object.
func (h *Heap) Slots(ref value.Ref) (int, error) {
	_, _, hdr, err := h.lookup(ref)
	if err != nil {
		return 0, err
	}
	if !hdr.Type.HasSlots() {
		return 0, fmt.Errorf("%v: %v has no slots: %w", ref, hdr.Type, ErrBadRef)
	}
	return hdr.PayloadBytes() / SlotSize, nil
}

func (h *Heap) slot(ref value.Ref, i int) ([]byte, error) {
	p, err := h.Payload(ref)
	if err != nil {
		return nil, err
	}
	hdr, _ := h.Header(ref)
	if !hdr.Type.HasSlots() {
		return nil, fmt.Errorf("%v: %v has no slots: %w", ref, hdr.Type, ErrBadRef)
	}
	lo, hi, err := buf.CheckRange(len(p), i, 1, SlotSize)
	if err != nil {
		return nil, fmt.Errorf("%v: slot %d of %d: %w", ref, i, len(p)/SlotSize, ErrIndex)
	}
	return p[lo:hi:hi], nil
}

// Slot reads slot i of ref in heap form.
func (h *Heap) Slot(ref value.Ref, i int) (value.HeapValue, error) {
	s, err := h.slot(ref, i)
	if err != nil {
		return value.HeapNone, err
	}
	return value.HeapValue(buf.U32LE(s)), nil
}

// SetSlot writes hv into slot i of ref. Storing a reference into a black
// object marks it dirty so the next minor collection rescans it.
func (h *Heap) SetSlot(ref value.Ref, i int, hv value.HeapValue) error {
	s, err := h.slot(ref, i)
	if err != nil {
		return err
	}
	if hv.IsRef() {
		if _, _, _, err := h.lookup(hv.AsRef()); err != nil {
			return fmt.Errorf("store into %v: %w", ref, err)
		}
	}
	buf.PutU32LE(s, uint32(hv))
	if hv.IsRef() {
		o := h.owners[ref.Arena()]
		if o.Arena().IsBlack(ref.Cell()) && o.MarkDirty(ref.Cell()) {
			h.stats.BarrierHits++
		}
	}
	return nil
}

// Get reads slot i of ref as a live Value, unboxing FLOAT and LONG objects.
func (h *Heap) Get(ref value.Ref, i int) (value.Value, error) {
	hv, err := h.Slot(ref, i)
	if err != nil {
		return value.None, err
	}
	return h.Unbox(hv), nil
}

// Set boxes v as needed and stores it in slot i of ref.
func (h *Heap) Set(ref value.Ref, i int, v value.Value) error {
	if _, err := h.slot(ref, i); err != nil {
		return err
	}
	hv, err := h.Box(v)
	if err != nil {
		return err
	}
	return h.SetSlot(ref, i, hv)
}

// RefOf returns the object whose payload begins at p[0]. It is the inverse
// of Payload for host code that only kept the slice. Slices starting
// anywhere else, or outside every arena, yield ErrBadRef.
func (h *Heap) RefOf(p []byte) (value.Ref, error) {
	if h.closed {
		return value.Nil, ErrClosed
	}
	if len(p) == 0 {
		return value.Nil, fmt.Errorf("heap: ref of empty slice: %w", ErrBadRef)
	}
	for _, o := range h.owners {
		a := o.Arena()
		off, ok := a.Offset(&p[0])
		if !ok {
			continue
		}
		if off&format.CellAlignmentMask != 0 {
			return value.Nil, fmt.Errorf("heap: arena %d offset %#x is not cell aligned: %w", o.ID(), off, ErrBadRef)
		}
		cell := int(a.IndexOfPtr(&p[0])) - format.HeaderCells
		if cell < 0 {
			return value.Nil, fmt.Errorf("heap: arena %d offset %#x is a header: %w", o.ID(), off, ErrBadRef)
		}
		if _, err := o.Header(cell); err != nil {
			return value.Nil, fmt.Errorf("heap: arena %d offset %#x is not a payload start: %w: %w", o.ID(), off, ErrBadRef, err)
		}
		return value.NewRef(o.ID(), cell), nil
	}
	return value.Nil, fmt.Errorf("heap: slice outside every arena: %w", ErrBadRef)
}
