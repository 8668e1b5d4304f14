package heap

import (
	"fmt"
	"math"

	"github.com/joshuapare/espgc/internal/buf"
	"github.com/joshuapare/espgc/internal/format"
	"github.com/joshuapare/espgc/value"
)

// boxBytes is the payload of a FLOAT or LONG object.
const boxBytes = 8

// Box converts v to heap form. Doubles and integers outside the 31-bit heap
// range are stored in freshly allocated FLOAT and LONG objects; everything
// else is immediate. The new object is not rooted.
func (h *Heap) Box(v value.Value) (value.HeapValue, error) {
	if hv, ok := value.ToHeap(v); ok {
		return hv, nil
	}
	var (
		typ  value.Type
		bits uint64
	)
	switch {
	case v.IsFloat():
		typ, bits = value.TypeFloat, math.Float64bits(v.AsFloat())
	case v.IsInt():
		typ, bits = value.TypeLong, uint64(v.AsInt())
	default:
		return value.HeapNone, fmt.Errorf("box %#x: %w", uint64(v), ErrNotBoxed)
	}
	hv, err := h.boxBits(typ, bits)
	if err != nil {
		return value.HeapNone, fmt.Errorf("box %v: %w", v, err)
	}
	return hv, nil
}

// BoxInt64 stores n in heap form, using a LONG object when it does not fit
// a 31-bit immediate. Unlike Box it accepts the full int64 range.
func (h *Heap) BoxInt64(n int64) (value.HeapValue, error) {
	if value.FitsHeapInt(n) {
		return value.HeapInt(n), nil
	}
	hv, err := h.boxBits(value.TypeLong, uint64(n))
	if err != nil {
		return value.HeapNone, fmt.Errorf("box %d: %w", n, err)
	}
	return hv, nil
}

func (h *Heap) boxBits(typ value.Type, bits uint64) (value.HeapValue, error) {
	ref, err := h.Allocate(typ, boxBytes)
	if err != nil {
		return value.HeapNone, err
	}
	o := h.owners[ref.Arena()]
	buf.PutU64LE(o.Arena().Bytes(ref.Cell()+format.HeaderCells, 1), bits)
	h.stats.Boxed++
	return value.HeapRef(ref), nil
}

// Unbox converts hv to live form. References to FLOAT objects become
// doubles and LONG objects become integers when they fit the live integer
// range; other references stay references.
func (h *Heap) Unbox(hv value.HeapValue) value.Value {
	if !hv.IsRef() {
		return hv.Live()
	}
	ref := hv.AsRef()
	o, cell, hdr, err := h.lookup(ref)
	if err != nil {
		return value.MakeRef(ref)
	}
	switch hdr.Type {
	case value.TypeFloat:
		return value.MakeFloat(math.Float64frombits(buf.U64LE(o.Arena().Bytes(cell+format.HeaderCells, 1))))
	case value.TypeLong:
		n := int64(buf.U64LE(o.Arena().Bytes(cell+format.HeaderCells, 1)))
		if v, ok := value.TryMakeInt(n); ok {
			return v
		}
	}
	return value.MakeRef(ref)
}

// UnboxLong reads the full 64-bit integer of a LONG object.
func (h *Heap) UnboxLong(ref value.Ref) (int64, error) {
	o, cell, hdr, err := h.lookup(ref)
	if err != nil {
		return 0, err
	}
	if hdr.Type != value.TypeLong {
		return 0, fmt.Errorf("%v: %v is not a long: %w", ref, hdr.Type, ErrBadRef)
	}
	return int64(buf.U64LE(o.Arena().Bytes(cell+format.HeaderCells, 1))), nil
}
