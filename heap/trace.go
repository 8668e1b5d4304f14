package heap

import (
	"github.com/joshuapare/espgc/internal/buf"
	"github.com/joshuapare/espgc/value"
)

// Tracer enumerates the references held by one object. It receives the
// object's payload and must call visit for each outgoing reference.
type Tracer func(typ value.Type, payload []byte, visit func(value.Ref))

// SlotSize is the width of one HeapValue slot.
const SlotSize = 4

// TraceSlots treats the payload of every slotted type as an array of
// HeapValues. Leaf types hold no references.
func TraceSlots(typ value.Type, payload []byte, visit func(value.Ref)) {
	if !typ.HasSlots() {
		return
	}
	for off := 0; off+SlotSize <= len(payload); off += SlotSize {
		if hv := value.HeapValue(buf.U32LE(payload[off:])); hv.IsRef() {
			visit(hv.AsRef())
		}
	}
}
