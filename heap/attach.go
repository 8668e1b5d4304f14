package heap

import (
	"fmt"

	"github.com/joshuapare/espgc/value"
)

// Attach associates off-arena data with ref. When the object is reclaimed
// the data is detached, closed if it implements io.Closer, and handed to
// Config.Finalize. Only types with finalizers (BUFFER, LIST, OBJECT,
// WRAPPED, NATIVE, USERDATA) accept attachments. Attaching nil detaches.
func (h *Heap) Attach(ref value.Ref, data any) error {
	_, _, hdr, err := h.lookup(ref)
	if err != nil {
		return err
	}
	if !hdr.Type.NeedsFinalizer() {
		return fmt.Errorf("%v: %v cannot own off-arena data: %w", ref, hdr.Type, ErrBadRef)
	}
	if data == nil {
		delete(h.attached, ref)
		return nil
	}
	h.attached[ref] = data
	return nil
}

// Attached returns the data attached to ref, if any.
func (h *Heap) Attached(ref value.Ref) (any, bool) {
	data, ok := h.attached[ref]
	return data, ok
}
