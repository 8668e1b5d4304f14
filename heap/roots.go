package heap

import (
	"fmt"

	"github.com/joshuapare/espgc/value"
)

// RegisterRoot adds the Value at p to the root set. The heap reads *p at
// every collection. Registering the same address twice panics.
func (h *Heap) RegisterRoot(p *value.Value) {
	if p == nil {
		panic("heap: register of nil root")
	}
	if _, ok := h.roots[p]; ok {
		panic(fmt.Sprintf("heap: root %p registered twice", p))
	}
	h.roots[p] = struct{}{}
}

// UnregisterRoot removes p from the root set. Removing an unknown address
// panics.
func (h *Heap) UnregisterRoot(p *value.Value) {
	if _, ok := h.roots[p]; !ok {
		panic(fmt.Sprintf("heap: unregister of unknown root %p", p))
	}
	delete(h.roots, p)
}

// Roots returns the number of registered roots.
func (h *Heap) Roots() int { return len(h.roots) }

// Root is a heap-owned root slot. Release it when the value no longer
// needs to survive collections.
type Root struct {
	h *Heap
	v value.Value
}

// Pin registers a new root holding v.
func (h *Heap) Pin(v value.Value) *Root {
	r := &Root{h: h, v: v}
	h.RegisterRoot(&r.v)
	return r
}

// Value returns the rooted value.
func (r *Root) Value() value.Value { return r.v }

// Set replaces the rooted value.
func (r *Root) Set(v value.Value) { r.v = v }

// Ref returns the rooted reference, or value.Nil when the value is not a
// reference.
func (r *Root) Ref() value.Ref {
	if !r.v.IsRef() {
		return value.Nil
	}
	return r.v.AsRef()
}

// Release unregisters the root. Releasing twice panics.
func (r *Root) Release() {
	if r.h == nil {
		panic("heap: root released twice")
	}
	if !r.h.closed {
		r.h.UnregisterRoot(&r.v)
	}
	r.h = nil
}
