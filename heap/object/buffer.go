package object

import (
	"fmt"

	"github.com/joshuapare/espgc/heap"
	"github.com/joshuapare/espgc/internal/buf"
	"github.com/joshuapare/espgc/value"
)

// bufferData is the off-arena storage attached to a BUFFER.
type bufferData struct {
	b []byte
}

// Close drops the storage when the BUFFER is reclaimed.
func (d *bufferData) Close() error {
	d.b = nil
	return nil
}

// NewBuffer allocates a BUFFER of size zeroed bytes stored outside the arena.
func NewBuffer(h *heap.Heap, size int) (value.Ref, error) {
	if size < 0 {
		return value.Nil, fmt.Errorf("object: buffer size %d: %w", size, ErrRange)
	}
	ref, err := h.Allocate(value.TypeBuffer, 8)
	if err != nil {
		return value.Nil, fmt.Errorf("object: buffer: %w", err)
	}
	p, _ := h.Payload(ref)
	buf.PutU64LE(p, uint64(size))
	if err := h.Attach(ref, &bufferData{b: make([]byte, size)}); err != nil {
		return value.Nil, err
	}
	return ref, nil
}

// Buffer returns the storage of a BUFFER. The slice stays valid until the
// BUFFER is reclaimed.
func Buffer(h *heap.Heap, ref value.Ref) ([]byte, error) {
	hdr, err := h.Header(ref)
	if err != nil {
		return nil, err
	}
	if hdr.Type != value.TypeBuffer {
		return nil, fmt.Errorf("%v is %v, not buffer: %w", ref, hdr.Type, ErrType)
	}
	att, _ := h.Attached(ref)
	d, ok := att.(*bufferData)
	if !ok {
		return nil, fmt.Errorf("%v: buffer storage missing: %w", ref, ErrType)
	}
	p, _ := h.Payload(ref)
	if n := buf.U64LE(p); n != uint64(len(d.b)) {
		return nil, fmt.Errorf("%v: header length %d, storage %d: %w", ref, n, len(d.b), ErrRange)
	}
	return d.b, nil
}
