package object

import (
	"bytes"
	"fmt"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/unicode/norm"

	"github.com/joshuapare/espgc/heap"
	"github.com/joshuapare/espgc/internal/buf"
	"github.com/joshuapare/espgc/value"
)

const (
	strHashO = 0
	strLenO  = 8
	strDataO = 12
)

// HashString returns the hash stored in STRING objects for s. Canonically
// equivalent strings hash equal.
func HashString(s string) uint64 {
	return xxh3.HashString(norm.NFC.String(s))
}

// NewString allocates a STRING holding s in NFC form.
func NewString(h *heap.Heap, s string) (value.Ref, error) {
	b := norm.NFC.Bytes([]byte(s))
	ref, err := h.Allocate(value.TypeString, strDataO+len(b))
	if err != nil {
		return value.Nil, fmt.Errorf("object: string of %d bytes: %w", len(b), err)
	}
	p, err := h.Payload(ref)
	if err != nil {
		return value.Nil, err
	}
	buf.PutU64LE(p[strHashO:], xxh3.Hash(b))
	buf.PutU32LE(p[strLenO:], uint32(len(b)))
	copy(p[strDataO:], b)
	return ref, nil
}

func stringPayload(h *heap.Heap, ref value.Ref) ([]byte, error) {
	hdr, err := h.Header(ref)
	if err != nil {
		return nil, err
	}
	if hdr.Type != value.TypeString {
		return nil, fmt.Errorf("%v is %v, not string: %w", ref, hdr.Type, ErrType)
	}
	return h.Payload(ref)
}

// StringBytes returns the NFC bytes of a STRING. The slice aliases arena
// memory.
func StringBytes(h *heap.Heap, ref value.Ref) ([]byte, error) {
	p, err := stringPayload(h, ref)
	if err != nil {
		return nil, err
	}
	n := int(buf.U32LE(p[strLenO:]))
	b, ok := buf.Slice(p, strDataO, n)
	if !ok {
		return nil, fmt.Errorf("%v: length %d exceeds payload: %w", ref, n, ErrRange)
	}
	return b, nil
}

// String returns a copy of the STRING contents.
func String(h *heap.Heap, ref value.Ref) (string, error) {
	b, err := StringBytes(h, ref)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// StringHash returns the stored hash of a STRING.
func StringHash(h *heap.Heap, ref value.Ref) (uint64, error) {
	p, err := stringPayload(h, ref)
	if err != nil {
		return 0, err
	}
	return buf.U64LE(p[strHashO:]), nil
}

// StringEqual compares two STRING objects by hash, then bytes.
func StringEqual(h *heap.Heap, a, b value.Ref) (bool, error) {
	if a == b {
		_, err := stringPayload(h, a)
		return err == nil, err
	}
	ha, err := StringHash(h, a)
	if err != nil {
		return false, err
	}
	hb, err := StringHash(h, b)
	if err != nil {
		return false, err
	}
	if ha != hb {
		return false, nil
	}
	ba, _ := StringBytes(h, a)
	bb, _ := StringBytes(h, b)
	return bytes.Equal(ba, bb), nil
}

// NewBytes allocates a BYTES object holding a copy of b.
func NewBytes(h *heap.Heap, b []byte) (value.Ref, error) {
	ref, err := h.Allocate(value.TypeBytes, 4+len(b))
	if err != nil {
		return value.Nil, fmt.Errorf("object: bytes of %d: %w", len(b), err)
	}
	p, _ := h.Payload(ref)
	buf.PutU32LE(p, uint32(len(b)))
	copy(p[4:], b)
	return ref, nil
}

// Bytes returns the contents of a BYTES object. The slice aliases arena
// memory.
func Bytes(h *heap.Heap, ref value.Ref) ([]byte, error) {
	hdr, err := h.Header(ref)
	if err != nil {
		return nil, err
	}
	if hdr.Type != value.TypeBytes {
		return nil, fmt.Errorf("%v is %v, not bytes: %w", ref, hdr.Type, ErrType)
	}
	p, _ := h.Payload(ref)
	n := int(buf.U32LE(p))
	b, ok := buf.Slice(p, 4, n)
	if !ok {
		return nil, fmt.Errorf("%v: length %d exceeds payload: %w", ref, n, ErrRange)
	}
	return b, nil
}
