package heap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/espgc/heap/alloc"
	"github.com/joshuapare/espgc/heap/arena"
	"github.com/joshuapare/espgc/internal/format"
	"github.com/joshuapare/espgc/internal/logger"
	"github.com/joshuapare/espgc/value"
)

// Heap is a set of arenas plus the root set.
//
// NOT thread-safe.
type Heap struct {
	cfg      Config
	log      *slog.Logger
	owners   []*alloc.Owner // indexed by arena number
	order    []*alloc.Owner // ascending Free()
	roots    map[*value.Value]struct{}
	attached map[value.Ref]any
	stack    []value.Ref // mark stack
	stats    Stats
	closed   bool
}

// New creates an empty heap. No arena is created until the first
// allocation.
func New(cfg Config) (*Heap, error) {
	cfg = cfg.withDefaults()
	if cfg.ArenaCells < 2 || cfg.ArenaCells > format.MaxCells {
		return nil, fmt.Errorf("heap: arena of %d cells out of range [2, %d]", cfg.ArenaCells, format.MaxCells)
	}
	if cfg.MaxArenas < 1 || cfg.MaxArenas > value.MaxArenas {
		return nil, fmt.Errorf("heap: max arenas %d out of range [1, %d]", cfg.MaxArenas, value.MaxArenas)
	}
	l := cfg.Logger
	if l == nil {
		l = logger.L
	}
	return &Heap{
		cfg:      cfg,
		log:      l,
		roots:    make(map[*value.Value]struct{}),
		attached: make(map[value.Ref]any),
	}, nil
}

// Config returns the effective configuration.
func (h *Heap) Config() Config { return h.cfg }

// Allocate reserves an object of typ with sizeBytes bytes of payload and
// returns its reference. The payload is zeroed and the object is white.
func (h *Heap) Allocate(typ value.Type, sizeBytes int) (value.Ref, error) {
	if h.closed {
		return value.Nil, ErrClosed
	}
	if !typ.Valid() {
		return value.Nil, fmt.Errorf("heap: allocate: invalid type %d", uint8(typ))
	}
	if sizeBytes < 0 {
		return value.Nil, fmt.Errorf("heap: allocate: negative size %d", sizeBytes)
	}
	if sizeBytes > format.PayloadBytes(h.cfg.ArenaCells) {
		return value.Nil, fmt.Errorf("heap: allocate %d bytes: %w: %w", sizeBytes, ErrOutOfMemory, ErrTooLarge)
	}
	cells := format.CellsFor(sizeBytes)

	for i, o := range h.order {
		if o.Free() < cells {
			continue
		}
		cell, err := o.Allocate(cells, typ)
		if errors.Is(err, alloc.ErrNoSpace) {
			continue
		}
		if err != nil {
			return value.Nil, err
		}
		h.fix(i)
		h.stats.Allocations++
		return value.NewRef(o.ID(), cell), nil
	}

	o, err := h.grow()
	if err != nil {
		return value.Nil, fmt.Errorf("heap: allocate %d bytes: %w", sizeBytes, err)
	}
	cell, err := o.Allocate(cells, typ)
	if err != nil {
		return value.Nil, fmt.Errorf("heap: allocate %d bytes in fresh arena: %w: %w", sizeBytes, ErrOutOfMemory, err)
	}
	h.fix(len(h.order) - 1)
	h.stats.Allocations++
	return value.NewRef(o.ID(), cell), nil
}

// grow creates a new arena owner and appends it to the order.
func (h *Heap) grow() (*alloc.Owner, error) {
	id := len(h.owners)
	if id >= h.cfg.MaxArenas {
		return nil, fmt.Errorf("%w: %d arenas in use", ErrOutOfMemory, id)
	}
	a, err := arena.New(h.cfg.ArenaCells, h.cfg.Backing)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	o := alloc.NewOwner(a, alloc.Options{ID: id, Finalize: h.finalize, Logger: h.log})
	h.owners = append(h.owners, o)
	h.order = append(h.order, o)
	h.log.Info("arena created", "arena", id, "cells", h.cfg.ArenaCells, "backing", h.cfg.Backing)
	return o, nil
}

// fix restores ascending free order after the owner at position i changed.
func (h *Heap) fix(i int) {
	for i > 0 && h.order[i-1].Free() > h.order[i].Free() {
		h.order[i-1], h.order[i] = h.order[i], h.order[i-1]
		i--
	}
	for i+1 < len(h.order) && h.order[i].Free() > h.order[i+1].Free() {
		h.order[i], h.order[i+1] = h.order[i+1], h.order[i]
		i++
	}
}

// resort reorders every owner; used after sweeps touch all of them.
func (h *Heap) resort() {
	for i := 1; i < len(h.order); i++ {
		h.fix(i)
	}
}

// lookup resolves ref to its owner and cell, checking that it names the
// start of a live object.
func (h *Heap) lookup(ref value.Ref) (*alloc.Owner, int, format.Header, error) {
	if h.closed {
		return nil, 0, format.Header{}, ErrClosed
	}
	if ref.IsNil() || ref.Arena() >= len(h.owners) {
		return nil, 0, format.Header{}, fmt.Errorf("%v: %w", ref, ErrBadRef)
	}
	o := h.owners[ref.Arena()]
	hdr, err := o.Header(ref.Cell())
	if err != nil {
		return nil, 0, format.Header{}, fmt.Errorf("%v: %w: %w", ref, ErrBadRef, err)
	}
	return o, ref.Cell(), hdr, nil
}

// Free reclaims the object immediately, running its finalizer. The caller
// guarantees nothing still refers to it.
func (h *Heap) Free(ref value.Ref) error {
	o, cell, _, err := h.lookup(ref)
	if err != nil {
		return err
	}
	o.Deallocate(cell)
	h.stats.Frees++
	for i, x := range h.order {
		if x == o {
			h.fix(i)
			break
		}
	}
	return nil
}

// finalize is the owner hook: it detaches off-arena data, closes it when it
// is an io.Closer and runs the configured finalizer.
func (h *Heap) finalize(id, cell int, typ value.Type) error {
	ref := value.NewRef(id, cell)
	att, ok := h.attached[ref]
	if ok {
		delete(h.attached, ref)
	}
	var errs []error
	if c, isCloser := att.(io.Closer); isCloser {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close attachment: %w", err))
		}
	}
	if h.cfg.Finalize != nil {
		if err := h.cfg.Finalize(ref, typ, att); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Owners returns the arena owners in allocation order (ascending free
// space). The slice is a copy; the owners are live.
func (h *Heap) Owners() []*alloc.Owner {
	out := make([]*alloc.Owner, len(h.order))
	copy(out, h.order)
	return out
}

// Owner returns the owner of arena id.
func (h *Heap) Owner(id int) (*alloc.Owner, bool) {
	if id < 0 || id >= len(h.owners) {
		return nil, false
	}
	return h.owners[id], true
}

// Close releases every arena and closes attachments that implement
// io.Closer. Finalizers are not run. Close is idempotent.
func (h *Heap) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	var errs []error
	for ref, att := range h.attached {
		if c, ok := att.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%v: %w", ref, err))
			}
		}
	}
	clear(h.attached)
	for _, o := range h.owners {
		if err := o.Arena().Close(); err != nil {
			errs = append(errs, fmt.Errorf("arena %d: %w", o.ID(), err))
		}
	}
	h.owners, h.order = nil, nil
	clear(h.roots)
	return errors.Join(errs...)
}
