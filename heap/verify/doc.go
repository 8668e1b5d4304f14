// Package verify checks the structural invariants of arena owners. The
// checks read the bitmap and cell memory directly and never trust the
// allocator's own bookkeeping, so tests and the stress command can run them
// after every step.
package verify
