//go:build !unix

// Package pages allocates page-aligned anonymous memory for arenas.
package pages

import "fmt"

// Mapped reports whether Map returns memory outside the Go heap.
const Mapped = false

// Map falls back to a Go slice when anonymous mappings are not available.
func Map(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("pages: invalid size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}

// PageSize returns the conventional 4 KiB page size.
func PageSize() int {
	return 4096
}
