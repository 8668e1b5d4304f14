//go:build unix

// Package pages allocates page-aligned anonymous memory for arenas.
package pages

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Mapped reports whether Map returns memory outside the Go heap.
const Mapped = true

// Map returns size bytes of zeroed, private, anonymous memory rounded up to
// the page size. The release func unmaps it; calling it twice is a no-op.
func Map(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("pages: invalid size %d", size)
	}
	n := RoundUp(size)
	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("pages: mmap %d bytes: %w", n, err)
	}
	release := func() error {
		if data == nil {
			return nil
		}
		err := unix.Munmap(data)
		data = nil
		if errors.Is(err, unix.EINVAL) {
			return nil
		}
		return err
	}
	return data[:size:size], release, nil
}

// PageSize returns the operating system page size.
func PageSize() int {
	return unix.Getpagesize()
}
