package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadHeader indicates an object header with an impossible size or type.
	ErrBadHeader = errors.New("format: bad object header")
)
