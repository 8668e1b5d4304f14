package heap

import "errors"

var (
	// ErrOutOfMemory indicates that no arena could satisfy an allocation and
	// no new arena could be created.
	ErrOutOfMemory = errors.New("heap: out of memory")

	// ErrTooLarge indicates a request bigger than a whole arena. It is always
	// wrapped together with ErrOutOfMemory.
	ErrTooLarge = errors.New("heap: object larger than an arena")

	// ErrClosed indicates use of a closed heap.
	ErrClosed = errors.New("heap: closed")

	// ErrBadRef indicates a reference that does not name a live object of
	// the expected shape.
	ErrBadRef = errors.New("heap: bad reference")

	// ErrIndex indicates a slot index outside the object.
	ErrIndex = errors.New("heap: slot index out of range")

	// ErrNotBoxed indicates a value with no heap representation.
	ErrNotBoxed = errors.New("heap: value cannot be boxed")
)
