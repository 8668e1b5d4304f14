package alloc

import "errors"

var (
	// ErrNoSpace indicates that no free run large enough was found in the arena.
	ErrNoSpace = errors.New("alloc: no free run large enough")

	// ErrBadRef indicates a cell that is not the start of a live object.
	ErrBadRef = errors.New("alloc: bad cell reference")
)
