package object

import "errors"

var (
	// ErrType indicates an object of the wrong type for the operation.
	ErrType = errors.New("object: wrong object type")

	// ErrRange indicates an element index outside the object.
	ErrRange = errors.New("object: index out of range")
)
