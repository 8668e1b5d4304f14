package value

import "fmt"

// Type is the object type tag stored in every object header.
type Type uint8

const (
	// Leaves
	TypeFloat Type = iota
	TypeLong
	TypeString
	TypeRope
	TypeBytes
	TypeBuffer

	// Sequences
	TypeTuple
	TypeList

	// Dicts
	TypeSet
	TypeObject
	TypeProto
	TypeStruct
	TypeWrapped
	TypeOpaque

	// Functions
	TypeFunction
	TypeClosure
	TypeExtension
	TypeNative

	TypeUserdata

	numTypes
)

var typeNames = [numTypes]string{
	TypeFloat:     "float",
	TypeLong:      "long",
	TypeString:    "string",
	TypeRope:      "rope",
	TypeBytes:     "bytes",
	TypeBuffer:    "buffer",
	TypeTuple:     "tuple",
	TypeList:      "list",
	TypeSet:       "set",
	TypeObject:    "object",
	TypeProto:     "proto",
	TypeStruct:    "struct",
	TypeWrapped:   "wrapped",
	TypeOpaque:    "opaque",
	TypeFunction:  "function",
	TypeClosure:   "closure",
	TypeExtension: "extension",
	TypeNative:    "native",
	TypeUserdata:  "userdata",
}

// Valid reports whether t is one of the defined object types.
func (t Type) Valid() bool {
	return t < numTypes
}

// String returns the lower-case type name.
func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("type(%d)", uint8(t))
	}
	return typeNames[t]
}

// HasSlots reports whether objects of this type hold HeapValue slots that the
// collector must trace.
func (t Type) HasSlots() bool {
	switch t {
	case TypeRope, TypeTuple, TypeList, TypeSet, TypeObject, TypeProto,
		TypeStruct, TypeFunction, TypeClosure, TypeExtension:
		return true
	default:
		return false
	}
}

// NeedsFinalizer reports whether reclaiming an object of this type must run
// a finalizer because it may own storage outside the arena.
func (t Type) NeedsFinalizer() bool {
	switch t {
	case TypeBuffer, TypeList, TypeObject, TypeWrapped, TypeNative, TypeUserdata:
		return true
	default:
		return false
	}
}

// Types returns all defined object types in tag order.
func Types() []Type {
	out := make([]Type, numTypes)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}
