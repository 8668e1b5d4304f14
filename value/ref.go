package value

import "fmt"

// Ref is a compressed object reference: the arena number plus one in the
// high bits and the 16-bit cell index of the object header in the low bits.
// The zero Ref is the null reference.
type Ref uint32

const (
	refCellBits = 16
	refCellMask = 1<<refCellBits - 1

	// refBits is the width of a Ref. It must leave two low bits free in a
	// HeapValue and three in a Value.
	refBits = 30

	// MaxArenas is the number of arenas a Ref can address.
	MaxArenas = 1<<(refBits-refCellBits) - 1
)

// Nil is the null reference.
const Nil Ref = 0

// NewRef builds a reference to cell in arena. It panics if arena is outside
// [0, MaxArenas) or cell does not fit 16 bits.
func NewRef(arena, cell int) Ref {
	if arena < 0 || arena >= MaxArenas {
		panic(fmt.Sprintf("value: arena %d out of range", arena))
	}
	if cell < 0 || cell > refCellMask {
		panic(fmt.Sprintf("value: cell %d out of range", cell))
	}
	return Ref(uint32(arena+1)<<refCellBits | uint32(cell))
}

// IsNil reports whether r is the null reference.
func (r Ref) IsNil() bool {
	return r == Nil
}

// Arena returns the arena number. Undefined for Nil.
func (r Ref) Arena() int {
	return int(r>>refCellBits) - 1
}

// Cell returns the cell index of the object header.
func (r Ref) Cell() int {
	return int(r & refCellMask)
}

func (r Ref) String() string {
	if r.IsNil() {
		return "ref(nil)"
	}
	return fmt.Sprintf("ref(%d:%d)", r.Arena(), r.Cell())
}
