package value

import (
	"fmt"
	"strconv"
)

// HeapValue is the 32-bit form stored in object slots.
//
//	xxx1  small int (31-bit, value<<1 | 1)
//	xx00  object reference (ref<<2); 0 is none
//	0010  false
//	0110  true
//	1010  empty
//	1110  character (codepoint<<4 | 14)
//
// Doubles have no heap form; the heap boxes them into FLOAT objects.
type HeapValue uint32

const (
	HeapNone  HeapValue = HeapValue(None)
	HeapFalse HeapValue = HeapValue(False)
	HeapTrue  HeapValue = HeapValue(True)
	HeapEmpty HeapValue = HeapValue(Empty)

	heapCharTag  = 14
	heapCharMask = 0xF
	heapCharBits = 4
)

// Small integer range of the heap form (31-bit signed).
const (
	MaxHeapInt int64 = 1<<30 - 1
	MinHeapInt int64 = -(1 << 30)
)

// Kind reports the interpretation of h.
func (h HeapValue) Kind() Kind {
	switch {
	case h == HeapNone:
		return KindNone
	case h.IsInt():
		return KindInt
	case h.IsRef():
		return KindRef
	case h == HeapEmpty:
		return KindEmpty
	case h.IsBool():
		return KindBool
	case h.IsChar():
		return KindChar
	default:
		return KindInvalid
	}
}

// IsNone reports whether h is none.
func (h HeapValue) IsNone() bool { return h == HeapNone }

// IsEmpty reports whether h is the empty sentinel.
func (h HeapValue) IsEmpty() bool { return h == HeapEmpty }

// IsBool reports whether h is true or false.
func (h HeapValue) IsBool() bool { return h == HeapTrue || h == HeapFalse }

// IsInt reports whether h is a small integer.
func (h HeapValue) IsInt() bool { return h&1 != 0 }

// IsFloat is always false: the heap form never holds an immediate double.
func (h HeapValue) IsFloat() bool { return false }

// IsChar reports whether h is a character.
func (h HeapValue) IsChar() bool {
	return h&heapCharMask == heapCharTag && h>>heapCharBits <= MaxChar
}

// IsRef reports whether h is an object reference.
func (h HeapValue) IsRef() bool { return h != HeapNone && h&3 == 0 }

// AsBool returns the boolean payload. Precondition: h.IsBool().
func (h HeapValue) AsBool() bool { return h&(HeapTrue^HeapFalse) != 0 }

// AsInt returns the integer payload. Precondition: h.IsInt().
func (h HeapValue) AsInt() int64 { return int64(int32(h) >> 1) }

// AsChar returns the codepoint. Precondition: h.IsChar().
func (h HeapValue) AsChar() rune { return rune(h >> heapCharBits) }

// AsRef returns the object reference. Precondition: h.IsRef().
func (h HeapValue) AsRef() Ref { return Ref(h >> 2) }

// FitsHeapInt reports whether n has an immediate heap form.
func FitsHeapInt(n int64) bool {
	return n >= MinHeapInt && n <= MaxHeapInt
}

// HeapBool returns HeapTrue or HeapFalse.
func HeapBool(b bool) HeapValue {
	if b {
		return HeapTrue
	}
	return HeapFalse
}

// HeapInt returns n in heap form. It panics if n does not fit 31 bits.
func HeapInt(n int64) HeapValue {
	if !FitsHeapInt(n) {
		panic(fmt.Sprintf("value: %d out of heap int range", n))
	}
	return HeapValue(uint32(int32(n))<<1 | 1)
}

// HeapChar returns the codepoint r in heap form. It panics on invalid runes.
func HeapChar(r rune) HeapValue {
	if r < 0 || r > MaxChar {
		panic(fmt.Sprintf("value: codepoint %#x out of range", r))
	}
	return HeapValue(uint32(r)<<heapCharBits | heapCharTag)
}

// HeapRef returns r in heap form. It panics on the null reference.
func HeapRef(r Ref) HeapValue {
	if r.IsNil() {
		panic("value: null reference")
	}
	return HeapValue(uint32(r) << 2)
}

// ToHeap converts a live value to its heap form. It returns ok = false for
// doubles and integers outside the 31-bit range, which the heap must box.
func ToHeap(v Value) (HeapValue, bool) {
	switch v.Kind() {
	case KindNone:
		return HeapNone, true
	case KindEmpty:
		return HeapEmpty, true
	case KindBool:
		return HeapBool(v.AsBool()), true
	case KindInt:
		n := v.AsInt()
		if !FitsHeapInt(n) {
			return HeapNone, false
		}
		return HeapInt(n), true
	case KindChar:
		return HeapChar(v.AsChar()), true
	case KindRef:
		return HeapRef(v.AsRef()), true
	default:
		return HeapNone, false
	}
}

// Live converts h to the live form. Invalid patterns map to None.
func (h HeapValue) Live() Value {
	switch h.Kind() {
	case KindEmpty:
		return Empty
	case KindBool:
		return MakeBool(h.AsBool())
	case KindInt:
		return MakeInt(h.AsInt())
	case KindChar:
		return MakeChar(h.AsChar())
	case KindRef:
		return MakeRef(h.AsRef())
	default:
		return None
	}
}

func (h HeapValue) String() string {
	switch h.Kind() {
	case KindNone:
		return "none"
	case KindEmpty:
		return "empty"
	case KindBool:
		return strconv.FormatBool(h.AsBool())
	case KindInt:
		return strconv.FormatInt(h.AsInt(), 10)
	case KindChar:
		return strconv.QuoteRune(h.AsChar())
	case KindRef:
		return h.AsRef().String()
	default:
		return fmt.Sprintf("invalid(%#08x)", uint32(h))
	}
}
