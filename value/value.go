package value

import (
	"fmt"
	"math"
	"strconv"
)

// Value is the word-sized live form.
//
// Layout (after the double inversion):
//
//	double: any pattern with a bit set in 51..62 (stored as ^bits)
//	int:    1 | 000000000000 | 51-bit two's complement
//	other:  0 | 000000000000 | tag:3 | payload:48
//
// Tags for other:
//
//	000  none=0, false=2, true=6, empty=10, object ref<<3
//	001  character (codepoint)
type Value uint64

const (
	signBit       uint64 = 1 << 63
	nonDoubleMask uint64 = 0x7FF8_0000_0000_0000
	tagShift             = 48
	tagMask       uint64 = 7 << tagShift
	payloadMask   uint64 = 1<<tagShift - 1
	intBits              = 51
	intMask       uint64 = 1<<intBits - 1

	tagSimple uint64 = 0 << tagShift
	tagChar   uint64 = 1 << tagShift

	// refPayload covers the bits a Ref occupies once shifted past the three
	// low tag bits.
	refPayload uint64 = (1<<refBits - 1) << 3

	// canonicalNaN is a signalling NaN. Its inverted form keeps bit 51 set
	// so it never lands in the non-double space.
	canonicalNaN uint64 = 0x7FF4_0000_0000_0000
)

// Special immediates. The bit patterns match HeapValue.
const (
	None  Value = 0
	False Value = 2
	True  Value = 6
	Empty Value = 10
)

// Small integer range of the live form (51-bit signed).
const (
	MaxInt int64 = 1<<(intBits-1) - 1
	MinInt int64 = -(1 << (intBits - 1))
)

// MaxChar is the largest valid codepoint.
const MaxChar = 0x10FFFF

// Kind reports the interpretation of v.
func (v Value) Kind() Kind {
	bits := uint64(v)
	switch {
	case bits&nonDoubleMask != 0:
		return KindFloat
	case bits&signBit != 0:
		return KindInt
	}
	switch bits & tagMask {
	case tagSimple:
		switch v {
		case None:
			return KindNone
		case Empty:
			return KindEmpty
		case False, True:
			return KindBool
		}
		if v.IsRef() {
			return KindRef
		}
	case tagChar:
		if bits&payloadMask <= MaxChar {
			return KindChar
		}
	}
	return KindInvalid
}

// IsNone reports whether v is none.
func (v Value) IsNone() bool { return v == None }

// IsEmpty reports whether v is the empty sentinel.
func (v Value) IsEmpty() bool { return v == Empty }

// IsBool reports whether v is true or false.
func (v Value) IsBool() bool { return v == True || v == False }

// IsInt reports whether v is an immediate integer.
func (v Value) IsInt() bool {
	return uint64(v)&(signBit|nonDoubleMask) == signBit
}

// IsFloat reports whether v is a double.
func (v Value) IsFloat() bool {
	return uint64(v)&nonDoubleMask != 0
}

// IsChar reports whether v is a character.
func (v Value) IsChar() bool {
	bits := uint64(v)
	return bits&(signBit|nonDoubleMask|tagMask) == tagChar && bits&payloadMask <= MaxChar
}

// IsRef reports whether v is an object reference.
func (v Value) IsRef() bool {
	return v != None && uint64(v)&^refPayload == 0
}

// MakeBool returns True or False.
func MakeBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// AsBool returns the boolean payload. Precondition: v.IsBool().
func (v Value) AsBool() bool {
	return v&(True^False) != 0
}

// FitsInt reports whether n can be stored as an immediate live integer.
func FitsInt(n int64) bool {
	return n >= MinInt && n <= MaxInt
}

// MakeInt returns n as an immediate integer. It panics if n is outside
// [MinInt, MaxInt]; use TryMakeInt to test first.
func MakeInt(n int64) Value {
	v, ok := TryMakeInt(n)
	if !ok {
		panic(fmt.Sprintf("value: %d out of immediate int range", n))
	}
	return v
}

// TryMakeInt returns n as an immediate integer, or ok = false if it does not
// fit.
func TryMakeInt(n int64) (Value, bool) {
	if !FitsInt(n) {
		return None, false
	}
	return Value(signBit | uint64(n)&intMask), true
}

// AsInt returns the integer payload. Precondition: v.IsInt().
func (v Value) AsInt() int64 {
	return int64(uint64(v)<<(64-intBits)) >> (64 - intBits)
}

// MakeFloat returns f as a double. All NaNs collapse to a single canonical
// NaN.
func MakeFloat(f float64) Value {
	bits := math.Float64bits(f)
	if f != f {
		bits = canonicalNaN
	}
	return Value(^bits)
}

// AsFloat returns the double payload. Precondition: v.IsFloat().
func (v Value) AsFloat() float64 {
	return math.Float64frombits(^uint64(v))
}

// MakeChar returns the codepoint r as a character. It panics on negative
// runes or runes above MaxChar.
func MakeChar(r rune) Value {
	if r < 0 || r > MaxChar {
		panic(fmt.Sprintf("value: codepoint %#x out of range", r))
	}
	return Value(tagChar | uint64(r))
}

// AsChar returns the codepoint. Precondition: v.IsChar().
func (v Value) AsChar() rune {
	return rune(uint64(v) & payloadMask)
}

// MakeRef wraps an object reference. It panics on the null reference; a
// missing object is None.
func MakeRef(r Ref) Value {
	if r.IsNil() {
		panic("value: null reference")
	}
	return Value(uint64(r) << 3)
}

// AsRef returns the object reference. Precondition: v.IsRef().
func (v Value) AsRef() Ref {
	return Ref(uint64(v) >> 3)
}

// String formats v for debugging.
func (v Value) String() string {
	switch v.Kind() {
	case KindNone:
		return "none"
	case KindEmpty:
		return "empty"
	case KindBool:
		return strconv.FormatBool(v.AsBool())
	case KindInt:
		return strconv.FormatInt(v.AsInt(), 10)
	case KindFloat:
		return strconv.FormatFloat(v.AsFloat(), 'g', -1, 64)
	case KindChar:
		return strconv.QuoteRune(v.AsChar())
	case KindRef:
		return v.AsRef().String()
	default:
		return fmt.Sprintf("invalid(%#016x)", uint64(v))
	}
}
