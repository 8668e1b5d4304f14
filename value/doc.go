// Package value defines the tagged value representation shared between the
// heap and the interpreter.
//
// # Forms
//
// Two encodings exist:
//
//   - Value: the word-sized live form used on the interpreter stack. Doubles
//     are stored bit-inverted so that every non-double pattern has bits 51..62
//     clear, which leaves room for a 51-bit integer (sign bit set) and a 3-bit
//     tag plus 48-bit payload (sign bit clear).
//   - HeapValue: the 32-bit form stored inside heap objects. Small integers
//     carry a low 1 bit, object references two low 0 bits, and the remaining
//     specials live in the xx10 space. Doubles never appear immediately in the
//     heap form; they are boxed into FLOAT objects by the heap.
//
// # Accessors
//
// Every kind has a Make/Is/As triple. As* accessors do not check the tag:
// callers must have tested the matching Is* first. Make* constructors that
// can fail have a Try* variant returning ok = false instead of panicking.
//
//	v := value.MakeInt(42)
//	if v.IsInt() {
//	    n := v.AsInt()
//	}
//
// # References
//
// Ref identifies an object by arena number and cell index. It is the only
// form of address the heap hands out; there are no raw pointers into arena
// memory.
package value
