package value

// Kind identifies which interpretation of a bit pattern is valid.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNone
	KindEmpty
	KindBool
	KindInt
	KindFloat
	KindChar
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindEmpty:
		return "empty"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindChar:
		return "char"
	case KindRef:
		return "ref"
	default:
		return "invalid"
	}
}
