package arena

// State is the two-bit classification of a cell.
type State uint8

const (
	Extent State = 0b00
	Empty  State = 0b01
	White  State = 0b10
	Black  State = 0b11
)

func (s State) String() string {
	switch s {
	case Extent:
		return "extent"
	case Empty:
		return "empty"
	case White:
		return "white"
	case Black:
		return "black"
	}
	return "invalid"
}

// IsStart reports whether the state marks the first cell of a live object.
func (s State) IsStart() bool { return s&0b10 != 0 }
