package format

import (
	"fmt"

	"github.com/joshuapare/espgc/internal/buf"
	"github.com/joshuapare/espgc/value"
)

// Header is the decoded object header stored in the first cell of every
// live block.
type Header struct {
	Cells int        // size in cells, including the header cell
	Type  value.Type // object type, fixed at allocation
	Here  bool       // allocated inside managed memory
	Dirty bool       // black object written since it was scanned
	Moved bool       // reserved for a moving collector
}

// PayloadBytes returns the usable payload size.
func (h Header) PayloadBytes() int {
	return PayloadBytes(h.Cells)
}

// DecodeHeader reads the header at the start of b. It does not validate the
// fields; use Check for that.
func DecodeHeader(b []byte) Header {
	flags := b[HeaderFlagsO]
	return Header{
		Cells: int(buf.U32LE(b[HeaderCellsO:])),
		Type:  value.Type(b[HeaderTypeO]),
		Here:  flags&FlagHere != 0,
		Dirty: flags&FlagDirty != 0,
		Moved: flags&FlagMoved != 0,
	}
}

// ParseHeader decodes and validates the header at the start of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("header: %w", ErrTruncated)
	}
	h := DecodeHeader(b)
	if err := h.Check(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Check validates the size and type fields.
func (h Header) Check() error {
	if h.Cells < 1 || h.Cells > MaxCells {
		return fmt.Errorf("%w: size %d cells", ErrBadHeader, h.Cells)
	}
	if !h.Type.Valid() {
		return fmt.Errorf("%w: type %d", ErrBadHeader, uint8(h.Type))
	}
	return nil
}

// Encode writes h into the first HeaderSize bytes of b.
func (h Header) Encode(b []byte) {
	var flags byte
	if h.Here {
		flags |= FlagHere
	}
	if h.Dirty {
		flags |= FlagDirty
	}
	if h.Moved {
		flags |= FlagMoved
	}
	buf.PutU32LE(b[HeaderCellsO:], uint32(h.Cells))
	b[HeaderTypeO] = byte(h.Type)
	b[HeaderFlagsO] = flags
	b[HeaderFlagsO+1] = 0
	b[HeaderFlagsO+2] = 0
}

// SetFlag sets or clears one header flag in place.
func SetFlag(b []byte, flag byte, on bool) {
	if on {
		b[HeaderFlagsO] |= flag
	} else {
		b[HeaderFlagsO] &^= flag
	}
}
