package verify

import (
	"fmt"

	"github.com/joshuapare/espgc/heap/alloc"
	"github.com/joshuapare/espgc/heap/arena"
	"github.com/joshuapare/espgc/internal/format"
)

// ValidationError describes one broken invariant.
type ValidationError struct {
	Type    string
	Message string
	Arena   int
	Cell    int // -1 when not tied to a cell
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Cell >= 0 {
		return fmt.Sprintf("%s in arena %d at cell %d: %s", e.Type, e.Arena, e.Cell, e.Message)
	}
	return fmt.Sprintf("%s in arena %d: %s", e.Type, e.Arena, e.Message)
}

// run is a maximal group of cells found by the layout scan.
type run struct {
	start, cells int
}

// layout is the result of scanning one arena.
type layout struct {
	liveObjects int
	liveCells   int
	free        []run // runs of two or more cells
	frags       int
}

// Owners validates every owner and returns the first error.
func Owners(owners []*alloc.Owner) error {
	for _, o := range owners {
		if err := AllInvariants(o); err != nil {
			return err
		}
	}
	return nil
}

// AllInvariants validates one owner: layout, conservation and the Quipu
// chains. Returns the first error encountered, or nil if all checks pass.
func AllInvariants(o *alloc.Owner) error {
	l, err := scan(o)
	if err != nil {
		return err
	}
	if err := conservation(o, l); err != nil {
		return err
	}
	return quipuChains(o, l)
}

// Layout validates the cell states and headers of one owner.
func Layout(o *alloc.Owner) error {
	_, err := scan(o)
	return err
}

// Conservation validates that live, free and bump cells add up to the
// arena capacity.
func Conservation(o *alloc.Owner) error {
	l, err := scan(o)
	if err != nil {
		return err
	}
	return conservation(o, l)
}

// QuipuChains validates that the Quipu tracks exactly the free runs of two
// or more cells, with consistent link words.
func QuipuChains(o *alloc.Owner) error {
	l, err := scan(o)
	if err != nil {
		return err
	}
	return quipuChains(o, l)
}

func scan(o *alloc.Owner) (layout, error) {
	a := o.Arena()
	id := o.ID()
	var l layout
	prevFree := false

	for i := 0; i < o.Bump(); {
		switch a.State(i) {
		case arena.Extent:
			return l, &ValidationError{Type: "Layout", Message: "extent cell where a block should start", Arena: id, Cell: i}
		case arena.Empty:
			n := a.EmptyRun(i, o.Bump())
			if prevFree {
				return l, &ValidationError{Type: "Layout", Message: "adjacent free runs not coalesced", Arena: id, Cell: i}
			}
			if n == 1 {
				l.frags++
			} else {
				l.free = append(l.free, run{i, n})
			}
			prevFree = true
			i += n
		default:
			h, err := format.ParseHeader(a.Cell(i))
			if err != nil {
				return l, &ValidationError{
					Type: "Header", Message: err.Error(), Arena: id, Cell: i,
					Details: map[string]any{"offset": a.OffsetOf(arena.CellID(i))},
				}
			}
			if !h.Here {
				return l, &ValidationError{
					Type: "Header", Message: "here flag not set", Arena: id, Cell: i,
					Details: map[string]any{"offset": a.OffsetOf(arena.CellID(i))},
				}
			}
			if i+h.Cells > o.Bump() {
				return l, &ValidationError{
					Type:    "Layout",
					Message: fmt.Sprintf("object of %d cells crosses bump %d", h.Cells, o.Bump()),
					Arena:   id, Cell: i,
				}
			}
			if ext := a.ExtentRun(i+1, i+h.Cells); ext != h.Cells-1 {
				return l, &ValidationError{
					Type:    "Layout",
					Message: fmt.Sprintf("header claims %d cells, %d extents follow", h.Cells, ext),
					Arena:   id, Cell: i,
					Details: map[string]any{"type": h.Type.String()},
				}
			}
			l.liveObjects++
			l.liveCells += h.Cells
			prevFree = false
			i += h.Cells
		}
	}
	if prevFree {
		return l, &ValidationError{Type: "Layout", Message: "free run abuts the bump region", Arena: id, Cell: o.Bump() - 1}
	}
	if n := a.EmptyRun(o.Bump(), o.End()); n != o.End()-o.Bump() {
		return l, &ValidationError{Type: "Layout", Message: "bump region holds non-empty cells", Arena: id, Cell: o.Bump() + n}
	}
	return l, nil
}

func conservation(o *alloc.Owner, l layout) error {
	q := o.Quipu()
	sum := l.liveCells + q.Total() + q.Fragments() + (o.End() - o.Bump())
	if sum != o.Arena().Cells() {
		return &ValidationError{
			Type:    "Conservation",
			Message: fmt.Sprintf("accounted %d cells, arena has %d", sum, o.Arena().Cells()),
			Arena:   o.ID(),
			Cell:    -1,
			Details: map[string]any{
				"live": l.liveCells, "quipu": q.Total(), "fragments": q.Fragments(), "bump": o.End() - o.Bump(),
			},
		}
	}
	if l.frags != q.Fragments() {
		return &ValidationError{
			Type:    "Conservation",
			Message: fmt.Sprintf("bitmap shows %d fragments, quipu counts %d", l.frags, q.Fragments()),
			Arena:   o.ID(),
			Cell:    -1,
		}
	}
	return nil
}

func quipuChains(o *alloc.Owner, l layout) (err error) {
	id := o.ID()
	defer func() {
		if r := recover(); r != nil {
			err = &ValidationError{Type: "Quipu", Message: fmt.Sprint(r), Arena: id, Cell: -1}
		}
	}()

	a := o.Arena()
	want := make(map[int]int, len(l.free))
	for _, r := range l.free {
		want[r.start] = r.cells
	}
	seen := make(map[int]bool, len(want))

	o.Quipu().Walk(func(b, cells, bucket int) bool {
		switch {
		case seen[b]:
			err = &ValidationError{Type: "Quipu", Message: "block tracked twice", Arena: id, Cell: b}
		case want[b] != cells:
			err = &ValidationError{
				Type:    "Quipu",
				Message: fmt.Sprintf("tracked as %d cells, bitmap run is %d", cells, want[b]),
				Arena:   id, Cell: b,
				Details: map[string]any{"bucket": bucket},
			}
		case int(a.Word(b, format.LinkSize)) != cells:
			err = &ValidationError{Type: "Quipu", Message: "size word disagrees with bucket", Arena: id, Cell: b}
		case int(a.Word(b+cells-1, format.LinkStart)) != b+1:
			err = &ValidationError{Type: "Quipu", Message: "start backlink broken", Arena: id, Cell: b + cells - 1}
		}
		seen[b] = true
		return err == nil
	})
	if err != nil {
		return err
	}
	if len(seen) != len(want) {
		for start := range want {
			if !seen[start] {
				return &ValidationError{Type: "Quipu", Message: "free run not reachable from any bucket", Arena: id, Cell: start}
			}
		}
	}
	return nil
}
