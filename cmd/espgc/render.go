package main

import (
	"fmt"
	"strings"

	"github.com/joshuapare/espgc/heap/alloc"
	"github.com/joshuapare/espgc/heap/arena"
)

// Map glyphs. An object is drawn as its start glyph followed by one extent
// glyph per remaining cell.
const (
	glyphWhite  = 'o'
	glyphBlack  = '#'
	glyphExtent = '='
	glyphFree   = '.'
	glyphBump   = '_'
)

// cellGlyphs returns the map glyph of every cell of o in address order.
func cellGlyphs(o *alloc.Owner) []rune {
	g := make([]rune, 0, o.End())
	o.Walk(func(b alloc.Block) bool {
		switch b.Kind {
		case alloc.BlockLive:
			start := glyphWhite
			if b.State == arena.Black {
				start = glyphBlack
			}
			g = append(g, start)
			for range b.Cells - 1 {
				g = append(g, glyphExtent)
			}
		case alloc.BlockFree:
			for range b.Cells {
				g = append(g, glyphFree)
			}
		case alloc.BlockBump:
			for range b.Cells {
				g = append(g, glyphBump)
			}
		}
		return true
	})
	return g
}

func glyphStyle(r rune) string {
	s := string(r)
	switch r {
	case glyphWhite:
		return paint(whiteCellStyle, s)
	case glyphBlack:
		return paint(blackCellStyle, s)
	case glyphExtent:
		return paint(extentCellStyle, s)
	case glyphFree:
		return paint(freeCellStyle, s)
	default:
		if noColor {
			return s
		}
		return bumpCellStyle.Render("·")
	}
}

// renderArena draws o as rows of width cells, each row prefixed by its first
// cell number. Trailing bump rows are collapsed into one line.
func renderArena(o *alloc.Owner, width int) string {
	width = max(width, 8)
	glyphs := cellGlyphs(o)
	var sb strings.Builder
	for row := 0; row < len(glyphs); row += width {
		end := min(row+width, len(glyphs))
		if row > 0 && row >= alignDown(o.Bump(), width)+width {
			fmt.Fprintf(&sb, "%s %s\n", paint(offsetStyle, fmt.Sprintf("%6d", row)),
				paint(offsetStyle, fmt.Sprintf("... %d untouched cells", len(glyphs)-row)))
			break
		}
		sb.WriteString(paint(offsetStyle, fmt.Sprintf("%6d ", row)))
		for _, r := range glyphs[row:end] {
			sb.WriteString(glyphStyle(r))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func alignDown(n, m int) int { return n - n%m }

// arenaSummary is a one-line description of an owner's bookkeeping.
func arenaSummary(o *alloc.Owner) string {
	head := "none"
	if c, n, ok := o.Quipu().Head(); ok {
		head = fmt.Sprintf("%d cells @%d", n, c)
	}
	return fmt.Sprintf("%s %d  %s %d  %s %s  %s %d  %s %d",
		paint(labelStyle, "bump"), o.Bump(),
		paint(labelStyle, "free"), o.Free(),
		paint(labelStyle, "head"), head,
		paint(labelStyle, "quipu"), o.Quipu().Total(),
		paint(labelStyle, "fragments"), o.Quipu().Fragments())
}

// renderPane wraps an arena map in a titled border.
func renderPane(o *alloc.Owner, width int) string {
	body := renderArena(o, width) + arenaSummary(o)
	title := paint(titleStyle, fmt.Sprintf("arena %d (%d cells)", o.ID(), o.End()))
	if noColor {
		return title + "\n" + body + "\n"
	}
	return title + "\n" + paneStyle.Render(body) + "\n"
}

func legend() string {
	return fmt.Sprintf("%s white  %s black  %s extent  %s free  %s bump\n",
		glyphStyle(glyphWhite), glyphStyle(glyphBlack), glyphStyle(glyphExtent),
		glyphStyle(glyphFree), glyphStyle(glyphBump))
}
