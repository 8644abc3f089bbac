// Package tape implements the sparse, conceptually bi-infinite tape of a
// single-tape Turing machine.
//
// Only non-blank cells are stored: writing the blank symbol removes the cell.
// Every operation is total over all integer positions.
package tape

import (
	"sort"
	"strings"

	"github.com/aretw0/turingviz/pkg/domain"
)

// Tape is a sparse map from cell position to symbol plus a head position.
// The zero value is not usable; create tapes with New.
type Tape struct {
	cells map[int]domain.Symbol
	head  int
	blank domain.Symbol
}

// New creates a tape holding input at positions 0..n-1, one symbol per rune.
// Runes equal to the blank symbol are not stored.
func New(input string, blank domain.Symbol) *Tape {
	symbols := make([]domain.Symbol, 0, len(input))
	for _, r := range input {
		symbols = append(symbols, domain.Symbol(string(r)))
	}
	return FromSymbols(symbols, blank)
}

// FromSymbols creates a tape holding symbols at positions 0..n-1.
func FromSymbols(symbols []domain.Symbol, blank domain.Symbol) *Tape {
	if blank == "" {
		blank = domain.DefaultBlank
	}
	t := &Tape{
		cells: make(map[int]domain.Symbol, len(symbols)),
		blank: blank,
	}
	for i, s := range symbols {
		if s != blank && s != "" {
			t.cells[i] = s
		}
	}
	return t
}

// Blank returns the blank symbol of the tape.
func (t *Tape) Blank() domain.Symbol { return t.blank }

// Head returns the head position.
func (t *Tape) Head() int { return t.head }

// Len returns the number of stored (non-blank) cells.
func (t *Tape) Len() int { return len(t.cells) }

// Read returns the symbol under the head, or blank if the cell is unset.
func (t *Tape) Read() domain.Symbol {
	return t.At(t.head)
}

// At returns the symbol at an arbitrary position without moving the head.
func (t *Tape) At(pos int) domain.Symbol {
	if s, ok := t.cells[pos]; ok {
		return s
	}
	return t.blank
}

// Write stores symbol under the head. Writing blank deletes the cell.
func (t *Tape) Write(symbol domain.Symbol) {
	if symbol == t.blank || symbol == "" {
		delete(t.cells, t.head)
		return
	}
	t.cells[t.head] = symbol
}

// Move shifts the head one cell. Unknown moves leave the head in place.
func (t *Tape) Move(m domain.Move) {
	t.head += m.Delta()
}

// Window returns width symbols starting at center - floor(width/2),
// blank-filled where unset. It never mutates the tape.
func (t *Tape) Window(center, width int) []domain.Symbol {
	if width <= 0 {
		return []domain.Symbol{}
	}
	start := windowStart(center, width)
	out := make([]domain.Symbol, width)
	for i := range out {
		out[i] = t.At(start + i)
	}
	return out
}

// RelativeHead returns the head index inside the window described by center and width.
// The result may fall outside [0, width) when the head is not visible.
func (t *Tape) RelativeHead(center, width int) int {
	return t.head - windowStart(center, width)
}

func windowStart(center, width int) int {
	return center - width/2
}

// bounds returns the lowest and highest stored positions.
func (t *Tape) bounds() (lo, hi int, ok bool) {
	first := true
	for pos := range t.cells {
		if first {
			lo, hi, first = pos, pos, false
			continue
		}
		if pos < lo {
			lo = pos
		}
		if pos > hi {
			hi = pos
		}
	}
	return lo, hi, !first
}

// String renders the stored span from the lowest to the highest written cell.
// An empty tape renders as the empty string.
func (t *Tape) String() string {
	lo, hi, ok := t.bounds()
	if !ok {
		return ""
	}
	var sb strings.Builder
	for i := lo; i <= hi; i++ {
		sb.WriteString(string(t.At(i)))
	}
	return sb.String()
}

// Image serializes the tape so that Restore reproduces it exactly.
func (t *Tape) Image() domain.TapeImage {
	img := domain.TapeImage{Head: t.head, Blank: t.blank}
	lo, hi, ok := t.bounds()
	if !ok {
		return img
	}
	img.Origin = lo
	img.Symbols = make([]domain.Symbol, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		img.Symbols = append(img.Symbols, t.At(i))
	}
	return img
}

// Restore replaces the tape content and head with img.
func (t *Tape) Restore(img domain.TapeImage) {
	if img.Blank != "" {
		t.blank = img.Blank
	}
	t.cells = make(map[int]domain.Symbol, len(img.Symbols))
	for i, s := range img.Symbols {
		if s != t.blank && s != "" {
			t.cells[img.Origin+i] = s
		}
	}
	t.head = img.Head
}

// FromImage builds a new tape from a serialized image.
func FromImage(img domain.TapeImage) *Tape {
	t := &Tape{blank: img.Blank}
	if t.blank == "" {
		t.blank = domain.DefaultBlank
	}
	t.Restore(img)
	return t
}

// Clone returns an independent copy of the tape.
func (t *Tape) Clone() *Tape {
	c := &Tape{
		cells: make(map[int]domain.Symbol, len(t.cells)),
		head:  t.head,
		blank: t.blank,
	}
	for k, v := range t.cells {
		c.cells[k] = v
	}
	return c
}

// Positions returns the stored positions in ascending order.
func (t *Tape) Positions() []int {
	out := make([]int, 0, len(t.cells))
	for pos := range t.cells {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}
