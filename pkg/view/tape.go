// Package view turns engine state into renderable data: tape window cells,
// positioned diagrams and SVG documents. Every function here is pure.
package view

import (
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/aretw0/turingviz/pkg/tape"
)

// Cell is one visible tape cell.
type Cell struct {
	Index  int           `json:"index"`
	Symbol domain.Symbol `json:"symbol"`
	Head   bool          `json:"head,omitempty"`
}

// TapeWindow returns width cells starting at center - floor(width/2).
// Index is the absolute tape position of the cell.
func TapeWindow(t *tape.Tape, center, width int) []Cell {
	symbols := t.Window(center, width)
	start := center - width/2
	cells := make([]Cell, len(symbols))
	for i, s := range symbols {
		cells[i] = Cell{Index: start + i, Symbol: s, Head: start+i == t.Head()}
	}
	return cells
}

// HeadWindow returns a window centred on the head.
func HeadWindow(t *tape.Tape, width int) []Cell {
	return TapeWindow(t, t.Head(), width)
}
