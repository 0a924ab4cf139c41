// Package manifest models the ship manifest exchanged with terminal systems.
//
// A manifest is a rectangular grid of cells. Each cell is empty, permanently
// blocked (a hull or structural slot, written "NAN" in manifest files) or
// holds a named container with a weight in kilograms. Coordinates are 1-based
// with row 1 at the bottom of the hold, matching the manifest file format:
//
//	[01,01], {00000}, NAN
//	[01,02], {00099}, Cat
//	[01,03], {00000}, UNUSED
//
// The planner reads a manifest once through [Reader] to build its root state
// and writes the final grid back through [Writer] when a plan completes.
package manifest

import "fmt"

// Kind classifies a manifest cell.
type Kind uint8

const (
	Empty Kind = iota
	Blocked
	Filled
)

// Markers used by the manifest file format for non-container cells.
const (
	NameBlocked = "NAN"
	NameUnused  = "UNUSED"
)

// Standard manifest dimensions.
const (
	DefaultRows = 8
	DefaultCols = 12
)

// MaxCoord is the largest row or column the two-digit "[RR,CC]" field can
// carry.
const MaxCoord = 99

// Cell is one slot of the manifest grid.
type Cell struct {
	Kind   Kind
	Name   string
	Weight int
}

// Container returns a filled cell.
func Container(name string, weight int) Cell {
	return Cell{Kind: Filled, Name: name, Weight: weight}
}

// BlockedCell returns a permanently blocked cell.
func BlockedCell() Cell {
	return Cell{Kind: Blocked}
}

// String renders the cell the way a manifest line names it.
func (c Cell) String() string {
	switch c.Kind {
	case Blocked:
		return NameBlocked
	case Filled:
		return c.Name
	default:
		return NameUnused
	}
}

// Reader exposes manifest contents to the planner.
type Reader interface {
	Dims() (rows, cols int)
	CellAt(row, col int) Cell
}

// Writer receives the planner's final grid cell by cell.
type Writer interface {
	Dims() (rows, cols int)
	SetCell(row, col int, c Cell)
}

// Grid is an in-memory manifest. It implements both Reader and Writer.
type Grid struct {
	rows, cols int
	cells      []Cell
}

// New returns an all-empty grid.
func New(rows, cols int) *Grid {
	return &Grid{rows: rows, cols: cols, cells: make([]Cell, rows*cols)}
}

// Dims returns the grid dimensions.
func (g *Grid) Dims() (rows, cols int) { return g.rows, g.cols }

// CellAt returns the cell at 1-based (row, col). It panics when out of range.
func (g *Grid) CellAt(row, col int) Cell {
	return g.cells[g.index(row, col)]
}

// SetCell stores c at 1-based (row, col). It panics when out of range.
func (g *Grid) SetCell(row, col int, c Cell) {
	g.cells[g.index(row, col)] = c
}

func (g *Grid) index(row, col int) int {
	if row < 1 || row > g.rows || col < 1 || col > g.cols {
		panic(fmt.Sprintf("manifest: cell [%02d,%02d] outside %dx%d grid", row, col, g.rows, g.cols))
	}
	return (row-1)*g.cols + (col - 1)
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{rows: g.rows, cols: g.cols, cells: make([]Cell, len(g.cells))}
	copy(out.cells, g.cells)
	return out
}

// Equal reports whether both grids have identical dimensions and cells.
func (g *Grid) Equal(o *Grid) bool {
	if g.rows != o.rows || g.cols != o.cols {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Count returns how many filled cells carry the given name.
func (g *Grid) Count(name string) int {
	n := 0
	for _, c := range g.cells {
		if c.Kind == Filled && c.Name == name {
			n++
		}
	}
	return n
}

// Weight returns the summed weight of all containers.
func (g *Grid) Weight() int {
	w := 0
	for _, c := range g.cells {
		if c.Kind == Filled {
			w += c.Weight
		}
	}
	return w
}
