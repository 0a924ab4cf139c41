package yard

import "fmt"

// Container is a named, weighted box. Containers that share a name are
// interchangeable for matching requests but occupy distinct slots.
type Container struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// String renders the container as in move listings, e.g. "Cat {00099}".
func (c Container) String() string {
	return fmt.Sprintf("%s {%05d}", c.Name, c.Weight)
}

type slotKind uint8

const (
	slotFree slotKind = iota
	slotBlocked
	slotFilled
)

type slot struct {
	kind slotKind
	box  Container
}

// grid is a flat row-major stack of slots, row 0 at the bottom. free holds,
// per column, the number of free slots counted from the top; it is kept in
// step with every mutation and never recomputed after construction.
type grid struct {
	rows, cols int
	slots      []slot
	free       []int
}

func newGrid(rows, cols int) grid {
	g := grid{
		rows:  rows,
		cols:  cols,
		slots: make([]slot, rows*cols),
		free:  make([]int, cols),
	}
	for c := range g.free {
		g.free[c] = rows
	}
	return g
}

func (g *grid) at(row, col int) *slot {
	return &g.slots[row*g.cols+col]
}

// occupied reports whether the crane cannot pass through (row, col).
// Rows at or above the grid are always passable.
func (g *grid) occupied(row, col int) bool {
	if row >= g.rows {
		return false
	}
	return g.at(row, col).kind != slotFree
}

// topFree is the lowest free row of col, or rows when the column is full.
func (g *grid) topFree(col int) int {
	return g.rows - g.free[col]
}

// take empties a filled slot and returns its container.
func (g *grid) take(row, col int) Container {
	sl := g.at(row, col)
	box := sl.box
	*sl = slot{}
	g.free[col]++
	return box
}

// put fills the lowest free slot of col, which must be row.
func (g *grid) put(row, col int, box Container) {
	*g.at(row, col) = slot{kind: slotFilled, box: box}
	g.free[col]--
}

// computeFree derives the height map from the slots. Construction only.
func (g *grid) computeFree() {
	for c := 0; c < g.cols; c++ {
		g.free[c] = g.rows
		for r := g.rows - 1; r >= 0; r-- {
			if g.at(r, c).kind != slotFree {
				g.free[c] = g.rows - r - 1
				break
			}
		}
	}
}

func (g grid) clone() grid {
	out := grid{rows: g.rows, cols: g.cols}
	out.slots = make([]slot, len(g.slots))
	copy(out.slots, g.slots)
	out.free = make([]int, len(g.free))
	copy(out.free, g.free)
	return out
}
