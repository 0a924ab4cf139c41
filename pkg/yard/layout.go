package yard

import (
	"fmt"
	"math"

	errs "github.com/matzehuels/craneplan/pkg/errors"
)

// Infeasible marks a cost that cannot be paid: a drop that is not allowed, a
// relocation with no legal target, or a heuristic for an unreachable goal.
// It is far below math.MaxInt so that summing a handful of them never wraps.
const Infeasible = math.MaxInt32

// IsInfeasible reports whether c is at or beyond Infeasible.
func IsInfeasible(c int) bool { return c >= Infeasible }

// Transfer costs between locations, in minutes.
const (
	costShipBuffer = 4
	costToTruck    = 2
	costToRest     = 1
	costTruckRest  = 1
)

// Layout fixes the dimensions of the ship and buffer grids.
//
// The ship has ShipRows nominal rows plus Overflow extra rows above them that
// are only used when a relocation explicitly allows it. Each grid has one
// transfer cell (its gateway) one row above the grid: the ship's sits over
// column 0, the buffer's over its last column. All cross-location travel is
// priced through these two cells.
type Layout struct {
	ShipRows   int `toml:"ship_rows" json:"ship_rows"`
	ShipCols   int `toml:"ship_cols" json:"ship_cols"`
	Overflow   int `toml:"overflow_rows" json:"overflow_rows"`
	BufferRows int `toml:"buffer_rows" json:"buffer_rows"`
	BufferCols int `toml:"buffer_cols" json:"buffer_cols"`
}

// DefaultLayout is the standard terminal: an 8x12 hold with two overflow rows
// and a 4x24 buffer.
var DefaultLayout = Layout{
	ShipRows:   8,
	ShipCols:   12,
	Overflow:   2,
	BufferRows: 4,
	BufferCols: 24,
}

// Validate rejects layouts the search cannot operate on.
func (l Layout) Validate() error {
	if l.ShipRows <= 0 || l.ShipCols <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "ship must have positive dimensions, got %dx%d", l.ShipRows, l.ShipCols)
	}
	if l.ShipCols%2 != 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "ship needs an even column count to split into halves, got %d", l.ShipCols)
	}
	if l.Overflow < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "overflow rows cannot be negative")
	}
	if l.BufferRows <= 0 || l.BufferCols <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "buffer must have positive dimensions, got %dx%d", l.BufferRows, l.BufferCols)
	}
	return nil
}

// ShipHeight is the number of stackable ship rows including overflow.
func (l Layout) ShipHeight() int { return l.ShipRows + l.Overflow }

// Half is the first column of the ship's right half.
func (l Layout) Half() int { return l.ShipCols / 2 }

// ShipGateway is the ship's transfer cell, above column 0.
func (l Layout) ShipGateway() Position { return ShipAt(l.ShipHeight(), 0) }

// BufferGateway is the buffer's transfer cell, above its last column.
func (l Layout) BufferGateway() Position { return BufferAt(l.BufferRows, l.BufferCols-1) }

// Gateway returns the transfer cell of a grid location.
func (l Layout) Gateway(loc Location) Position {
	switch loc {
	case Ship:
		return l.ShipGateway()
	case Buffer:
		return l.BufferGateway()
	}
	panic(fmt.Sprintf("yard: %s has no gateway", loc))
}

// InOverflow reports whether p lies in the ship's overflow rows.
func (l Layout) InOverflow(p Position) bool {
	return p.Loc == Ship && p.Row >= l.ShipRows && p.Row < l.ShipHeight()
}

// Travel returns the crane travel time between two positions, ignoring
// obstacles. Within a grid it is the Manhattan distance; across locations it
// is a fixed transfer cost plus the distance to and from the gateways.
//
// Travel panics on an unknown location: every valid pair of locations is
// priced, so anything else is a programming error.
func (l Layout) Travel(from, to Position) int {
	if from.Loc == to.Loc {
		if !from.Loc.IsGrid() {
			return 0
		}
		return manhattan(from, to)
	}

	switch {
	case from.Loc == Ship && to.Loc == Buffer:
		return costShipBuffer + manhattan(from, l.ShipGateway()) + manhattan(l.BufferGateway(), to)
	case from.Loc == Buffer && to.Loc == Ship:
		return costShipBuffer + manhattan(from, l.BufferGateway()) + manhattan(l.ShipGateway(), to)

	case from.Loc.IsGrid() && to.Loc == Truck:
		return costToTruck + manhattan(from, l.Gateway(from.Loc))
	case from.Loc == Truck && to.Loc.IsGrid():
		return costToTruck + manhattan(to, l.Gateway(to.Loc))

	case from.Loc.IsGrid() && to.Loc == CraneRest:
		return costToRest + manhattan(from, l.Gateway(from.Loc))
	case from.Loc == CraneRest && to.Loc.IsGrid():
		return costToRest + manhattan(to, l.Gateway(to.Loc))

	case from.Loc == Truck && to.Loc == CraneRest, from.Loc == CraneRest && to.Loc == Truck:
		return costTruckRest
	}
	panic(fmt.Sprintf("yard: invalid move from %s to %s", from, to))
}

// TravelAround prices travel between two cells of the same grid, climbing
// over stacks in the way. The crane heads for the target column; whenever the
// next cell at its current row is occupied it climbs one row (one minute)
// and tries again. The target cell itself never blocks, so a container level
// with the crane is picked up from the side. On the target column the crane
// moves straight to the target row.
//
// Positions in different locations fall back to Travel.
func (l Layout) TravelAround(from, to Position, occupied func(row, col int) bool) int {
	if from.Loc != to.Loc || !from.Loc.IsGrid() || occupied == nil {
		return l.Travel(from, to)
	}

	top := l.ShipHeight()
	if from.Loc == Buffer {
		top = l.BufferRows
	}

	step := 1
	if to.Col < from.Col {
		step = -1
	}

	cur, cost := from, 0
	for cur.Col != to.Col {
		next := cur.Col + step
		arriving := next == to.Col && cur.Row == to.Row
		if cur.Row < top && !arriving && occupied(cur.Row, next) {
			cur.Row++
		} else {
			cur.Col = next
		}
		cost++
	}
	return cost + abs(cur.Row-to.Row)
}
