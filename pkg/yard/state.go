package yard

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"

	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/manifest"
)

// Move is one operator-visible crane action. Container is nil when the crane
// travels empty.
type Move struct {
	From      Position   `json:"from"`
	To        Position   `json:"to"`
	Cost      int        `json:"cost"`
	Container *Container `json:"container,omitempty"`
}

// String renders the move the way operators read it, e.g.
// "Move Cat {00099} from SHIP[01,02] to TRUCK in 12 minutes".
func (m Move) String() string {
	what := "crane"
	if m.Container != nil {
		what = m.Container.String()
	}
	return fmt.Sprintf("Move %s from %s to %s in %d minutes", what, m.From, m.To, m.Cost)
}

// State is a snapshot of the terminal during search: both grids, the crane,
// the accumulated cost G, the heuristic estimate H and the moves that led
// here. Successors are produced by cloning; a clone shares nothing mutable
// with its parent.
type State struct {
	layout *Layout
	ship   grid
	buffer grid
	crane  Position
	g, h   int
	moves  []Move
}

// Build creates the root state from a manifest. The manifest must match the
// layout's nominal ship dimensions and obey gravity: no container or blocked
// slot above an empty slot, and no container beneath a blocked slot.
// Blocked top rows extend into the overflow rows of their column.
func Build(layout Layout, m manifest.Reader) (*State, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	if rows != layout.ShipRows || cols != layout.ShipCols {
		return nil, errs.New(errs.ErrCodeInvalidManifest, "manifest is %dx%d, layout expects %dx%d", rows, cols, layout.ShipRows, layout.ShipCols)
	}

	s := &State{
		layout: &layout,
		ship:   newGrid(layout.ShipHeight(), layout.ShipCols),
		buffer: newGrid(layout.BufferRows, layout.BufferCols),
		crane:  RestPos,
	}

	for c := 0; c < cols; c++ {
		sawEmpty, sawFilled := false, false
		for r := 0; r < rows; r++ {
			cell := m.CellAt(r+1, c+1)
			sl := s.ship.at(r, c)
			switch cell.Kind {
			case manifest.Empty:
				sawEmpty = true
				continue
			case manifest.Blocked:
				if sawFilled {
					return nil, errs.New(errs.ErrCodeInvalidManifest, "container beneath blocked slot [%02d,%02d]", r+1, c+1)
				}
				sl.kind = slotBlocked
			case manifest.Filled:
				sawFilled = true
				sl.kind = slotFilled
				sl.box = Container{Name: cell.Name, Weight: cell.Weight}
			}
			if sawEmpty {
				return nil, errs.New(errs.ErrCodeInvalidManifest, "slot [%02d,%02d] floats above an empty slot", r+1, c+1)
			}
		}

		if s.ship.at(rows-1, c).kind == slotBlocked {
			for r := rows; r < layout.ShipHeight(); r++ {
				s.ship.at(r, c).kind = slotBlocked
			}
		}
	}

	s.ship.computeFree()
	return s, nil
}

// Clone returns an independent copy. The move history is clipped so that
// appending to either copy never writes into the other's backing array.
func (s *State) Clone() *State {
	out := *s
	out.ship = s.ship.clone()
	out.buffer = s.buffer.clone()
	out.moves = slices.Clip(s.moves)
	return &out
}

// Layout returns the grid dimensions the state was built with.
func (s *State) Layout() Layout { return *s.layout }

// Crane returns the crane position.
func (s *State) Crane() Position { return s.crane }

// Cost returns G, the time spent so far.
func (s *State) Cost() int { return s.g }

// Estimate returns H, the heuristic estimate of the remaining time.
func (s *State) Estimate() int { return s.h }

// SetEstimate stores H.
func (s *State) SetEstimate(h int) { s.h = h }

// Moves returns the recorded moves. The slice must not be modified.
func (s *State) Moves() []Move { return s.moves }

// Record appends a move and charges its cost. Every cost a state accrues
// goes through Record, so G always equals the sum of recorded move costs.
func (s *State) Record(m Move) {
	s.moves = append(s.moves, m)
	s.g += m.Cost
}

func (s *State) gridOf(loc Location) *grid {
	switch loc {
	case Ship:
		return &s.ship
	case Buffer:
		return &s.buffer
	}
	return nil
}

// ContainerAt returns the container at a grid position.
func (s *State) ContainerAt(p Position) (Container, bool) {
	g := s.gridOf(p.Loc)
	if g == nil || p.Row < 0 || p.Row >= g.rows || p.Col < 0 || p.Col >= g.cols {
		return Container{}, false
	}
	sl := g.at(p.Row, p.Col)
	return sl.box, sl.kind == slotFilled
}

// Occupied reports whether a grid position holds a container or is blocked.
func (s *State) Occupied(p Position) bool {
	g := s.gridOf(p.Loc)
	return g != nil && g.occupied(p.Row, p.Col)
}

// FreeSlots returns the height map entry of a column: free slots counted
// from the top of the grid.
func (s *State) FreeSlots(loc Location, col int) int {
	return s.gridOf(loc).free[col]
}

// Each calls fn for every container in loc, bottom row first.
func (s *State) Each(loc Location, fn func(Position, Container)) {
	g := s.gridOf(loc)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if sl := g.at(r, c); sl.kind == slotFilled {
				fn(Position{Loc: loc, Row: r, Col: c}, sl.box)
			}
		}
	}
}

// MoveCrane moves the crane to target and returns its previous position and
// the travel time. Travel within the crane's current grid climbs over
// stacks in the way. Nothing is recorded.
func (s *State) MoveCrane(target Position) (Position, int) {
	prev := s.crane
	var cost int
	if g := s.gridOf(prev.Loc); g != nil && prev.Loc == target.Loc {
		cost = s.layout.TravelAround(prev, target, g.occupied)
	} else {
		cost = s.layout.Travel(prev, target)
	}
	s.crane = target
	return prev, cost
}

// Goto moves the empty crane to target and records the trip. It records
// nothing when the crane is already there.
func (s *State) Goto(target Position) int {
	if s.crane == target {
		return 0
	}
	prev, cost := s.MoveCrane(target)
	s.Record(Move{From: prev, To: target, Cost: cost})
	return cost
}

// Unload carries the container at pos to the truck, recording both the trip
// to pos and the delivery. Containers above pos must already be cleared.
func (s *State) Unload(pos Position) (Container, bool) {
	box, ok := s.ContainerAt(pos)
	if !ok || len(s.ContainersAbove(pos)) > 0 {
		return Container{}, false
	}
	s.Goto(pos)

	s.gridOf(pos.Loc).take(pos.Row, pos.Col)
	prev, cost := s.MoveCrane(TruckPos)
	s.Record(Move{From: prev, To: TruckPos, Cost: cost, Container: &box})
	return box, true
}

// ContainersAbove lists the containers stacked above pos, bottom to top.
// They must be relocated before pos can be reached.
func (s *State) ContainersAbove(pos Position) []Position {
	g := s.gridOf(pos.Loc)
	var out []Position
	for r := pos.Row + 1; r < g.rows; r++ {
		if g.at(r, pos.Col).kind == slotFilled {
			out = append(out, Position{Loc: pos.Loc, Row: r, Col: pos.Col})
		}
	}
	return out
}

// BufferOccupants lists every container in the buffer grid.
func (s *State) BufferOccupants() []Position {
	var out []Position
	s.Each(Buffer, func(p Position, _ Container) { out = append(out, p) })
	return out
}

// OverflowOccupants lists every container in the ship's overflow rows.
func (s *State) OverflowOccupants() []Position {
	var out []Position
	for r := s.layout.ShipRows; r < s.layout.ShipHeight(); r++ {
		for c := 0; c < s.ship.cols; c++ {
			if s.ship.at(r, c).kind == slotFilled {
				out = append(out, ShipAt(r, c))
			}
		}
	}
	return out
}

// Stranded reports whether any container sits in the buffer or the ship's
// overflow rows.
func (s *State) Stranded() bool {
	for _, sl := range s.buffer.slots {
		if sl.kind == slotFilled {
			return true
		}
	}
	for _, sl := range s.ship.slots[s.layout.ShipRows*s.ship.cols:] {
		if sl.kind == slotFilled {
			return true
		}
	}
	return false
}

// SideWeights sums container weight on each half of the ship, overflow
// rows included.
func (s *State) SideWeights() (left, right int) {
	half := s.layout.Half()
	for i, sl := range s.ship.slots {
		if sl.kind != slotFilled {
			continue
		}
		if i%s.ship.cols < half {
			left += sl.box.Weight
		} else {
			right += sl.box.Weight
		}
	}
	return left, right
}

// BufferWeight sums container weight parked in the buffer.
func (s *State) BufferWeight() int {
	w := 0
	for _, sl := range s.buffer.slots {
		if sl.kind == slotFilled {
			w += sl.box.Weight
		}
	}
	return w
}

// Hash writes the structural identity of the state (grid contents and crane
// position) to d. Costs and move history are not part of the identity.
func (s *State) Hash(d *xxhash.Digest) {
	var buf [3]byte
	for _, g := range [...]*grid{&s.ship, &s.buffer} {
		for _, sl := range g.slots {
			buf[0] = byte(sl.kind)
			_, _ = d.Write(buf[:1])
			if sl.kind == slotFilled {
				_, _ = d.WriteString(sl.box.Name)
				_, _ = d.Write([]byte{0})
			}
		}
	}
	buf[0] = byte(s.crane.Loc)
	buf[1] = byte(s.crane.Row)
	buf[2] = byte(s.crane.Col)
	_, _ = d.Write(buf[:])
}

// Key returns the visited-set key of the state.
func (s *State) Key() uint64 {
	d := xxhash.New()
	s.Hash(d)
	return d.Sum64()
}

// Export writes the nominal ship rows back to a manifest, cell by cell.
// It fails when containers are still stranded in the overflow rows, since a
// manifest has no room for them.
func (s *State) Export(w manifest.Writer) error {
	rows, cols := w.Dims()
	if rows != s.layout.ShipRows || cols != s.layout.ShipCols {
		return errs.New(errs.ErrCodeInvalidManifest, "manifest is %dx%d, layout expects %dx%d", rows, cols, s.layout.ShipRows, s.layout.ShipCols)
	}
	if n := len(s.OverflowOccupants()); n > 0 {
		return errs.New(errs.ErrCodeInternal, "%d containers remain in overflow rows", n)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sl := s.ship.at(r, c)
			var cell manifest.Cell
			switch sl.kind {
			case slotBlocked:
				cell = manifest.BlockedCell()
			case slotFilled:
				cell = manifest.Container(sl.box.Name, sl.box.Weight)
			}
			w.SetCell(r+1, c+1, cell)
		}
	}
	return nil
}

// Manifest returns the nominal ship rows as a new manifest grid.
func (s *State) Manifest() (*manifest.Grid, error) {
	g := manifest.New(s.layout.ShipRows, s.layout.ShipCols)
	if err := s.Export(g); err != nil {
		return nil, err
	}
	return g, nil
}
