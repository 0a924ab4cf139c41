package yard

// Direction is the horizontal heading of a corridor scan.
type Direction int

const (
	Left  Direction = -1
	Right Direction = 1
)

// SearchOptions controls where a relocation may land.
type SearchOptions struct {
	// AllowBuffer permits leaving the ship for the buffer and landing there.
	AllowBuffer bool
	// AllowOverflow permits landing in the ship's overflow rows.
	AllowOverflow bool
	// IncludeStart evaluates the start cell itself. Fresh containers arriving
	// at a gateway may be dropped straight down; a relocated container may
	// not land where it was picked up.
	IncludeStart bool
	// Placement adds a goal-specific penalty for a landing cell. It ranks
	// cells but is never charged as move time. It must be non-negative;
	// Infeasible rules the cell out. Nil means no penalty.
	Placement func(Position) int
}

func (o SearchOptions) placement(p Position) int {
	if o.Placement == nil {
		return 0
	}
	return o.Placement(p)
}

// DropAt returns how many rows a container released at pos falls before it
// lands, so that the landing row is pos.Row minus the result. It returns
// Infeasible when pos is inside a stack, when the column is full, or when
// the landing row is an overflow row and allowOverflow is false.
func (s *State) DropAt(pos Position, allowOverflow bool) int {
	g := s.gridOf(pos.Loc)
	d := g.free[pos.Col] - (g.rows - pos.Row)
	if d < 0 {
		return Infeasible
	}
	if d == 0 && pos.Row == g.rows {
		return Infeasible
	}
	if pos.Loc == Ship && !allowOverflow && pos.Row-d >= s.layout.ShipRows {
		return Infeasible
	}
	return d
}

// Corridor scans from start in one direction and returns the best landing
// cell with its cost: crane travel plus drop distance. Cells are ranked by
// cost plus the placement penalty; the penalty never enters the cost. The
// crane climbs over stacks in its way. At the left edge of the ship it may
// cross to the buffer (only with AllowBuffer); at the right edge of the
// buffer it always may cross back to the ship. The buffer lies to the left
// of the ship, so a crossing keeps its heading.
//
// The scan stops once travel alone exceeds the best rank found. The cost is
// Infeasible when no cell qualifies.
func (s *State) Corridor(start Position, dir Direction, opts SearchOptions) (Position, int) {
	c := s.corridor(start, dir, opts)
	return c.pos, c.cost
}

// candidate is a landing cell found by a corridor scan.
type candidate struct {
	pos  Position
	cost int // travel + drop
	rank int // cost + placement penalty
}

func (s *State) corridor(start Position, dir Direction, opts SearchOptions) candidate {
	best := candidate{cost: Infeasible, rank: Infeasible}

	consider := func(p Position, dist int) {
		g := s.gridOf(p.Loc)
		if g.occupied(p.Row, p.Col) {
			return
		}
		if p.Loc == Buffer && !opts.AllowBuffer {
			return
		}
		drop := s.DropAt(p, opts.AllowOverflow)
		if IsInfeasible(drop) {
			return
		}
		landing := Position{Loc: p.Loc, Row: p.Row - drop, Col: p.Col}
		penalty := opts.placement(landing)
		if IsInfeasible(penalty) {
			return
		}
		cost := dist + drop
		if rank := cost + penalty; rank < best.rank {
			best = candidate{pos: landing, cost: cost, rank: rank}
		}
	}

	cur, dist := start, 0
	if opts.IncludeStart {
		consider(cur, dist)
	}

	for dist <= best.rank {
		g := s.gridOf(cur.Loc)
		next := cur.Col + int(dir)

		if next < 0 || next >= g.cols {
			exitShip := cur.Loc == Ship && dir == Left && opts.AllowBuffer
			exitBuffer := cur.Loc == Buffer && dir == Right
			if !exitShip && !exitBuffer {
				break
			}
			dist += g.rows - cur.Row
			other := Buffer
			if cur.Loc == Buffer {
				other = Ship
			}
			gw, ogw := s.layout.Gateway(cur.Loc), s.layout.Gateway(other)
			dist += s.layout.Travel(gw, ogw)
			cur = ogw
			consider(cur, dist)
			continue
		}

		if cur.Row < g.rows && g.occupied(cur.Row, next) {
			cur.Row++
		} else {
			cur.Col = next
			dist++
			consider(cur, dist)
			continue
		}
		dist++
	}
	return best
}

// Search runs Corridor in both directions and returns the better ranked
// landing cell with its cost. Ties go left. The state is not modified.
func (s *State) Search(start Position, opts SearchOptions) (Position, int) {
	l := s.corridor(start, Left, opts)
	r := s.corridor(start, Right, opts)
	if r.rank < l.rank {
		return r.pos, r.cost
	}
	return l.pos, l.cost
}

// SearchAndRelocate searches from start and carries out the best move.
//
// With fresh set, the crane brings fresh from wherever it is (normally the
// truck) through start, a gateway, and drops it at the landing cell; the
// start cell itself is a candidate. Otherwise the crane goes to start, picks
// up its container and drops it at the landing cell, which may be in the
// other grid. Either way the move is recorded and the crane ends at the
// landing cell.
//
// ok is false when no landing cell qualifies. The state must then be
// discarded.
func (s *State) SearchAndRelocate(start Position, opts SearchOptions, fresh *Container) (dst Position, ok bool) {
	if fresh != nil {
		opts.IncludeStart = true
	}
	dst, cost := s.Search(start, opts)
	if IsInfeasible(cost) {
		return Position{}, false
	}

	var (
		from = start
		box  Container
	)
	if fresh != nil {
		from = s.crane
		cost += s.layout.Travel(s.crane, start)
		box = *fresh
	} else {
		s.Goto(start)
		box = s.gridOf(start.Loc).take(start.Row, start.Col)
	}
	s.gridOf(dst.Loc).put(dst.Row, dst.Col, box)

	s.crane = dst
	s.Record(Move{From: from, To: dst, Cost: cost, Container: &box})
	return dst, true
}
