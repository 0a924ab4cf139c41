// Package balance plans crane moves that even out the weight of the two
// halves of a ship's hold.
//
// A plan is complete when the heavier half weighs less than 1.1 times the
// lighter one, nothing is left in the buffer or the overflow rows, and the
// crane is back at rest.
package balance

import (
	"context"

	"github.com/matzehuels/craneplan/pkg/manifest"
	"github.com/matzehuels/craneplan/pkg/planner"
	"github.com/matzehuels/craneplan/pkg/yard"
)

// MaxRatio is the largest accepted heavy/light weight ratio, exclusive.
const MaxRatio = 1.1

// Band bounds used by the heuristic, as fractions of the total weight.
const (
	bandLow  = 0.48
	bandHigh = 0.52
)

// State is a balance search node.
type State struct {
	*yard.State

	// lo and hi bound the target weight of either half, fixed from the
	// manifest's total weight.
	lo, hi float64
}

// New builds the root state for a manifest.
func New(layout yard.Layout, m manifest.Reader) (*State, error) {
	ys, err := yard.Build(layout, m)
	if err != nil {
		return nil, err
	}
	l, r := ys.SideWeights()
	total := float64(l + r)
	s := &State{State: ys, lo: total * bandLow, hi: total * bandHigh}
	s.SetEstimate(s.Heuristic())
	return s, nil
}

// Balanced reports whether two half weights are within MaxRatio.
func Balanced(left, right int) bool {
	heavy, light := max(left, right), min(left, right)
	return float64(heavy)/float64(max(1, light)) < MaxRatio
}

// IsGoal reports whether the hold is balanced, nothing is stranded and the
// crane is at rest.
func (s *State) IsGoal() bool {
	return Balanced(s.SideWeights()) && s.Crane() == yard.RestPos && !s.Stranded()
}

// Heuristic estimates the remaining time: evacuating stranded containers,
// returning the crane to rest, and a greedy weight transfer across the half
// line. The transfer picks the heaviest container on the heavy half that
// does not push the light half past the band, charging twice its distance
// to the half line, until the light half lands inside the band. It returns
// yard.Infeasible when the greedy transfer gets stuck.
//
// The estimate is not admissible; plans are good, not provably optimal.
func (s *State) Heuristic() int {
	h := 0
	for _, p := range s.strandedPositions() {
		_, c := s.Search(p, yard.SearchOptions{})
		if yard.IsInfeasible(c) {
			return yard.Infeasible
		}
		h += c
	}
	if s.Crane() != yard.RestPos {
		h += s.Layout().Travel(s.Crane(), yard.RestPos)
	}

	left, right := s.SideWeights()
	if Balanced(left, right) {
		return h
	}

	lay := s.Layout()
	half := lay.Half()
	heavyLeft := left > right
	light := right
	if !heavyLeft {
		light = left
	}
	// Buffered containers can return to either half; credit them to the
	// light half when that does not overshoot.
	if buf := s.BufferWeight(); float64(light+buf) < s.hi {
		light += buf
	}

	used := make(map[yard.Position]bool)
	for !(s.lo < float64(light) && float64(light) < s.hi) {
		best, bestW := yard.Position{}, 0
		s.Each(yard.Ship, func(p yard.Position, c yard.Container) {
			if (p.Col < half) != heavyLeft || used[p] {
				return
			}
			if float64(light+c.Weight) < s.hi && c.Weight > bestW {
				best, bestW = p, c.Weight
			}
		})
		if bestW == 0 {
			return yard.Infeasible
		}
		used[best] = true
		light += bestW
		if heavyLeft {
			h += 2 * (half - best.Col)
		} else {
			h += 2 * (best.Col - half)
		}
	}
	return h
}

func (s *State) strandedPositions() []yard.Position {
	return append(s.BufferOccupants(), s.OverflowOccupants()...)
}

func (s *State) clone() *State {
	out := *s
	out.State = s.State.Clone()
	return &out
}

// finish computes the estimate of a successor, reporting false when the
// successor should be pruned.
func (s *State) finish() bool {
	h := s.Heuristic()
	s.SetEstimate(h)
	return !yard.IsInfeasible(h)
}

// Successors returns every state one operator action away: moving any ship
// container across the half line (after clearing what sits on it), moving a
// stranded container back into the hold, or parking the crane.
func (s *State) Successors() []*State {
	var out []*State

	s.Each(yard.Ship, func(p yard.Position, _ yard.Container) {
		if next, ok := s.crossHalf(p); ok {
			out = append(out, next)
		}
	})

	for _, p := range s.strandedPositions() {
		if len(s.ContainersAbove(p)) > 0 {
			continue
		}
		next := s.clone()
		if _, ok := next.SearchAndRelocate(p, yard.SearchOptions{}, nil); ok && next.finish() {
			out = append(out, next)
		}
	}

	if s.Crane() != yard.RestPos {
		next := s.clone()
		next.Goto(yard.RestPos)
		if next.finish() {
			out = append(out, next)
		}
	}
	return out
}

// crossHalf moves the container at p to the other half of the ship. Anything
// stacked on it is relocated first, preferring the nominal hold over the
// buffer and overflow rows.
func (s *State) crossHalf(p yard.Position) (*State, bool) {
	next := s.clone()
	lay := next.Layout()

	park := yard.SearchOptions{
		AllowBuffer:   true,
		AllowOverflow: true,
		Placement: func(q yard.Position) int {
			if q.Loc == yard.Ship && !lay.InOverflow(q) {
				return 0
			}
			return lay.Travel(q, lay.ShipGateway())
		},
	}
	above := next.ContainersAbove(p)
	for i := len(above) - 1; i >= 0; i-- {
		if _, ok := next.SearchAndRelocate(above[i], park, nil); !ok {
			return nil, false
		}
	}

	leftToRight := p.Col < lay.Half()
	across := yard.SearchOptions{
		AllowOverflow: true,
		Placement: func(q yard.Position) int {
			if q.Loc != yard.Ship || (q.Col >= lay.Half()) != leftToRight {
				return yard.Infeasible
			}
			return 0
		},
	}
	if _, ok := next.SearchAndRelocate(p, across, nil); !ok {
		return nil, false
	}
	return next, next.finish()
}

// Solve plans a balance for m. When the hold is already balanced the plan
// is empty.
func Solve(ctx context.Context, layout yard.Layout, m manifest.Reader, opts planner.Options) (*State, planner.Stats, error) {
	root, err := New(layout, m)
	if err != nil {
		return nil, planner.Stats{}, err
	}
	if opts.Goal == "" {
		opts.Goal = "balance"
	}
	return planner.Search(ctx, []*State{root}, opts)
}
