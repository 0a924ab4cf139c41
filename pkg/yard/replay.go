package yard

import (
	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/manifest"
)

// Replay applies a recorded move list to the manifest it was planned from
// and returns the resulting state. Every move must start where the crane
// is; container moves must pick up a reachable container of the recorded
// name and drop it on a supported free cell or on the truck. Costs are
// taken as recorded, so the result's Cost is the plan's total time.
func Replay(layout Layout, m manifest.Reader, moves []Move) (*State, error) {
	s, err := Build(layout, m)
	if err != nil {
		return nil, err
	}
	for i, mv := range moves {
		if err := s.apply(mv); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidPlan, err, "move %d (%s)", i+1, mv)
		}
	}
	return s, nil
}

func (s *State) apply(mv Move) error {
	if mv.From != s.crane {
		return errs.New(errs.ErrCodeInvalidPlan, "crane is at %s", s.crane)
	}
	if mv.Cost < 0 {
		return errs.New(errs.ErrCodeInvalidPlan, "negative cost")
	}
	if mv.Container == nil {
		s.crane = mv.To
		s.Record(mv)
		return nil
	}

	var box Container
	switch {
	case mv.From.Loc == Truck:
		box = *mv.Container
	case mv.From.Loc.IsGrid():
		got, ok := s.ContainerAt(mv.From)
		if !ok || got.Name != mv.Container.Name {
			return errs.New(errs.ErrCodeInvalidPlan, "no %s at %s", mv.Container.Name, mv.From)
		}
		if len(s.ContainersAbove(mv.From)) > 0 {
			return errs.New(errs.ErrCodeInvalidPlan, "%s is buried", mv.From)
		}
		box = s.gridOf(mv.From.Loc).take(mv.From.Row, mv.From.Col)
	default:
		return errs.New(errs.ErrCodeInvalidPlan, "cannot pick up a container at %s", mv.From.Loc)
	}

	switch {
	case mv.To.Loc == Truck:
	case mv.To.Loc.IsGrid():
		g := s.gridOf(mv.To.Loc)
		if mv.To.Row < 0 || mv.To.Row >= g.rows || mv.To.Col < 0 || mv.To.Col >= g.cols || mv.To.Row != g.topFree(mv.To.Col) {
			return errs.New(errs.ErrCodeInvalidPlan, "%s is not the top of its stack", mv.To)
		}
		g.put(mv.To.Row, mv.To.Col, box)
	default:
		return errs.New(errs.ErrCodeInvalidPlan, "cannot drop a container at %s", mv.To.Loc)
	}

	s.crane = mv.To
	s.Record(mv)
	return nil
}
