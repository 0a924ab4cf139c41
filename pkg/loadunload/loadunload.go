// Package loadunload plans crane moves that take named containers off a ship
// and put new ones on.
//
// A plan is complete when every requested container has gone to the truck,
// every new container sits in the hold, and nothing is left in the buffer or
// the overflow rows. When a requested name appears several times in the
// hold, every choice of which copies to take is searched at once; see
// [Roots].
package loadunload

import (
	"context"
	"slices"

	"github.com/cespare/xxhash/v2"

	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/manifest"
	"github.com/matzehuels/craneplan/pkg/perm"
	"github.com/matzehuels/craneplan/pkg/planner"
	"github.com/matzehuels/craneplan/pkg/yard"
)

// EstimatedUnloadCost is the penalty, per pending unload beneath it, for
// parking a container on top of a stack that still has to be dug out.
const EstimatedUnloadCost = 20

// DefaultMaxAssignments caps the number of unload assignments seeded as
// search roots.
const DefaultMaxAssignments = 1000

// Request lists the containers to put on the ship and the names of those to
// take off. A name listed twice takes off two containers of that name.
type Request struct {
	Loads   []yard.Container `json:"loads"`
	Unloads []string         `json:"unloads"`
}

// Validate checks names and weights.
func (r Request) Validate() error {
	for _, c := range r.Loads {
		if err := errs.ValidateContainerName(c.Name); err != nil {
			return err
		}
		if err := errs.ValidateWeight(c.Weight); err != nil {
			return err
		}
	}
	for _, name := range r.Unloads {
		if err := errs.ValidateContainerName(name); err != nil {
			return err
		}
	}
	return nil
}

// State is a load/unload search node.
type State struct {
	*yard.State
	toLoad   []yard.Container
	toUnload []yard.Position
}

// PendingLoads returns the containers still waiting on the truck.
func (s *State) PendingLoads() []yard.Container { return s.toLoad }

// PendingUnloads returns the positions still to be unloaded.
func (s *State) PendingUnloads() []yard.Position { return s.toUnload }

// Key extends the grid identity with the pending lists: two roots with the
// same grid but different unload assignments are different searches.
func (s *State) Key() uint64 {
	d := xxhash.New()
	s.Hash(d)
	for _, c := range s.toLoad {
		_, _ = d.WriteString(c.Name)
		_, _ = d.Write([]byte{0})
	}
	_, _ = d.Write([]byte{0xff})
	for _, p := range s.toUnload {
		_, _ = d.Write([]byte{byte(p.Loc), byte(p.Row), byte(p.Col)})
	}
	return d.Sum64()
}

// IsGoal reports whether both pending lists are empty and nothing is
// stranded.
func (s *State) IsGoal() bool {
	return len(s.toLoad) == 0 && len(s.toUnload) == 0 && !s.Stranded()
}

// unloadPenalty charges EstimatedUnloadCost for every pending unload below p.
func (s *State) unloadPenalty(p yard.Position) int {
	if p.Loc != yard.Ship {
		return 0
	}
	n := 0
	for _, u := range s.toUnload {
		if u.Col == p.Col && u.Row < p.Row {
			n++
		}
	}
	return n * EstimatedUnloadCost
}

func (s *State) placement(opts yard.SearchOptions) yard.SearchOptions {
	opts.Placement = s.unloadPenalty
	return opts
}

// Heuristic estimates the remaining time: twice the distance from each
// pending unload to the ship gateway, the best placement from the gateway
// for each pending load, the re-entry placement plus the trip to the buffer
// gateway for each buffered container, and an in-hold relocation for each
// overflow container. It returns yard.Infeasible when a load or a stranded
// container has nowhere to go.
func (s *State) Heuristic() int {
	lay := s.Layout()
	gw := lay.ShipGateway()
	h := 0

	for _, p := range s.toUnload {
		h += 2 * lay.Travel(p, gw)
	}

	reentry := -1
	entryCost := func() int {
		if reentry < 0 {
			_, reentry = s.Search(gw, s.placement(yard.SearchOptions{IncludeStart: true}))
		}
		return reentry
	}

	for range s.toLoad {
		c := entryCost()
		if yard.IsInfeasible(c) {
			return yard.Infeasible
		}
		h += c
	}
	for _, p := range s.BufferOccupants() {
		c := entryCost()
		if yard.IsInfeasible(c) {
			return yard.Infeasible
		}
		h += c + lay.Travel(p, lay.BufferGateway())
	}
	for _, p := range s.OverflowOccupants() {
		_, c := s.Search(p, s.placement(yard.SearchOptions{}))
		if yard.IsInfeasible(c) {
			return yard.Infeasible
		}
		h += c
	}
	return h
}

func (s *State) clone() *State {
	return &State{
		State:    s.State.Clone(),
		toLoad:   slices.Clone(s.toLoad),
		toUnload: slices.Clone(s.toUnload),
	}
}

func (s *State) finish() bool {
	h := s.Heuristic()
	s.SetEstimate(h)
	return !yard.IsInfeasible(h)
}

// Successors returns every state one operator action away: unloading any
// pending container, loading the next pending one, or moving a stranded
// container back into the hold.
func (s *State) Successors() []*State {
	var out []*State
	add := func(next *State, ok bool) {
		if ok && next.finish() {
			out = append(out, next)
		}
	}

	for i := range s.toUnload {
		add(s.unload(i))
	}
	if len(s.toLoad) > 0 {
		add(s.load())
	}
	for _, p := range s.BufferOccupants() {
		if len(s.ContainersAbove(p)) > 0 {
			continue
		}
		add(s.restow(p))
	}
	for _, p := range s.OverflowOccupants() {
		if len(s.ContainersAbove(p)) > 0 {
			continue
		}
		add(s.restow(p))
	}
	return out
}

// unload digs out the i-th pending unload and sends it to the truck. It
// fails when a container stacked above is itself pending, since that one
// has to go first.
func (s *State) unload(i int) (*State, bool) {
	target := s.toUnload[i]
	next := s.clone()
	next.toUnload = slices.Delete(next.toUnload, i, i+1)

	above := next.ContainersAbove(target)
	for _, p := range above {
		if slices.Contains(next.toUnload, p) {
			return nil, false
		}
	}
	park := next.placement(yard.SearchOptions{AllowBuffer: true, AllowOverflow: true})
	for j := len(above) - 1; j >= 0; j-- {
		if _, ok := next.SearchAndRelocate(above[j], park, nil); !ok {
			return nil, false
		}
	}
	_, ok := next.Unload(target)
	return next, ok
}

// load brings the next pending container from the truck into the hold.
func (s *State) load() (*State, bool) {
	next := s.clone()
	box := next.toLoad[0]
	next.toLoad = next.toLoad[1:]

	next.Goto(yard.TruckPos)
	_, ok := next.SearchAndRelocate(next.Layout().ShipGateway(), next.placement(yard.SearchOptions{}), &box)
	return next, ok
}

// restow moves a buffered or overflow container into the nominal hold.
func (s *State) restow(p yard.Position) (*State, bool) {
	next := s.clone()
	_, ok := next.SearchAndRelocate(p, next.placement(yard.SearchOptions{}), nil)
	return next, ok
}

// Roots builds the starting states for a request. Each distinct choice of
// which same-named containers to unload becomes its own root, so the search
// settles the choice together with the move order. When there are more than
// maxAssignments choices, a single root takes the copies nearest the ship
// gateway instead.
//
// Asking for more containers of a name than the hold contains is an
// ErrCodeInvalidRequest error.
func Roots(layout yard.Layout, m manifest.Reader, req Request, maxAssignments int) ([]*State, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	base, err := yard.Build(layout, m)
	if err != nil {
		return nil, err
	}
	if maxAssignments <= 0 {
		maxAssignments = DefaultMaxAssignments
	}

	var (
		names  []string
		counts = make(map[string]int)
	)
	for _, name := range req.Unloads {
		if counts[name] == 0 {
			names = append(names, name)
		}
		counts[name]++
	}

	candidates := make([][]yard.Position, len(names))
	sizes := make([]int, len(names))
	for i, name := range names {
		base.Each(yard.Ship, func(p yard.Position, c yard.Container) {
			if c.Name == name && !layout.InOverflow(p) {
				candidates[i] = append(candidates[i], p)
			}
		})
		if len(candidates[i]) < counts[name] {
			return nil, errs.New(errs.ErrCodeInvalidRequest, "requested %d x %q, ship holds %d", counts[name], name, len(candidates[i]))
		}
		sizes[i] = perm.Binomial(len(candidates[i]), counts[name])
	}

	root := func(unloads []yard.Position) *State {
		s := &State{
			State:    base.Clone(),
			toLoad:   slices.Clone(req.Loads),
			toUnload: unloads,
		}
		s.SetEstimate(s.Heuristic())
		return s
	}

	if perm.Count(sizes) > maxAssignments {
		gw := layout.ShipGateway()
		var unloads []yard.Position
		for i, name := range names {
			cands := slices.Clone(candidates[i])
			slices.SortStableFunc(cands, func(a, b yard.Position) int {
				return layout.Travel(a, gw) - layout.Travel(b, gw)
			})
			unloads = append(unloads, cands[:counts[name]]...)
		}
		return []*State{root(unloads)}, nil
	}

	choices := make([][][]int, len(names))
	for i, name := range names {
		choices[i] = perm.Combinations(len(candidates[i]), counts[name], 0)
	}

	var roots []*State
	for _, tuple := range perm.Product(sizes, 0) {
		var unloads []yard.Position
		for i, pick := range tuple {
			for _, idx := range choices[i][pick] {
				unloads = append(unloads, candidates[i][idx])
			}
		}
		roots = append(roots, root(unloads))
	}
	return roots, nil
}

// Options tunes Solve.
type Options struct {
	planner.Options
	MaxAssignments int
}

// Solve plans the request against m.
func Solve(ctx context.Context, layout yard.Layout, m manifest.Reader, req Request, opts Options) (*State, planner.Stats, error) {
	roots, err := Roots(layout, m, req, opts.MaxAssignments)
	if err != nil {
		return nil, planner.Stats{}, err
	}
	po := opts.Options
	if po.Goal == "" {
		po.Goal = "load"
	}
	return planner.Search(ctx, roots, po)
}
