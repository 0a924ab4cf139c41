// Package planner implements the best-first search shared by every crane
// goal.
//
// A goal supplies its states as [Node] values; [Search] expands them in
// order of cost plus estimate until it pops a goal state. The frontier is
// memory bounded: when it grows past [Options.MaxFrontier], all but the best
// [Options.KeepOnCull] entries move to a reserve queue, and the reserve
// refills the frontier whenever it runs dry. The result is therefore a good
// plan, not a provably optimal one.
package planner

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/observability"
	"github.com/matzehuels/craneplan/pkg/yard"
)

// Node is a search state. N is the concrete state type, so that successors
// come back typed.
type Node[N any] interface {
	// Cost is the time spent reaching the state (G).
	Cost() int
	// Estimate is the heuristic remaining time (H); yard.Infeasible prunes.
	Estimate() int
	// Key identifies structurally equal states.
	Key() uint64
	IsGoal() bool
	Successors() []N
}

// Defaults for Options.
const (
	DefaultMaxFrontier = 5000
	DefaultKeepOnCull  = 100
	DefaultLogEvery    = 1000
)

// Options bound the search.
type Options struct {
	// Goal names the search in logs and hooks.
	Goal string

	// MaxFrontier is the frontier size that triggers a cull.
	MaxFrontier int

	// KeepOnCull is how many entries stay in the frontier after a cull, and
	// how many a refill takes from the reserve.
	KeepOnCull int

	// LogEvery sets the expansion cadence of progress logs. Zero disables them.
	LogEvery int

	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxFrontier <= 0 {
		o.MaxFrontier = DefaultMaxFrontier
	}
	if o.KeepOnCull <= 0 {
		o.KeepOnCull = DefaultKeepOnCull
	}
	if o.KeepOnCull > o.MaxFrontier {
		o.KeepOnCull = o.MaxFrontier
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Goal == "" {
		o.Goal = "search"
	}
	return o
}

// Stats describes a finished search.
type Stats struct {
	Expanded  int           `json:"expanded"`
	Generated int           `json:"generated"`
	Pruned    int           `json:"pruned"`
	Culled    int           `json:"culled"`
	Refills   int           `json:"refills"`
	Duration  time.Duration `json:"duration"`
}

// Search runs best-first search from roots and returns the first goal state
// popped from the frontier.
//
// Ties on cost plus estimate are broken by insertion order, so results are
// deterministic. Roots and successors with an infeasible estimate are pruned;
// when every root is infeasible Search fails with ErrCodeInfeasible. If both
// the frontier and the reserve run dry it fails with ErrCodeExhausted.
// Cancellation is checked between expansions.
func Search[N Node[N]](ctx context.Context, roots []N, opts Options) (N, Stats, error) {
	opts = opts.withDefaults()
	logger := opts.Logger
	hooks := observability.Planner()

	var (
		zero     N
		stats    Stats
		frontier queue[N]
		reserve  queue[N]
		seq      uint64
		visited  = make(map[uint64]struct{})
		start    = time.Now()
	)

	done := func(n N, err error) (N, Stats, error) {
		stats.Duration = time.Since(start)
		hooks.OnSearchComplete(ctx, opts.Goal, stats.Expanded, stats.Duration, err)
		return n, stats, err
	}

	push := func(n N) bool {
		h := n.Estimate()
		if yard.IsInfeasible(h) {
			stats.Pruned++
			return false
		}
		k := n.Key()
		if _, seen := visited[k]; seen {
			stats.Pruned++
			return false
		}
		visited[k] = struct{}{}
		frontier.push(entry[N]{node: n, f: n.Cost() + h, seq: seq})
		seq++
		stats.Generated++
		return true
	}

	for _, r := range roots {
		push(r)
	}
	hooks.OnSearchStart(ctx, opts.Goal, len(roots))
	if frontier.Len() == 0 {
		return done(zero, errs.New(errs.ErrCodeInfeasible, "no feasible starting state among %d", len(roots)))
	}
	logger.Debug("search started", "goal", opts.Goal, "roots", frontier.Len())

	for {
		if frontier.Len() == 0 {
			if reserve.Len() == 0 {
				return done(zero, errs.New(errs.ErrCodeExhausted, "search space exhausted after %d expansions", stats.Expanded))
			}
			n := moveBest(&frontier, &reserve, opts.KeepOnCull)
			stats.Refills++
			logger.Info("frontier refilled", "goal", opts.Goal, "states", n, "reserve", reserve.Len())
		}

		if err := errs.Canceled(ctx.Err(), "search canceled after %d expansions", stats.Expanded); err != nil {
			return done(zero, err)
		}

		cur := frontier.pop().node
		if cur.IsGoal() {
			logger.Debug("goal reached", "goal", opts.Goal, "cost", cur.Cost(), "expanded", stats.Expanded)
			return done(cur, nil)
		}

		stats.Expanded++
		for _, child := range cur.Successors() {
			push(child)
		}

		if opts.LogEvery > 0 && stats.Expanded%opts.LogEvery == 0 {
			logger.Debug("searching", "goal", opts.Goal, "expanded", stats.Expanded, "frontier", frontier.Len(), "reserve", reserve.Len(), "best", cur.Cost()+cur.Estimate())
		}

		if frontier.Len() > opts.MaxFrontier {
			var keep queue[N]
			moveBest(&keep, &frontier, opts.KeepOnCull)
			moved := frontier.Len()
			for _, e := range frontier {
				reserve.push(e)
			}
			frontier = keep
			stats.Culled += moved
			hooks.OnCull(ctx, opts.Goal, moved)
			logger.Info("frontier culled", "goal", opts.Goal, "kept", frontier.Len(), "reserve", reserve.Len())
		}
	}
}
