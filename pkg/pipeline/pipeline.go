// Package pipeline runs plan requests end to end: it hashes the manifest,
// consults the plan cache, runs the matching search and packages the result
// as a Plan that the CLI, the API server and the plan archive all share.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	plan, hit, err := runner.RunBalance(ctx, grid, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	for _, step := range plan.Steps() {
//	    fmt.Println(step)
//	}
//
// Load/unload requests go through RunLoad with a loadunload.Request.
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/craneplan/pkg/cache"
	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/loadunload"
	"github.com/matzehuels/craneplan/pkg/manifest"
	"github.com/matzehuels/craneplan/pkg/planner"
	"github.com/matzehuels/craneplan/pkg/yard"
)

// Plan kinds.
const (
	KindBalance = cache.KindBalance
	KindLoad    = cache.KindLoad
)

// Options configure a single run. Zero values take the package defaults.
type Options struct {
	Layout         yard.Layout
	MaxFrontier    int
	KeepOnCull     int
	MaxAssignments int

	// LogEvery is the progress log cadence. Zero disables progress logs.
	LogEvery int

	// Refresh skips the cache lookup but still stores the new plan.
	Refresh bool

	Logger *log.Logger
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Layout == (yard.Layout{}) {
		o.Layout = yard.DefaultLayout
	}
	if o.MaxFrontier <= 0 {
		o.MaxFrontier = planner.DefaultMaxFrontier
	}
	if o.KeepOnCull <= 0 {
		o.KeepOnCull = planner.DefaultKeepOnCull
	}
	if o.MaxAssignments <= 0 {
		o.MaxAssignments = loadunload.DefaultMaxAssignments
	}
}

// ValidateAndSetDefaults applies defaults and checks the layout.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	if o.KeepOnCull > o.MaxFrontier {
		return errs.New(errs.ErrCodeInvalidConfig, "keep_on_cull (%d) exceeds max_frontier (%d)", o.KeepOnCull, o.MaxFrontier)
	}
	return o.Layout.Validate()
}

func (o Options) plannerOptions(goal string, logger *log.Logger) planner.Options {
	return planner.Options{
		Goal:        goal,
		MaxFrontier: o.MaxFrontier,
		KeepOnCull:  o.KeepOnCull,
		LogEvery:    o.LogEvery,
		Logger:      logger,
	}
}

func (o Options) keyOpts() cache.PlanKeyOpts {
	l := o.Layout
	return cache.PlanKeyOpts{
		Layout:      fmt.Sprintf("%dx%d+%d/%dx%d", l.ShipRows, l.ShipCols, l.Overflow, l.BufferRows, l.BufferCols),
		MaxFrontier: o.MaxFrontier,
		KeepOnCull:  o.KeepOnCull,
	}
}

// Plan is a finished crane plan.
type Plan struct {
	ID   uuid.UUID `json:"id"`
	Kind string    `json:"kind"`

	// ManifestHash identifies the inbound manifest.
	ManifestHash string `json:"manifest_hash"`

	// Request is set for load/unload plans.
	Request *loadunload.Request `json:"request,omitempty"`

	Moves []yard.Move `json:"moves"`

	// TotalTime is the summed cost of all moves, in minutes.
	TotalTime int `json:"total_time"`

	// Manifest is the outbound manifest after every move is applied.
	Manifest *manifest.Grid `json:"manifest"`

	Stats     planner.Stats `json:"stats"`
	CreatedAt time.Time     `json:"created_at"`
}

// Steps returns the operator-facing text of each move.
func (p *Plan) Steps() []string {
	out := make([]string, len(p.Moves))
	for i, m := range p.Moves {
		out[i] = m.String()
	}
	return out
}

// ContainerMoves counts moves that carry a container.
func (p *Plan) ContainerMoves() int {
	n := 0
	for _, m := range p.Moves {
		if m.Container != nil {
			n++
		}
	}
	return n
}

// ManifestHash returns the cache identity of a manifest.
func ManifestHash(m *manifest.Grid) (string, error) {
	text, err := m.MarshalText()
	if err != nil {
		return "", err
	}
	return cache.Hash(text), nil
}
