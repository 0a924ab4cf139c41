// Package store archives finished plans so they can be fetched again by id,
// replayed against their manifest, or listed for audit.
//
// Two backends are provided: MemoryStore for the CLI and tests, and
// MongoStore for server deployments.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/craneplan/pkg/pipeline"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// Store persists plans.
type Store interface {
	// Save archives p. Saving the same id twice replaces the earlier copy.
	Save(ctx context.Context, p *pipeline.Plan) error

	// Get returns the plan with the given id or an ErrCodeNotFound error.
	Get(ctx context.Context, id uuid.UUID) (*pipeline.Plan, error)

	// List returns plan summaries, newest first.
	List(ctx context.Context, q Query) ([]Summary, error)

	Close(ctx context.Context) error
}

// Query filters List.
type Query struct {
	Kind  string
	Limit int
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return DefaultListLimit
	}
	return q.Limit
}

// Summary is the listing view of a plan.
type Summary struct {
	ID           uuid.UUID `json:"id"`
	Kind         string    `json:"kind"`
	ManifestHash string    `json:"manifest_hash"`
	Moves        int       `json:"moves"`
	TotalTime    int       `json:"total_time"`
	CreatedAt    time.Time `json:"created_at"`
}

// Summarize builds the listing view of p.
func Summarize(p *pipeline.Plan) Summary {
	return Summary{
		ID:           p.ID,
		Kind:         p.Kind,
		ManifestHash: p.ManifestHash,
		Moves:        len(p.Moves),
		TotalTime:    p.TotalTime,
		CreatedAt:    p.CreatedAt,
	}
}
