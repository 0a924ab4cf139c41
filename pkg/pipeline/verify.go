package pipeline

import (
	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/manifest"
	"github.com/matzehuels/craneplan/pkg/yard"
)

// Verify replays p against the inbound manifest it was planned from and
// checks that the recorded total, the outbound manifest and the final crane
// and grid conditions all agree with the replay. It returns the replayed
// final state.
func Verify(layout yard.Layout, inbound *manifest.Grid, p *Plan) (*yard.State, error) {
	if p.ManifestHash != "" {
		hash, err := ManifestHash(inbound)
		if err != nil {
			return nil, err
		}
		if hash != p.ManifestHash {
			return nil, errs.New(errs.ErrCodeInvalidPlan, "plan %s was computed for a different manifest", p.ID)
		}
	}

	final, err := yard.Replay(layout, inbound, p.Moves)
	if err != nil {
		return nil, err
	}
	if final.Cost() != p.TotalTime {
		return nil, errs.New(errs.ErrCodeInvalidPlan, "moves sum to %d minutes, plan records %d", final.Cost(), p.TotalTime)
	}
	if final.Stranded() {
		return nil, errs.New(errs.ErrCodeInvalidPlan, "plan leaves containers in the buffer or overflow rows")
	}
	if p.Kind == KindBalance && len(p.Moves) > 0 && final.Crane() != yard.RestPos {
		return nil, errs.New(errs.ErrCodeInvalidPlan, "balance plan ends with the crane at %s", final.Crane())
	}
	if p.Manifest != nil {
		got, err := final.Manifest()
		if err != nil {
			return nil, err
		}
		if !got.Equal(p.Manifest) {
			return nil, errs.New(errs.ErrCodeInvalidPlan, "outbound manifest does not match the replayed grid")
		}
	}
	return final, nil
}
