package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/craneplan/pkg/balance"
	"github.com/matzehuels/craneplan/pkg/cache"
	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/loadunload"
	"github.com/matzehuels/craneplan/pkg/manifest"
	"github.com/matzehuels/craneplan/pkg/observability"
	"github.com/matzehuels/craneplan/pkg/planner"
	"github.com/matzehuels/craneplan/pkg/yard"
)

// Runner executes plan requests with caching.
//
// The Runner holds no per-request state; one Runner may serve concurrent
// requests as long as its Cache is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of cached plans; zero means cache.PlanTTL.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means cache.DefaultKeyer and a nil logger means log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// solveFunc runs the search for one request kind.
type solveFunc func(ctx context.Context, po planner.Options) (*yard.State, planner.Stats, error)

// RunBalance plans a balance for m. The boolean reports a cache hit.
func (r *Runner) RunBalance(ctx context.Context, m *manifest.Grid, opts Options) (*Plan, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	solve := func(ctx context.Context, po planner.Options) (*yard.State, planner.Stats, error) {
		s, stats, err := balance.Solve(ctx, opts.Layout, m, po)
		if err != nil {
			return nil, stats, err
		}
		return s.State, stats, nil
	}
	return r.run(ctx, KindBalance, m, nil, opts, opts.keyOpts(), solve)
}

// RunLoad plans the load/unload request req against m.
func (r *Runner) RunLoad(ctx context.Context, m *manifest.Grid, req loadunload.Request, opts Options) (*Plan, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	if err := req.Validate(); err != nil {
		return nil, false, err
	}
	if len(req.Loads) == 0 && len(req.Unloads) == 0 {
		return nil, false, errs.New(errs.ErrCodeInvalidRequest, "nothing to load or unload")
	}

	keyOpts := opts.keyOpts()
	keyOpts.MaxAssignments = opts.MaxAssignments
	keyOpts.Unloads = req.Unloads
	for _, c := range req.Loads {
		keyOpts.Loads = append(keyOpts.Loads, c.String())
	}

	solve := func(ctx context.Context, po planner.Options) (*yard.State, planner.Stats, error) {
		s, stats, err := loadunload.Solve(ctx, opts.Layout, m, req, loadunload.Options{
			Options:        po,
			MaxAssignments: opts.MaxAssignments,
		})
		if err != nil {
			return nil, stats, err
		}
		return s.State, stats, nil
	}
	return r.run(ctx, KindLoad, m, &req, opts, keyOpts, solve)
}

func (r *Runner) run(ctx context.Context, kind string, m *manifest.Grid, req *loadunload.Request, opts Options, keyOpts cache.PlanKeyOpts, solve solveFunc) (*Plan, bool, error) {
	logger := r.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}

	hash, err := ManifestHash(m)
	if err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeInvalidManifest, err, "encode manifest")
	}
	key := r.Keyer.PlanKey(kind, hash, keyOpts)

	if !opts.Refresh {
		if plan, ok := r.cached(ctx, kind, key); ok {
			logger.Info("using cached plan", "kind", kind, "id", plan.ID, "moves", len(plan.Moves), "total", plan.TotalTime)
			return plan, true, nil
		}
	}

	start := time.Now()
	final, stats, err := solve(ctx, opts.plannerOptions(kind, logger))
	if err != nil {
		return nil, false, err
	}
	outbound, err := final.Manifest()
	if err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeInternal, err, "export outbound manifest")
	}

	plan := &Plan{
		ID:           uuid.New(),
		Kind:         kind,
		ManifestHash: hash,
		Request:      req,
		Moves:        final.Moves(),
		TotalTime:    final.Cost(),
		Manifest:     outbound,
		Stats:        stats,
		CreatedAt:    time.Now().UTC(),
	}
	logger.Info("computed plan",
		"kind", kind,
		"moves", len(plan.Moves),
		"total", plan.TotalTime,
		"expanded", stats.Expanded,
		"duration", time.Since(start).Round(time.Millisecond))

	r.store(ctx, kind, key, plan, logger)
	r.keepInbound(ctx, hash, m, logger)
	return plan, false, nil
}

// keepInbound caches the manifest a plan was computed from, so the plan can
// later be verified by hash alone.
func (r *Runner) keepInbound(ctx context.Context, hash string, m *manifest.Grid, logger *log.Logger) {
	text, err := m.MarshalText()
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, r.Keyer.ManifestKey(hash), text, cache.ManifestTTL); err != nil {
		logger.Warn("manifest cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cache.KindManifest, len(text))
}

// Inbound returns the cached manifest with the given hash. It fails with
// NOT_FOUND once the entry has expired or when no plan was computed from it
// through this cache.
func (r *Runner) Inbound(ctx context.Context, hash string) (*manifest.Grid, error) {
	text, ok, err := r.Cache.Get(ctx, r.Keyer.ManifestKey(hash))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "read manifest %s", hash)
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, cache.KindManifest)
		return nil, errs.New(errs.ErrCodeNotFound, "manifest %s is not cached", hash)
	}
	var m manifest.Grid
	if err := m.UnmarshalText(text); err != nil {
		_ = r.Cache.Delete(ctx, r.Keyer.ManifestKey(hash))
		return nil, errs.Wrap(errs.ErrCodeNotFound, err, "cached manifest %s is unreadable", hash)
	}
	if got, err := ManifestHash(&m); err != nil || got != hash {
		return nil, errs.New(errs.ErrCodeNotFound, "cached manifest %s does not match its hash", hash)
	}
	observability.Cache().OnCacheHit(ctx, cache.KindManifest)
	return &m, nil
}

// cached returns the plan stored under key. Backend and decode errors are
// treated as misses.
func (r *Runner) cached(ctx context.Context, kind, key string) (*Plan, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("plan cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, kind)
		return nil, false
	}
	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		r.Logger.Warn("discarding unreadable cached plan", "err", err)
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, kind)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, kind)
	return &plan, true
}

func (r *Runner) store(ctx context.Context, kind, key string, plan *Plan, logger *log.Logger) {
	data, err := json.Marshal(plan)
	if err != nil {
		logger.Warn("encode plan for cache", "err", err)
		return
	}
	ttl := r.TTL
	if ttl <= 0 {
		ttl = cache.PlanTTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("plan cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}
