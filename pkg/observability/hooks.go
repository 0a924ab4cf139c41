// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through the registered hooks; the binary decides
// where they go. The defaults are no-ops, so library code never needs to
// check whether anything is listening.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPlannerHooks(&myPlannerHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Planner().OnSearchStart(ctx, "balance", len(roots))
//	// ... search ...
//	observability.Planner().OnSearchComplete(ctx, "balance", expanded, duration, err)
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// Planner Hooks
// =============================================================================

// PlannerHooks receives events from the best-first search.
type PlannerHooks interface {
	// OnSearchStart is called once roots are seeded.
	OnSearchStart(ctx context.Context, goal string, roots int)

	// OnCull is called when frontier entries are moved to the reserve.
	OnCull(ctx context.Context, goal string, moved int)

	// OnSearchComplete is called when the search returns, with the number of
	// expanded states.
	OnSearchComplete(ctx context.Context, goal string, expanded int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPlannerHooks is a no-op implementation of PlannerHooks.
type NoopPlannerHooks struct{}

func (NoopPlannerHooks) OnSearchStart(context.Context, string, int) {}
func (NoopPlannerHooks) OnCull(context.Context, string, int)        {}
func (NoopPlannerHooks) OnSearchComplete(context.Context, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// registry is replaced as a whole on every Set, so readers never lock.
type registry struct {
	planner PlannerHooks
	cache   CacheHooks
	http    HTTPHooks
}

var (
	current atomic.Pointer[registry]
	setMu   sync.Mutex
)

func init() { Reset() }

func update(fn func(r *registry)) {
	setMu.Lock()
	defer setMu.Unlock()
	next := *current.Load()
	fn(&next)
	current.Store(&next)
}

// SetPlannerHooks registers planner hooks. Nil is ignored.
func SetPlannerHooks(h PlannerHooks) {
	if h != nil {
		update(func(r *registry) { r.planner = h })
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks registers HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

func Planner() PlannerHooks { return current.Load().planner }
func Cache() CacheHooks     { return current.Load().cache }
func HTTP() HTTPHooks       { return current.Load().http }

// Reset restores the no-op hooks. Tests that install hooks call it in
// cleanup.
func Reset() {
	setMu.Lock()
	defer setMu.Unlock()
	current.Store(&registry{
		planner: NoopPlannerHooks{},
		cache:   NoopCacheHooks{},
		http:    NoopHTTPHooks{},
	})
}
