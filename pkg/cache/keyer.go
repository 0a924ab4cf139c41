package cache

// Key kinds passed to observability hooks and used as key prefixes.
const (
	KindBalance  = "balance"
	KindLoad     = "load"
	KindManifest = "manifest"
)

// Keyer derives cache keys.
type Keyer interface {
	// PlanKey returns the key for a plan of the given kind computed from the
	// manifest identified by manifestHash.
	PlanKey(kind, manifestHash string, opts PlanKeyOpts) string

	// ManifestKey returns the key for a manifest snapshot.
	ManifestKey(manifestHash string) string
}

// PlanKeyOpts lists every input besides the manifest that affects a plan.
// Loads and Unloads keep request order; the search is order-sensitive.
type PlanKeyOpts struct {
	Loads          []string `json:"loads,omitempty"`
	Unloads        []string `json:"unloads,omitempty"`
	Layout         string   `json:"layout"`
	MaxFrontier    int      `json:"max_frontier"`
	KeepOnCull     int      `json:"keep_on_cull"`
	MaxAssignments int      `json:"max_assignments,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PlanKey implements Keyer.
func (DefaultKeyer) PlanKey(kind, manifestHash string, opts PlanKeyOpts) string {
	return hashKey("plan:"+kind, manifestHash, opts)
}

// ManifestKey implements Keyer.
func (DefaultKeyer) ManifestKey(manifestHash string) string {
	return KindManifest + ":" + manifestHash
}

// ScopedKeyer prefixes every key of an inner Keyer, letting several
// terminals share one Redis without seeing each other's plans.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return ScopedKeyer{inner: inner, prefix: prefix}
}

func (k ScopedKeyer) PlanKey(kind, manifestHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(kind, manifestHash, opts)
}

func (k ScopedKeyer) ManifestKey(manifestHash string) string {
	return k.prefix + k.inner.ManifestKey(manifestHash)
}
