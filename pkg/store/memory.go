package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/pipeline"
)

// MemoryStore keeps plans in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[uuid.UUID]*pipeline.Plan
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[uuid.UUID]*pipeline.Plan)}
}

func (s *MemoryStore) Save(_ context.Context, p *pipeline.Plan) error {
	if p.ID == uuid.Nil {
		return errs.New(errs.ErrCodeInvalidPlan, "plan has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[p.ID] = p
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*pipeline.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "plan %s", id)
	}
	return p, nil
}

func (s *MemoryStore) List(_ context.Context, q Query) ([]Summary, error) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.plans))
	for _, p := range s.plans {
		if q.Kind == "" || p.Kind == q.Kind {
			out = append(out, Summarize(p))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	if n := q.limit(); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
