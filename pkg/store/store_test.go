package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/manifest"
	"github.com/matzehuels/craneplan/pkg/pipeline"
	"github.com/matzehuels/craneplan/pkg/yard"
)

func testPlan(kind string, created time.Time) *pipeline.Plan {
	box := yard.Container{Name: "Cat", Weight: 99}
	out := manifest.New(1, 2)
	return &pipeline.Plan{
		ID:           uuid.New(),
		Kind:         kind,
		ManifestHash: "abc",
		Moves: []yard.Move{
			{From: yard.RestPos, To: yard.ShipAt(0, 0), Cost: 11},
			{From: yard.ShipAt(0, 0), To: yard.TruckPos, Cost: 12, Container: &box},
		},
		TotalTime: 23,
		Manifest:  out,
		CreatedAt: created.UTC().Truncate(time.Millisecond),
	}
}

// exerciseStore checks the behavior every backend shares.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Now()

	older := testPlan(pipeline.KindLoad, base.Add(-time.Hour))
	newer := testPlan(pipeline.KindBalance, base)
	newest := testPlan(pipeline.KindLoad, base.Add(time.Hour))
	for _, p := range []*pipeline.Plan{older, newer, newest} {
		require.NoError(t, s.Save(ctx, p))
	}

	got, err := s.Get(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
	assert.Equal(t, newer.TotalTime, got.TotalTime)
	assert.Equal(t, newer.Moves, got.Moves)
	assert.True(t, newer.Manifest.Equal(got.Manifest))

	_, err = s.Get(ctx, uuid.New())
	assert.True(t, errs.Is(err, errs.ErrCodeNotFound), "got %v", err)

	all, err := s.List(ctx, Query{})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(all), 3)

	loads, err := s.List(ctx, Query{Kind: pipeline.KindLoad, Limit: 1})
	require.NoError(t, err)
	require.Len(t, loads, 1)
	assert.Equal(t, newest.ID, loads[0].ID)
	assert.Equal(t, 2, loads[0].Moves)
	assert.Equal(t, 23, loads[0].TotalTime)

	newer.TotalTime = 99
	require.NoError(t, s.Save(ctx, newer))
	got, err = s.Get(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, 99, got.TotalTime)

	err = s.Save(ctx, &pipeline.Plan{})
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidPlan), "got %v", err)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close(context.Background())
	exerciseStore(t, s)

	all, err := s.List(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt), "List must be newest first")
	}
}

func TestMemoryStoreDefaultLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := 0; i < DefaultListLimit+5; i++ {
		require.NoError(t, s.Save(ctx, testPlan(pipeline.KindBalance, time.Now())))
	}
	all, err := s.List(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, all, DefaultListLimit)
}

// TestMongoStore runs against a live server when CRANEPLAN_TEST_MONGO is set.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("CRANEPLAN_TEST_MONGO")
	if uri == "" {
		t.Skip("CRANEPLAN_TEST_MONGO not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := "craneplan_test_" + uuid.NewString()[:8]
	s, err := NewMongoStore(ctx, uri, db)
	require.NoError(t, err)
	defer func() {
		_ = s.client.Database(db).Drop(ctx)
		_ = s.Close(ctx)
	}()
	exerciseStore(t, s)
}
