package balance

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/manifest"
	"github.com/matzehuels/craneplan/pkg/planner"
	"github.com/matzehuels/craneplan/pkg/yard"
)

func shipWith(cells map[[2]int]manifest.Cell) *manifest.Grid {
	g := manifest.New(manifest.DefaultRows, manifest.DefaultCols)
	for rc, c := range cells {
		g.SetCell(rc[0], rc[1], c)
	}
	return g
}

func opts() planner.Options {
	return planner.Options{Logger: log.New(io.Discard)}
}

func solve(t *testing.T, m *manifest.Grid) *State {
	t.Helper()
	got, _, err := Solve(context.Background(), yard.DefaultLayout, m, opts())
	require.NoError(t, err)
	return got
}

// checkPlan verifies the properties every finished balance plan has.
func checkPlan(t *testing.T, m *manifest.Grid, got *State) {
	t.Helper()
	assert.True(t, Balanced(got.SideWeights()))
	assert.False(t, got.Stranded())
	assert.Equal(t, yard.RestPos, got.Crane())

	total := 0
	for _, mv := range got.Moves() {
		total += mv.Cost
	}
	assert.Equal(t, got.Cost(), total)

	replayed, err := yard.Replay(yard.DefaultLayout, m, got.Moves())
	require.NoError(t, err)
	assert.Equal(t, got.Key(), replayed.Key())

	want, err := got.Manifest()
	require.NoError(t, err)
	have, err := replayed.Manifest()
	require.NoError(t, err)
	assert.True(t, want.Equal(have))
	assert.Equal(t, m.Weight(), have.Weight())
}

func TestBalanced(t *testing.T) {
	tests := []struct {
		left, right int
		want        bool
	}{
		{0, 0, true},
		{100, 100, true},
		{109, 100, true},
		{110, 100, false},
		{100, 0, false},
		{0, 1, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Balanced(tt.left, tt.right), "%d/%d", tt.left, tt.right)
	}
}

func TestRootHeuristic(t *testing.T) {
	root, err := New(yard.DefaultLayout, shipWith(map[[2]int]manifest.Cell{
		{1, 1}: manifest.Container("A", 100),
		{1, 2}: manifest.Container("B", 100),
	}))
	require.NoError(t, err)
	// A is the first heaviest candidate: six columns from the half line.
	assert.Equal(t, 12, root.Estimate())
	assert.False(t, root.IsGoal())
}

func TestSolveTwoContainers(t *testing.T) {
	m := shipWith(map[[2]int]manifest.Cell{
		{1, 1}: manifest.Container("A", 100),
		{1, 2}: manifest.Container("B", 100),
	})
	got := solve(t, m)
	checkPlan(t, m, got)

	assert.Equal(t, 34, got.Cost())
	require.Len(t, got.Moves(), 3)
	assert.Equal(t, "Move crane from CRANE_REST to SHIP[01,02] in 12 minutes", got.Moves()[0].String())
	assert.Equal(t, "Move B {00100} from SHIP[01,02] to SHIP[01,07] in 5 minutes", got.Moves()[1].String())
	assert.Equal(t, "Move crane from SHIP[01,07] to CRANE_REST in 17 minutes", got.Moves()[2].String())
}

func TestSolveAlreadyBalanced(t *testing.T) {
	tests := []struct {
		name  string
		cells map[[2]int]manifest.Cell
	}{
		{"empty", nil},
		{"mirrored", map[[2]int]manifest.Cell{
			{1, 6}: manifest.Container("A", 100),
			{1, 7}: manifest.Container("B", 100),
		}},
		{"within ratio", map[[2]int]manifest.Cell{
			{1, 1}: manifest.Container("A", 105),
			{1, 12}: manifest.Container("B", 100),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := solve(t, shipWith(tt.cells))
			assert.Empty(t, got.Moves())
			assert.Zero(t, got.Cost())
		})
	}
}

func TestSolveInfeasible(t *testing.T) {
	m := shipWith(map[[2]int]manifest.Cell{
		{1, 1}: manifest.Container("A", 100),
	})
	_, _, err := Solve(context.Background(), yard.DefaultLayout, m, opts())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeInfeasible))
}

func TestSolveStackedLeftHalf(t *testing.T) {
	m := shipWith(map[[2]int]manifest.Cell{
		{1, 1}: manifest.Container("A", 40),
		{2, 1}: manifest.Container("B", 30),
		{1, 2}: manifest.Container("C", 20),
		{2, 2}: manifest.Container("D", 10),
		{1, 3}: manifest.BlockedCell(),
	})
	got := solve(t, m)
	checkPlan(t, m, got)
	assert.NotEmpty(t, got.Moves())
}

func TestSolveParksInBuffer(t *testing.T) {
	// Two nominal rows, no overflow, a one-cell buffer. Only columns 1 and
	// 12 are open. Balancing needs Cat across the half line while Dog, which
	// sits on it, stays left; the buffer is closer than column 12, so Dog
	// waits there.
	layout := yard.Layout{ShipRows: 2, ShipCols: 12, BufferRows: 1, BufferCols: 1}
	m := manifest.New(2, 12)
	for c := 2; c <= 11; c++ {
		m.SetCell(1, c, manifest.BlockedCell())
		m.SetCell(2, c, manifest.BlockedCell())
	}
	m.SetCell(1, 1, manifest.Container("Cat", 1))
	m.SetCell(2, 1, manifest.Container("Dog", 10))
	m.SetCell(1, 12, manifest.Container("Emu", 9))

	got, _, err := Solve(context.Background(), layout, m, opts())
	require.NoError(t, err)

	want := []string{
		"Move crane from CRANE_REST to SHIP[02,01] in 2 minutes",
		"Move Dog {00010} from SHIP[02,01] to BUFFER[01,01] in 6 minutes",
		"Move crane from BUFFER[01,01] to SHIP[01,01] in 7 minutes",
		"Move Cat {00001} from SHIP[01,01] to SHIP[02,12] in 14 minutes",
		"Move crane from SHIP[02,12] to BUFFER[01,01] in 17 minutes",
		"Move Dog {00010} from BUFFER[01,01] to SHIP[01,01] in 7 minutes",
		"Move crane from SHIP[01,01] to CRANE_REST in 3 minutes",
	}
	var steps []string
	for _, mv := range got.Moves() {
		steps = append(steps, mv.String())
	}
	assert.Equal(t, want, steps)
	assert.Equal(t, 56, got.Cost())

	// Parking and restowing cost exactly the travel between the cells.
	assert.Equal(t, layout.Travel(yard.ShipAt(1, 0), yard.BufferAt(0, 0)), got.Moves()[1].Cost)
	assert.Equal(t, layout.Travel(yard.BufferAt(0, 0), yard.ShipAt(0, 0)), got.Moves()[5].Cost)

	replayed, err := yard.Replay(layout, m, got.Moves())
	require.NoError(t, err)
	assert.Equal(t, got.Key(), replayed.Key())
	assert.Equal(t, 56, replayed.Cost())
	assert.True(t, Balanced(replayed.SideWeights()))
}

func TestSampleManifestsBalance(t *testing.T) {
	for _, name := range []string{"ShipCase1.txt", "ShipCase2.txt"} {
		t.Run(name, func(t *testing.T) {
			m, err := manifest.ReadFile(filepath.Join("..", "..", "examples", name))
			require.NoError(t, err)
			got := solve(t, m)
			checkPlan(t, m, got)
			assert.NotEmpty(t, got.Moves())
		})
	}
}

func TestSolveRejectsBadManifest(t *testing.T) {
	_, _, err := Solve(context.Background(), yard.DefaultLayout, manifest.New(2, 2), opts())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidManifest))
}

func TestSuccessorsIncludeReturnToRest(t *testing.T) {
	root, err := New(yard.DefaultLayout, shipWith(map[[2]int]manifest.Cell{
		{1, 6}: manifest.Container("A", 100),
		{1, 7}: manifest.Container("B", 100),
	}))
	require.NoError(t, err)
	root.Goto(yard.ShipAt(0, 0))

	var parked bool
	for _, next := range root.Successors() {
		if next.Crane() == yard.RestPos {
			parked = true
			assert.True(t, next.IsGoal())
			assert.Zero(t, next.Estimate())
		}
	}
	assert.True(t, parked)
	assert.Len(t, root.Moves(), 1)
}
