package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/manifest"
	"github.com/matzehuels/craneplan/pkg/pipeline"
)

// setupCLI isolates config and cache directories and captures stdout.
func setupCLI(t *testing.T) (dir string, out *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	out = &bytes.Buffer{}
	old := stdout
	stdout = out
	t.Cleanup(func() { stdout = old })
	return t.TempDir(), out
}

func writeManifest(t *testing.T, dir, name string, cells map[[2]int]manifest.Cell) string {
	t.Helper()
	g := manifest.New(manifest.DefaultRows, manifest.DefaultCols)
	for rc, c := range cells {
		g.SetCell(rc[0], rc[1], c)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, manifest.WriteFile(path, g))
	return path
}

func twoContainers(t *testing.T, dir string) string {
	return writeManifest(t, dir, "ShipCase1.txt", map[[2]int]manifest.Cell{
		{1, 1}: manifest.Container("A", 100),
		{1, 2}: manifest.Container("B", 100),
	})
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var cobraOut bytes.Buffer
	root.SetOut(&cobraOut)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return cobraOut.String(), err
}

func TestBalanceCommand(t *testing.T) {
	dir, out := setupCLI(t)
	path := twoContainers(t, dir)

	_, err := run(t, "balance", path)
	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "Balance plan")
	assert.Contains(t, text, "34 minutes")
	assert.Contains(t, text, "fresh")
	assert.Contains(t, text, "Move B {00100} from SHIP[01,02] to SHIP[01,07] in 5 minutes")

	outbound, err := manifest.ReadFile(filepath.Join(dir, "ShipCase1OUTBOUND.txt"))
	require.NoError(t, err)
	assert.Equal(t, "B", outbound.CellAt(1, 7).Name)

	out.Reset()
	_, err = run(t, "balance", path)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "cached")
}

func TestBalanceJSONAndReplay(t *testing.T) {
	dir, out := setupCLI(t)
	path := twoContainers(t, dir)
	custom := filepath.Join(dir, "custom.txt")

	_, err := run(t, "balance", path, "--json", "--no-cache", "--out", custom)
	require.NoError(t, err)

	var plan pipeline.Plan
	require.NoError(t, json.Unmarshal(out.Bytes(), &plan))
	assert.Equal(t, 34, plan.TotalTime)
	assert.FileExists(t, custom)

	planPath := filepath.Join(dir, "plan.json")
	require.NoError(t, os.WriteFile(planPath, out.Bytes(), 0o644))

	out.Reset()
	_, err = run(t, "replay", path, planPath, "--grid")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "replays cleanly")
	assert.Contains(t, out.String(), "34 minutes")

	plan.TotalTime = 1
	raw, err := json.Marshal(plan)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(planPath, raw, 0o644))
	out.Reset()
	_, err = run(t, "replay", path, planPath)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidPlan), "got %v", err)
	assert.Contains(t, out.String(), "does not replay")
}

func TestLoadCommand(t *testing.T) {
	dir, out := setupCLI(t)
	path := writeManifest(t, dir, "ShipCase2.txt", map[[2]int]manifest.Cell{
		{1, 1}: manifest.Container("Cat", 99),
		{1, 6}: manifest.Container("Dog", 10),
	})

	_, err := run(t, "load", path, "--unload", "Cat", "--no-write")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Load plan")
	assert.Contains(t, out.String(), "23 minutes")
	assert.NoFileExists(t, filepath.Join(dir, "ShipCase2OUTBOUND.txt"))

	_, err = run(t, "load", path)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput), "got %v", err)
}

func TestParseRequest(t *testing.T) {
	req, err := parseRequest([]string{"Owl:500", "Rat:Trap:1200"}, []string{"Cat", "Cat"})
	require.NoError(t, err)
	require.Len(t, req.Loads, 2)
	assert.Equal(t, "Owl", req.Loads[0].Name)
	assert.Equal(t, 500, req.Loads[0].Weight)
	assert.Equal(t, "Rat:Trap", req.Loads[1].Name)
	assert.Equal(t, 1200, req.Loads[1].Weight)
	assert.Equal(t, []string{"Cat", "Cat"}, req.Unloads)

	bad := []struct {
		name  string
		loads []string
		code  errs.Code
	}{
		{"no colon", []string{"Owl"}, errs.ErrCodeInvalidInput},
		{"empty name", []string{":5"}, errs.ErrCodeInvalidInput},
		{"bad weight", []string{"Owl:heavy"}, errs.ErrCodeInvalidInput},
		{"too heavy", []string{"Owl:100000"}, errs.ErrCodeInvalidRequest},
		{"reserved name", []string{"UNUSED:5"}, errs.ErrCodeInvalidRequest},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRequest(tt.loads, nil)
			assert.True(t, errs.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestShowCommand(t *testing.T) {
	dir, out := setupCLI(t)
	path := twoContainers(t, dir)

	_, err := run(t, "show", path)
	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "ShipCase1.txt")
	assert.Contains(t, text, "200 kg")
	assert.Contains(t, text, "Not balanced")
	assert.Contains(t, text, "craneplan balance "+path)

	_, err = run(t, "show", filepath.Join(dir, "ShipCase1.json"))
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput), "got %v", err)

	_, err = run(t, "show", filepath.Join(dir, "missing.txt"))
	assert.True(t, errs.Is(err, errs.ErrCodeFileNotFound), "got %v", err)
}

func TestCacheCommands(t *testing.T) {
	dir, out := setupCLI(t)

	_, err := run(t, "cache", "path")
	require.NoError(t, err)
	cacheDir := strings.TrimSpace(out.String())
	assert.Equal(t, filepath.Join(os.Getenv("XDG_CACHE_HOME"), "craneplan"), cacheDir)

	out.Reset()
	_, err = run(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Cache is empty")

	_, err = run(t, "balance", twoContainers(t, dir), "--no-write")
	require.NoError(t, err)
	out.Reset()
	_, err = run(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Cleared 2 cache entries")
}

func TestConfigFlag(t *testing.T) {
	dir, _ := setupCLI(t)
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[cache]\nbackend = \"tape\"\n"), 0o644))

	_, err := run(t, "--config", cfgPath, "show", twoContainers(t, dir))
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig), "got %v", err)
}

func TestCompletionCommand(t *testing.T) {
	setupCLI(t)
	got, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, got, "craneplan")

	_, err = run(t, "completion", "tcsh")
	assert.Error(t, err)

	exts, directive := manifestArgs(nil, nil, "Ship")
	assert.Equal(t, []string{"txt"}, exts)
	assert.Equal(t, cobra.ShellCompDirectiveFilterFileExt, directive)
}
