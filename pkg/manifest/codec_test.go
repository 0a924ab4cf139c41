package manifest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/craneplan/pkg/errors"
)

func smallManifest() string {
	return strings.Join([]string{
		"[01,01], {00000}, NAN",
		"[01,02], {00099}, Cat",
		"[02,01], {00000}, UNUSED",
		"[02,02], {01200}, Dog House",
		"",
	}, "\n")
}

func TestParse(t *testing.T) {
	g, err := Parse(strings.NewReader(smallManifest()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rows, cols := g.Dims()
	if rows != 2 || cols != 2 {
		t.Fatalf("Dims = %dx%d, want 2x2", rows, cols)
	}

	tests := []struct {
		row, col int
		want     Cell
	}{
		{1, 1, BlockedCell()},
		{1, 2, Container("Cat", 99)},
		{2, 1, Cell{}},
		{2, 2, Container("Dog House", 1200)},
	}
	for _, tt := range tests {
		if got := g.CellAt(tt.row, tt.col); got != tt.want {
			t.Errorf("CellAt(%d,%d) = %+v, want %+v", tt.row, tt.col, got, tt.want)
		}
	}
	if g.Weight() != 1299 {
		t.Errorf("Weight() = %d, want 1299", g.Weight())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"malformed", "[01,01] 00000 NAN\n"},
		{"zero coordinate", "[00,01], {00000}, NAN\n"},
		{"missing cells", "[01,01], {00000}, NAN\n[02,02], {00000}, NAN\n"},
		{"duplicate", "[01,01], {00000}, NAN\n[01,01], {00000}, NAN\n"},
		{"row past two digits", "[100,01], {00000}, NAN\n"},
		{"coordinates overflow int", "[9223372036854775807,9223372036854775807], {00000}, X\n"},
		{"coordinate not an int", "[99999999999999999999,01], {00000}, NAN\n"},
		{"weight past five digits", "[01,01], {100000}, Cat\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errs.Is(err, errs.ErrCodeInvalidManifest) {
				t.Errorf("code = %s, want %s", errs.GetCode(err), errs.ErrCodeInvalidManifest)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	g, err := Parse(strings.NewReader(smallManifest()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, g); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := buf.String(), smallManifest(); got != want {
		t.Errorf("Write output:\n%s\nwant:\n%s", got, want)
	}

	back, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse round trip: %v", err)
	}
	if !back.Equal(g) {
		t.Error("round trip changed the grid")
	}
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ShipCase1.txt")
	if err := os.WriteFile(path, []byte(smallManifest()), 0o644); err != nil {
		t.Fatal(err)
	}

	g, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	g.SetCell(1, 2, Cell{})

	out := OutboundPath(path)
	if want := filepath.Join(dir, "ShipCase1OUTBOUND.txt"); out != want {
		t.Errorf("OutboundPath = %q, want %q", out, want)
	}
	if err := WriteFile(out, g); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	back, err := ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile outbound: %v", err)
	}
	if back.Count("Cat") != 0 {
		t.Error("outbound manifest still lists Cat")
	}

	_, err = ReadFile(filepath.Join(dir, "missing.txt"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file code = %s, want %s", errs.GetCode(err), errs.ErrCodeFileNotFound)
	}
}

func TestGridCloneAndCount(t *testing.T) {
	g := New(2, 3)
	g.SetCell(1, 1, Container("Dog", 10))
	g.SetCell(1, 2, Container("Dog", 20))
	g.SetCell(1, 3, BlockedCell())

	c := g.Clone()
	c.SetCell(1, 1, Cell{})
	if g.Count("Dog") != 2 || c.Count("Dog") != 1 {
		t.Errorf("Count after clone = %d/%d, want 2/1", g.Count("Dog"), c.Count("Dog"))
	}
	if g.Equal(c) {
		t.Error("Equal reported modified clone as equal")
	}
}

func TestGridJSON(t *testing.T) {
	g, err := Parse(strings.NewReader(smallManifest()))
	if err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(struct {
		Manifest *Grid `json:"manifest"`
	}{g})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back struct {
		Manifest *Grid `json:"manifest"`
	}
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Manifest == nil || !back.Manifest.Equal(g) {
		t.Error("JSON round trip changed the grid")
	}
}
