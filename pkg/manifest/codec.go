package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	errs "github.com/matzehuels/craneplan/pkg/errors"
)

// lineRE matches one manifest line: "[RR,CC], {WWWWW}, NAME".
var lineRE = regexp.MustCompile(`^\[(\d+),(\d+)\],\s*\{(\d+)\},\s*(.+)$`)

// Parse reads a manifest file. Dimensions are taken from the largest
// coordinates present, at most MaxCoord each; every cell of the resulting
// rectangle must be listed exactly once.
func Parse(r io.Reader) (*Grid, error) {
	type entry struct {
		row, col int
		cell     Cell
	}

	var entries []entry
	rows, cols := 0, 0

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		m := lineRE.FindStringSubmatch(line)
		if m == nil {
			return nil, errs.New(errs.ErrCodeInvalidManifest, "line %d: malformed entry %q", lineNo, line)
		}
		row, rerr := strconv.Atoi(m[1])
		col, cerr := strconv.Atoi(m[2])
		if rerr != nil || cerr != nil || row > MaxCoord || col > MaxCoord {
			return nil, errs.New(errs.ErrCodeInvalidManifest, "line %d: coordinates [%s,%s] exceed %d", lineNo, m[1], m[2], MaxCoord)
		}
		if row < 1 || col < 1 {
			return nil, errs.New(errs.ErrCodeInvalidManifest, "line %d: coordinates start at 1", lineNo)
		}
		weight, err := strconv.Atoi(m[3])
		if err != nil || weight > errs.MaxWeight {
			return nil, errs.New(errs.ErrCodeInvalidManifest, "line %d: weight %s exceeds %d", lineNo, m[3], errs.MaxWeight)
		}
		name := strings.TrimSpace(m[4])

		var cell Cell
		switch name {
		case NameBlocked:
			cell = BlockedCell()
		case NameUnused:
			cell = Cell{}
		default:
			cell = Container(name, weight)
		}
		entries = append(entries, entry{row: row, col: col, cell: cell})
		rows = max(rows, row)
		cols = max(cols, col)
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "read manifest")
	}
	if len(entries) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidManifest, "manifest is empty")
	}
	if len(entries) != rows*cols {
		return nil, errs.New(errs.ErrCodeInvalidManifest, "expected %d entries for a %dx%d grid, got %d", rows*cols, rows, cols, len(entries))
	}

	g := New(rows, cols)
	seen := make([]bool, rows*cols)
	for _, e := range entries {
		i := g.index(e.row, e.col)
		if seen[i] {
			return nil, errs.New(errs.ErrCodeInvalidManifest, "cell [%02d,%02d] listed twice", e.row, e.col)
		}
		seen[i] = true
		g.cells[i] = e.cell
	}
	return g, nil
}

// Write serializes g in manifest file order (row-major from the bottom row).
func Write(w io.Writer, g *Grid) error {
	bw := bufio.NewWriter(w)
	for row := 1; row <= g.rows; row++ {
		for col := 1; col <= g.cols; col++ {
			c := g.CellAt(row, col)
			if _, err := fmt.Fprintf(bw, "[%02d,%02d], {%05d}, %s\n", row, col, c.Weight, c); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// ReadFile parses the manifest at path.
func ReadFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "manifest %s", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := Parse(f)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "parse %s", filepath.Base(path))
	}
	return g, nil
}

// WriteFile writes g to path, replacing any existing file.
func WriteFile(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// OutboundPath returns the path the updated manifest is saved under:
// "ShipCase1.txt" becomes "ShipCase1OUTBOUND.txt" in the same directory.
func OutboundPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "OUTBOUND" + ext
}

// MarshalText encodes the grid in manifest file format, so a Grid embeds in
// JSON documents as a single string.
func (g *Grid) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalText parses manifest file format into g.
func (g *Grid) UnmarshalText(b []byte) error {
	parsed, err := Parse(bytes.NewReader(b))
	if err != nil {
		return err
	}
	*g = *parsed
	return nil
}
