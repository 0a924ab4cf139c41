package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/craneplan/pkg/manifest"
	"github.com/matzehuels/craneplan/pkg/yard"
)

// maxCellName is the widest container name shown in a grid cell.
const maxCellName = 8

// renderGrid draws a manifest with the top row first, the way the hold is
// seen from the crane cabin.
func renderGrid(g *manifest.Grid) string {
	rows, cols := g.Dims()

	headers := make([]string, cols+1)
	for c := 1; c <= cols; c++ {
		headers[c] = fmt.Sprintf("%02d", c)
	}

	data := make([][]string, 0, rows)
	for r := rows; r >= 1; r-- {
		line := make([]string, cols+1)
		line[0] = fmt.Sprintf("%02d", r)
		for c := 1; c <= cols; c++ {
			switch cell := g.CellAt(r, c); cell.Kind {
			case manifest.Blocked:
				line[c] = "NAN"
			case manifest.Filled:
				line[c] = truncate(cell.Name, maxCellName)
			}
		}
		data = append(data, line)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return styleHeader
			}
			r := rows - row
			if r < 1 || r > rows {
				return styleCell
			}
			switch g.CellAt(r, col).Kind {
			case manifest.Blocked:
				return styleCell.Inherit(styleBlocked)
			case manifest.Filled:
				return styleCell.Inherit(styleContainer)
			}
			return styleCell
		}).
		Render()
}

// renderMoves draws a plan's moves as a numbered table.
func renderMoves(moves []yard.Move) string {
	data := make([][]string, len(moves))
	for i, m := range moves {
		what := "crane"
		if m.Container != nil {
			what = m.Container.String()
		}
		data[i] = []string{strconv.Itoa(i + 1), what, m.From.String(), m.To.String(), strconv.Itoa(m.Cost)}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		Headers("#", "Container", "From", "To", "Minutes").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col == 1 && row >= 0 && row < len(moves) && moves[row].Container == nil {
				return styleCell.Inherit(StyleDim)
			}
			if col == 4 {
				return styleCell.Inherit(StyleNumber)
			}
			return styleCell
		}).
		Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
