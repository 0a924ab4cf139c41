package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives command output; tests replace it.
var stdout io.Writer = os.Stdout

// Palette (ANSI 256).
var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorTeal)
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)

	styleLabel   = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleSpinner = lipgloss.NewStyle().Foreground(colorTeal)

	// Grid and move tables.
	styleContainer = lipgloss.NewStyle().Foreground(colorTeal)
	styleBlocked   = lipgloss.NewStyle().Foreground(colorDim)
	styleHeader    = lipgloss.NewStyle().Bold(true).Foreground(colorGray).Padding(0, 1)
	styleCell      = lipgloss.NewStyle().Padding(0, 1)
)

// A marker prefixes a status line.
type marker struct {
	icon  string
	style lipgloss.Style
}

var (
	markSuccess = marker{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	markError   = marker{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	markWarning = marker{"!", lipgloss.NewStyle().Foreground(colorAmber)}
	markInfo    = marker{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

func (m marker) print(msg string) {
	fmt.Fprintln(stdout, m.style.Render(m.icon)+" "+msg)
}

func printSuccess(format string, args ...any) { markSuccess.print(fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { markError.print(fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { markInfo.print(fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	markWarning.print(StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleLabel.Render(key)+" "+StyleValue.Render(value))
}

// printBlock prints pre-rendered multi-line output such as a table.
func printBlock(s string) {
	fmt.Fprintln(stdout, s)
}

// printStats prints "N moves · M minutes · cached|fresh".
func printStats(moves, minutes int, cached bool) {
	source := lipgloss.NewStyle().Foreground(colorGray).Render("fresh")
	if cached {
		source = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	}
	sep := StyleDim.Render(" · ")
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d moves", moves)),
		StyleDim.Render(fmt.Sprintf("%d minutes", minutes)),
		source,
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, sep))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}
