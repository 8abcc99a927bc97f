package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/deptree/pkg/depgraph"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - cycles
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - labels
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	StyleCycle   = lipgloss.NewStyle().Foreground(colorRed)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(18)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printTitle(title string) {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, StyleTitle.Render(title))
}

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Analysis Output
// =============================================================================

// printStats prints graph statistics on a single line.
func printStats(nodes, edges int, cycle, cached bool) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d nodes", nodes)),
		StyleDim.Render(fmt.Sprintf("%d edges", edges)),
	}
	if cycle {
		parts = append(parts, StyleCycle.Render("cycle"))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNumbered prints items as a 1-based numbered list.
func printNumbered(items []string) {
	width := len(strconv.Itoa(len(items)))
	for i, item := range items {
		fmt.Fprintf(stdout, "  %s %s\n", StyleNumber.Render(fmt.Sprintf("%*d.", width, i+1)), item)
	}
}

// printCycleEdges lists the back-edges found during traversal.
func printCycleEdges(edges []depgraph.Edge) {
	for _, e := range edges {
		printDetail("%s %s %s", e.From, iconArrow, e.To)
	}
}

// comparisonTable renders the packages whose position differs between the
// two orderings.
func comparisonTable(moved []depgraph.PositionDiff) string {
	rows := make([][]string, 0, len(moved))
	for _, d := range moved {
		rows = append(rows, []string{
			d.Name,
			strconv.Itoa(d.OurIndex),
			strconv.Itoa(d.ReferenceIndex),
			fmt.Sprintf("%+d", d.ReferenceIndex-d.OurIndex),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Package", "deptree", "npm", "Shift").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		}).
		String()
}

// printComparison prints the result of comparing the load order with npm's.
func printComparison(c depgraph.Comparison, reference []string) {
	printDetail("npm listed %d packages", len(reference))
	if len(c.OnlyOurs) > 0 {
		printWarning("only in deptree: %s", strings.Join(c.OnlyOurs, ", "))
	}
	if len(c.OnlyReference) > 0 {
		printWarning("only in npm: %s", strings.Join(c.OnlyReference, ", "))
	}
	if c.SameSet() {
		printSuccess("both orderings contain the same %d packages", len(c.PositionDiffs))
	}

	moved := c.Moved()
	if len(moved) == 0 {
		printSuccess("no position differences")
		return
	}
	printInfo("%d packages at different positions", len(moved))
	fmt.Fprintln(stdout, comparisonTable(moved))
}
