package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/deptree/pkg/depgraph"
)

var (
	pagerFooterStyle = lipgloss.NewStyle().Foreground(colorDim)
	pagerCycleStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// treePager is a scrollable view of a rendered dependency tree.
type treePager struct {
	title  string
	lines  []string
	offset int
	height int
}

func newTreePager(title string, lines []string) treePager {
	return treePager{title: title, lines: lines, height: 20}
}

func (m treePager) Init() tea.Cmd {
	return nil
}

func (m treePager) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.offset--
		case "down", "j":
			m.offset++
		case "pgup", "b":
			m.offset -= m.height
		case "pgdown", "f", " ":
			m.offset += m.height
		case "home", "g":
			m.offset = 0
		case "end", "G":
			m.offset = len(m.lines)
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-4, 3)
	}
	m.offset = m.clamp(m.offset)
	return m, nil
}

func (m treePager) clamp(offset int) int {
	return max(min(offset, len(m.lines)-m.height), 0)
}

func (m treePager) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.lines))
	for _, line := range m.lines[m.offset:end] {
		if strings.HasSuffix(line, depgraph.CycleMarker) {
			line = strings.TrimSuffix(line, depgraph.CycleMarker) + pagerCycleStyle.Render(depgraph.CycleMarker)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(pagerFooterStyle.Render(fmt.Sprintf("%d-%d of %d  ↑/↓ scroll  pgup/pgdn page  q quit",
		min(m.offset+1, len(m.lines)), end, len(m.lines))))
	return b.String()
}

// runPager shows lines in the alternate screen until the user quits.
func runPager(ctx context.Context, title string, lines []string) error {
	p := tea.NewProgram(newTreePager(title, lines), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
