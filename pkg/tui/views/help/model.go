// Package help shows the key bindings in a scrollable frame.
package help

import (
	_ "embed"
	"strings"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/chainjournal/pkg/tui/theme"
	"tableflip.dev/chainjournal/pkg/tui/ui"
)

//go:embed help.md
var helpMarkdown string

var _ ui.Component = (*Model)(nil)

// Model renders the help text inside a bordered viewport.
type Model struct {
	theme    theme.Theme
	viewport viewport.Model
	frame    lipgloss.Style
	width    int
	height   int

	// OnClose is called when the user dismisses help.
	OnClose func() tea.Cmd
}

// New constructs the help view.
func New(th theme.Theme) *Model {
	m := &Model{
		theme: th,
		viewport: viewport.New(
			viewport.WithWidth(1),
			viewport.WithHeight(1),
		),
		frame: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
	m.viewport.MouseWheelEnabled = true
	m.SetSize(60, 20)
	return m
}

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements ui.Component.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "esc", "?", "q":
			if m.OnClose != nil {
				return m, m.OnClose()
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetSize implements ui.Component.
func (m *Model) SetSize(width, height int) {
	width = max(width, 32)
	height = max(height, 8)
	if m.width == width && m.height == height {
		return
	}
	m.width, m.height = width, height

	inner := max(width-m.frame.GetHorizontalFrameSize(), 1)
	m.viewport.SetWidth(inner)
	m.viewport.SetHeight(max(height-m.frame.GetVerticalFrameSize(), 1))
	m.viewport.SetContent(render(helpMarkdown, inner))
	m.viewport.SetYOffset(0)
}

// Help implements ui.Component.
func (m *Model) Help() string { return "↑/↓ scroll · esc close" }

// Capturing implements ui.Component.
func (m *Model) Capturing() bool { return true }

// View implements ui.Component.
func (m *Model) View() string {
	return m.frame.Render(m.viewport.View())
}

// render turns the markdown headings into styled titles and wraps prose to
// width.
func render(md string, width int) string {
	title := lipgloss.NewStyle().Bold(true).Underline(true)
	var out []string
	for _, line := range strings.Split(strings.TrimSpace(md), "\n") {
		switch {
		case strings.HasPrefix(line, "# "):
			out = append(out, title.Render(strings.ToUpper(strings.TrimPrefix(line, "# "))))
		case strings.HasPrefix(line, "## "):
			out = append(out, title.Render(strings.TrimPrefix(line, "## ")))
		case strings.HasPrefix(line, "- "):
			out = append(out, "  "+wordwrap.String(strings.TrimPrefix(line, "- "), width-2))
		default:
			out = append(out, wordwrap.String(line, width))
		}
	}
	return strings.Join(out, "\n")
}
