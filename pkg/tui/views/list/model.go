// Package list renders the connected account's journals.
package list

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/chainjournal/pkg/app"
	"tableflip.dev/chainjournal/pkg/journal"
	"tableflip.dev/chainjournal/pkg/tui/events"
	"tableflip.dev/chainjournal/pkg/tui/theme"
	"tableflip.dev/chainjournal/pkg/tui/ui"
)

var _ ui.Component = (*Model)(nil)

type loadedMsg struct {
	gen      int
	journals []journal.Summary
	err      error
}

// Model lists journals and opens the selected one.
type Model struct {
	ctx   context.Context
	svc   *app.Service
	theme theme.Theme

	list    list.Model
	spinner spinner.Model

	gen      int
	loading  bool
	loaded   bool
	err      error
	journals []journal.Summary

	width  int
	height int

	// OnSelect is called with the id of the journal the user opens.
	OnSelect func(id string) tea.Cmd
}

// New constructs the list view.
func New(ctx context.Context, svc *app.Service, th theme.Theme) *Model {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	return &Model{
		ctx:      ctx,
		svc:      svc,
		theme:    th,
		list:     l,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		OnSelect: events.OpenJournalCmd,
	}
}

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd {
	return m.Refresh()
}

// Refresh re-queries the owned journals. Without a connected account nothing
// is queried.
func (m *Model) Refresh() tea.Cmd {
	m.gen++
	m.err = nil
	account := m.svc.Wallet.Account()
	if account == "" {
		m.loading = false
		m.loaded = false
		m.journals = nil
		m.list.SetItems(nil)
		return nil
	}
	m.loading = true
	gen := m.gen
	ctx, svc := m.ctx, m.svc
	load := func() tea.Msg {
		journals, err := svc.Journals(ctx)
		return loadedMsg{gen: gen, journals: journals, err: err}
	}
	return tea.Batch(m.spinner.Tick, load)
}

// Journals returns the last loaded summaries.
func (m *Model) Journals() []journal.Summary {
	return m.journals
}

// Loading reports whether a query is in flight.
func (m *Model) Loading() bool {
	return m.loading
}

// Update implements ui.Component.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.loaded = true
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.journals = msg.journals
		return m, m.list.SetItems(itemsFromSummaries(msg.journals))
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case events.ChangedMsg:
		return m, m.Refresh()
	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(journalItem); ok && m.OnSelect != nil {
				return m, m.OnSelect(item.summary.ID)
			}
			return m, nil
		case "r":
			return m, m.Refresh()
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

// SetSize implements ui.Component.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, max(1, height-2))
}

// Help implements ui.Component.
func (m *Model) Help() string {
	return "↑/↓ move · enter open · n new · r refresh · ? help · q quit"
}

// Capturing implements ui.Component.
func (m *Model) Capturing() bool { return false }

// View implements ui.Component.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Journal.Title.Render("Your journals"))
	b.WriteString("\n\n")

	switch {
	case !m.svc.Wallet.Connected():
		b.WriteString(m.theme.Journal.Empty.Render("Connect a wallet to see your journals."))
	case m.loading:
		b.WriteString(m.spinner.View() + " Loading journals…")
	case m.err != nil:
		b.WriteString(m.theme.Journal.Error.Render(fmt.Sprintf("Error loading journals: %v", m.err)))
	case m.loaded && len(m.journals) == 0:
		b.WriteString(m.theme.Journal.Empty.Render("No journals yet. Press n to create one."))
	default:
		b.WriteString(m.list.View())
	}
	return b.String()
}

func itemsFromSummaries(summaries []journal.Summary) []list.Item {
	items := make([]list.Item, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, journalItem{summary: s})
	}
	return items
}

type journalItem struct {
	summary journal.Summary
}

func (j journalItem) Title() string       { return j.summary.Title }
func (j journalItem) Description() string { return j.summary.ID }
func (j journalItem) FilterValue() string { return j.summary.Title }
