// Package detail renders one journal and, for its owner, a composer that
// appends entries.
package detail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/textarea"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/chainjournal/pkg/app"
	"tableflip.dev/chainjournal/pkg/journal"
	"tableflip.dev/chainjournal/pkg/lifecycle"
	"tableflip.dev/chainjournal/pkg/sui"
	"tableflip.dev/chainjournal/pkg/tui/events"
	"tableflip.dev/chainjournal/pkg/tui/theme"
	"tableflip.dev/chainjournal/pkg/tui/ui"
	"tableflip.dev/chainjournal/pkg/txn"
	"tableflip.dev/chainjournal/pkg/wallet"
)

var _ ui.Component = (*Model)(nil)

const composerRows = 4

type fetchedMsg struct {
	gen     int
	journal *journal.Journal
	err     error
}

type signedMsg struct {
	gen int
	res wallet.Result
	err error
}

type confirmedMsg struct {
	gen     int
	effects *sui.TransactionEffects
	err     error
}

// Model shows one journal.
type Model struct {
	ctx   context.Context
	svc   *app.Service
	theme theme.Theme

	id      string
	gen     int
	journal *journal.Journal
	loading bool
	missing bool
	err     error

	pending  lifecycle.Pending
	composer textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	location *time.Location
	width    int
	height   int

	// OnBack is called when the user leaves the view.
	OnBack func() tea.Cmd
}

// New constructs the detail view. Call Open to load a journal.
func New(ctx context.Context, svc *app.Service, th theme.Theme) *Model {
	ta := textarea.New()
	ta.Placeholder = "Write an entry…"
	ta.ShowLineNumbers = false
	ta.CharLimit = 4096
	ta.SetHeight(composerRows)

	return &Model{
		ctx:      ctx,
		svc:      svc,
		theme:    th,
		composer: ta,
		viewport: viewport.New(viewport.WithWidth(1), viewport.WithHeight(1)),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		location: time.Local,
		OnBack:   func() tea.Cmd { return events.ShowListCmd },
	}
}

// SetLocation overrides the zone timestamps render in.
func (m *Model) SetLocation(loc *time.Location) {
	if loc != nil {
		m.location = loc
	}
}

// Open switches to journal id and loads it. Results of lifecycles started
// for a previous journal are ignored from here on.
func (m *Model) Open(id string) tea.Cmd {
	m.id = id
	m.journal = nil
	m.missing = false
	m.pending.Reset()
	m.composer.Reset()
	return tea.Batch(m.Refresh(), m.composer.Focus())
}

// Refresh re-queries the journal.
func (m *Model) Refresh() tea.Cmd {
	if m.id == "" {
		return nil
	}
	m.gen++
	m.loading = true
	m.err = nil
	gen, id := m.gen, m.id
	ctx, svc := m.ctx, m.svc
	fetch := func() tea.Msg {
		j, err := svc.Journal(ctx, id)
		return fetchedMsg{gen: gen, journal: j, err: err}
	}
	return tea.Batch(m.spinner.Tick, fetch)
}

// ID is the journal being shown.
func (m *Model) ID() string { return m.id }

// Journal is the last fetched state.
func (m *Model) Journal() *journal.Journal { return m.journal }

// Pending exposes the add-entry lifecycle state.
func (m *Model) Pending() lifecycle.Pending { return m.pending }

// Loading reports whether a fetch is in flight.
func (m *Model) Loading() bool { return m.loading }

// CanCompose reports whether the connected account owns the journal.
func (m *Model) CanCompose() bool {
	return m.journal.OwnedBy(m.svc.Wallet.Account())
}

// SetDraft replaces the composer text.
func (m *Model) SetDraft(s string) {
	m.composer.SetValue(s)
}

// Draft is the composer text.
func (m *Model) Draft() string {
	return m.composer.Value()
}

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements ui.Component.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		switch {
		case errors.Is(msg.err, journal.ErrNotFound):
			m.missing = true
			m.journal = nil
		case msg.err != nil:
			m.err = msg.err
		default:
			m.missing = false
			m.journal = msg.journal
			m.renderEntries()
			m.viewport.GotoBottom()
		}
		return m, nil
	case signedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.pending.Fail(msg.err)
			return m, nil
		}
		m.pending.Submitted(msg.res.Digest)
		m.pending.Confirming()
		return m, m.confirm(msg.res.Digest)
	case confirmedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.pending.Fail(msg.err)
			return m, nil
		}
		m.pending.Done()
		m.composer.Reset()
		// The new entry is shown only once the refetch lands.
		return m, m.Refresh()
	case spinner.TickMsg:
		if !m.loading && !m.pending.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case events.ChangedMsg:
		if m.id != "" && msg.Affects(m.id) && !m.pending.Busy() {
			return m, m.Refresh()
		}
		return m, nil
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.gen++
		m.pending.Reset()
		if m.OnBack != nil {
			return m.OnBack()
		}
		return nil
	case "ctrl+r":
		if m.pending.Busy() {
			return nil
		}
		return m.Refresh()
	case "ctrl+s":
		return m.submit()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	case "up", "down":
		if !m.CanCompose() {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return cmd
		}
	}
	if !m.CanCompose() || m.pending.Busy() {
		return nil
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return cmd
}

// submit starts the add-entry lifecycle. Blank drafts, non-owners and
// in-flight actions are ignored.
func (m *Model) submit() tea.Cmd {
	content := m.composer.Value()
	if !journal.ValidText(content) || !m.CanCompose() || m.loading {
		return nil
	}
	if !m.pending.Begin(lifecycle.IntentAddEntry) {
		return nil
	}
	m.gen++
	gen := m.gen
	tx := txn.BuildAddEntry(m.svc.PackageID(), m.id, content)
	ctx, w := m.ctx, m.svc.Wallet
	sign := func() tea.Msg {
		res, err := w.SignAndExecute(ctx, tx)
		return signedMsg{gen: gen, res: res, err: err}
	}
	return tea.Batch(m.spinner.Tick, sign)
}

func (m *Model) confirm(digest string) tea.Cmd {
	gen := m.gen
	ctx, waiter := m.ctx, m.svc.Waiter
	return func() tea.Msg {
		effects, err := waiter.Wait(ctx, digest)
		return confirmedMsg{gen: gen, effects: effects, err: err}
	}
}

// SetSize implements ui.Component.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.composer.SetWidth(max(10, width-6))
	m.viewport.SetWidth(max(1, width))
	m.viewport.SetHeight(max(1, height-8-composerRows))
	m.renderEntries()
}

// Help implements ui.Component.
func (m *Model) Help() string {
	if m.CanCompose() {
		return "ctrl+s add entry · enter new line · pgup/pgdn scroll · ctrl+r refresh · esc back"
	}
	return "↑/↓ scroll · ctrl+r refresh · esc back"
}

// Capturing implements ui.Component.
func (m *Model) Capturing() bool {
	return m.CanCompose()
}

func (m *Model) wrapWidth() int {
	if m.width <= 0 {
		return 76
	}
	return max(10, m.width-4)
}

func (m *Model) renderEntries() {
	if m.journal == nil {
		m.viewport.SetContent("")
		return
	}
	if len(m.journal.Entries) == 0 {
		m.viewport.SetContent(m.theme.Journal.Empty.Render("No entries yet"))
		return
	}
	blocks := make([]string, 0, len(m.journal.Entries))
	for _, e := range m.journal.Entries {
		stamp := m.theme.Journal.Timestamp.Render(journal.FormatTimestamp(e.CreatedAtMs, m.location))
		body := indent.String(wordwrap.String(e.Content, m.wrapWidth()), 2)
		blocks = append(blocks, stamp+"\n"+m.theme.Journal.Content.Render(body))
	}
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
}

// View implements ui.Component.
func (m *Model) View() string {
	switch {
	case m.journal == nil && m.loading:
		return m.spinner.View() + " Loading journal…"
	case m.missing:
		return m.theme.Journal.Error.Render("Not found")
	case m.journal == nil && m.err != nil:
		return m.theme.Journal.Error.Render(fmt.Sprintf("Error: %v", m.err))
	case m.journal == nil:
		return ""
	}

	title := m.journal.Title
	if title == "" {
		title = journal.DefaultTitle
	}
	lines := []string{
		m.theme.Journal.Title.Render(title),
		m.theme.Journal.Meta.Render(fmt.Sprintf("%s · owner %s", m.journal.ID, m.journal.Owner)),
		"",
		m.viewport.View(),
	}
	if m.err != nil {
		lines = append(lines, "", m.theme.Journal.Error.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.CanCompose() {
		lines = append(lines, "", m.theme.Journal.Composer.Render(m.composer.View()))
	}
	if status := m.status(); status != "" {
		lines = append(lines, status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) status() string {
	switch {
	case m.pending.Phase == lifecycle.Failed:
		return m.theme.Footer.Error.Render(m.pending.Describe())
	case m.pending.Busy():
		return m.spinner.View() + " " + m.pending.Describe()
	case m.loading:
		return m.spinner.View() + " Refreshing…"
	}
	return ""
}
