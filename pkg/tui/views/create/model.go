// Package create is the journal creation form.
package create

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

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

// Model is the creation form.
type Model struct {
	ctx   context.Context
	svc   *app.Service
	theme theme.Theme

	input   textinput.Model
	spinner spinner.Model
	pending lifecycle.Pending
	gen     int
	notice  string

	width  int
	height int

	// OnCreated receives the new journal's id once it is finalized.
	OnCreated func(id string) tea.Cmd
	// OnCancel is called when the user leaves the form.
	OnCancel func() tea.Cmd
}

// New constructs the form.
func New(ctx context.Context, svc *app.Service, th theme.Theme) *Model {
	ti := textinput.New()
	ti.Placeholder = "Journal title"
	ti.Prompt = ""
	ti.CharLimit = 256

	return &Model{
		ctx:       ctx,
		svc:       svc,
		theme:     th,
		input:     ti,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		OnCreated: events.OpenJournalCmd,
		OnCancel:  func() tea.Cmd { return events.ShowListCmd },
	}
}

// Reset clears the form for a new journal and focuses the input.
func (m *Model) Reset() tea.Cmd {
	m.gen++
	m.pending.Reset()
	m.notice = ""
	m.input.Reset()
	return m.input.Focus()
}

// SetTitle replaces the title text.
func (m *Model) SetTitle(s string) {
	m.input.SetValue(s)
}

// Title is the current title text.
func (m *Model) Title() string {
	return m.input.Value()
}

// Pending exposes the create lifecycle state.
func (m *Model) Pending() lifecycle.Pending { return m.pending }

// Disabled reports whether submitting would be ignored.
func (m *Model) Disabled() bool {
	return !journal.ValidText(m.input.Value()) || m.pending.Busy()
}

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements ui.Component.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	switch msg := msg.(type) {
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
		id, err := lifecycle.CreatedObjectID(msg.effects)
		if err != nil {
			m.pending.Fail(err)
			return m, nil
		}
		m.pending.Done()
		m.input.Reset()
		if m.OnCreated != nil {
			return m, m.OnCreated(id)
		}
		return m, nil
	case spinner.TickMsg:
		if !m.pending.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
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
		if m.OnCancel != nil {
			return m.OnCancel()
		}
		return nil
	case "enter":
		return m.submit()
	}
	if m.pending.Busy() {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) submit() tea.Cmd {
	if m.Disabled() {
		return nil
	}
	account := m.svc.Wallet.Account()
	if account == "" {
		m.notice = "Connect a wallet to create a journal."
		return nil
	}
	if !m.pending.Begin(lifecycle.IntentCreate) {
		return nil
	}
	m.notice = ""
	m.gen++
	gen := m.gen
	tx := txn.BuildCreateJournal(m.svc.PackageID(), m.input.Value(), account)
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
	m.input.SetWidth(max(10, min(60, width-10)))
}

// Help implements ui.Component.
func (m *Model) Help() string {
	return "enter create · esc cancel"
}

// Capturing implements ui.Component.
func (m *Model) Capturing() bool { return true }

// View implements ui.Component.
func (m *Model) View() string {
	lines := []string{
		m.theme.Form.Title.Render("New journal"),
		"",
		m.theme.Form.Label.Render("Title"),
		m.input.View(),
		"",
	}
	switch {
	case m.pending.Busy():
		lines = append(lines, m.spinner.View()+" "+m.pending.Describe())
	case m.pending.Phase == lifecycle.Failed:
		lines = append(lines, m.theme.Footer.Error.Render(m.pending.Describe()))
	case m.notice != "":
		lines = append(lines, m.theme.Footer.Error.Render(m.notice))
	case m.Disabled():
		lines = append(lines, m.theme.Form.Disabled.Render("[ Create ]  enter a title"))
	default:
		lines = append(lines, "[ Create ]")
	}
	return m.theme.Form.Frame.Render(strings.Join(lines, "\n"))
}
