// Package app is the Bubble Tea shell. It routes between the list, detail
// and create views and feeds sandbox change notifications to them.
package app

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"go.uber.org/zap"

	"tableflip.dev/chainjournal/pkg/app"
	"tableflip.dev/chainjournal/pkg/chain/sandbox"
	"tableflip.dev/chainjournal/pkg/tui/events"
	"tableflip.dev/chainjournal/pkg/tui/theme"
	"tableflip.dev/chainjournal/pkg/tui/ui"
	"tableflip.dev/chainjournal/pkg/tui/views/create"
	"tableflip.dev/chainjournal/pkg/tui/views/detail"
	"tableflip.dev/chainjournal/pkg/tui/views/help"
	"tableflip.dev/chainjournal/pkg/tui/views/list"
)

// Route names the view on screen.
type Route int

const (
	RouteList Route = iota
	RouteDetail
	RouteCreate
	RouteHelp
)

type watchStartedMsg struct {
	ch     <-chan sandbox.Event
	cancel context.CancelFunc
	err    error
}

type watchEventMsg struct {
	event sandbox.Event
}

type watchStoppedMsg struct{}

type helpClosedMsg struct{}

// Model composes the views.
type Model struct {
	ctx    context.Context
	svc    *app.Service
	theme  theme.Theme
	logger *zap.Logger

	route  Route
	list   *list.Model
	detail *detail.Model
	create *create.Model
	help   *help.Model
	back   Route

	watchCh     <-chan sandbox.Event
	watchCancel context.CancelFunc

	width  int
	height int
}

// New constructs the shell around svc.
func New(ctx context.Context, svc *app.Service) *Model {
	th := theme.Default()
	logger := svc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Model{
		ctx:    ctx,
		svc:    svc,
		theme:  th,
		logger: logger.Named("tui"),
		list:   list.New(ctx, svc, th),
		detail: detail.New(ctx, svc, th),
		create: create.New(ctx, svc, th),
		help:   help.New(th),
	}
	m.help.OnClose = func() tea.Cmd {
		return func() tea.Msg { return helpClosedMsg{} }
	}
	return m
}

// Route is the active view.
func (m *Model) Route() Route { return m.route }

// List exposes the list view.
func (m *Model) List() *list.Model { return m.list }

// Detail exposes the detail view.
func (m *Model) Detail() *detail.Model { return m.detail }

// Create exposes the creation form.
func (m *Model) Create() *create.Model { return m.create }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.list.Init(), startWatchCmd(m.ctx, m.svc))
}

func (m *Model) active() ui.Component {
	switch m.route {
	case RouteDetail:
		return m.detail
	case RouteCreate:
		return m.create
	case RouteHelp:
		return m.help
	default:
		return m.list
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.applySizes()
		return m, nil
	case events.OpenJournalMsg:
		m.logger.Debug(msg.Describe())
		m.route = RouteDetail
		return m, m.detail.Open(msg.ID)
	case events.ShowListMsg:
		m.route = RouteList
		return m, m.list.Refresh()
	case events.ShowCreateMsg:
		m.route = RouteCreate
		return m, m.create.Reset()
	case helpClosedMsg:
		m.route = m.back
		return m, nil
	case watchStartedMsg:
		if msg.err != nil {
			m.logger.Debug("watch unavailable", zap.Error(msg.err))
			return m, nil
		}
		m.stopWatch()
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		return m, m.waitForWatch()
	case watchEventMsg:
		changed := events.ChangedMsg{}
		if msg.event.Type == sandbox.EventObjectChanged {
			changed.ObjectID = msg.event.ObjectID
		}
		m.logger.Debug(changed.Describe())
		return m, tea.Batch(m.broadcast(changed), m.waitForWatch())
	case watchStoppedMsg:
		m.stopWatch()
		return m, nil
	case tea.KeyPressMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
		_, cmd := m.active().Update(msg)
		return m, cmd
	}

	// Results of async work are delivered to every view; each one ignores
	// what it did not ask for.
	var cmds []tea.Cmd
	for _, v := range []ui.Component{m.list, m.detail, m.create} {
		_, cmd := v.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// broadcast sends a change to the view on screen. Hidden views refetch when
// they are shown again.
func (m *Model) broadcast(msg events.ChangedMsg) tea.Cmd {
	if m.route == RouteCreate || m.route == RouteHelp {
		return nil
	}
	_, cmd := m.active().Update(msg)
	return cmd
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.stopWatch()
		return tea.Quit, true
	}
	if m.active().Capturing() {
		return nil, false
	}
	if m.route == RouteList {
		switch msg.String() {
		case "q":
			m.stopWatch()
			return tea.Quit, true
		case "n":
			return events.ShowCreateCmd, true
		case "?":
			m.back = m.route
			m.route = RouteHelp
			return nil, true
		}
	}
	return nil, false
}

func startWatchCmd(parent context.Context, svc *app.Service) tea.Cmd {
	if svc == nil || svc.Sandbox == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		ch, err := svc.Watch(ctx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}

func (m *Model) applySizes() {
	// header, blank line, and footer
	body := max(1, m.height-3)
	for _, v := range []ui.Component{m.list, m.detail, m.create, m.help} {
		v.SetSize(m.width, body)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		"",
		m.active().View(),
		m.theme.Footer.Help.Render(m.active().Help()),
	)
}

func (m *Model) header() string {
	h := m.theme.Header
	account := m.svc.Wallet.Account()
	if account == "" {
		account = "not connected"
	}
	parts := []string{
		h.App.Render("chainjournal"),
		h.Network.Render(m.svc.Wallet.Network),
		h.Account.Render(account),
	}
	return h.Bar.Render(strings.Join(parts, " · "))
}

// Run launches the interactive program.
func Run(ctx context.Context, svc *app.Service) error {
	m := New(ctx, svc)
	defer m.stopWatch()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
