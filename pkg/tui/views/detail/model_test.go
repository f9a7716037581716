package detail

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap/zaptest"

	"tableflip.dev/chainjournal/pkg/app"
	"tableflip.dev/chainjournal/pkg/config"
	"tableflip.dev/chainjournal/pkg/confirm"
	"tableflip.dev/chainjournal/pkg/journal"
	"tableflip.dev/chainjournal/pkg/lifecycle"
	"tableflip.dev/chainjournal/pkg/sui"
	"tableflip.dev/chainjournal/pkg/tui/events"
	"tableflip.dev/chainjournal/pkg/tui/theme"
	"tableflip.dev/chainjournal/pkg/wallet"
)

const (
	alice = "0xa11ce"
	bob   = "0xb0b"
)

func sandboxService(t *testing.T) *app.Service {
	t.Helper()
	cfg := &config.Config{
		Network:  config.SandboxNetwork,
		Networks: map[string]config.Network{config.SandboxNetwork: {}},
		Account:  alice,
		Sandbox:  config.Sandbox{Path: t.TempDir(), FinalityPolls: 1, Accounts: []string{alice, bob}},
		Confirm:  config.Confirm{Timeout: 2 * time.Second, Interval: time.Millisecond, MaxInterval: 4 * time.Millisecond},
	}
	svc, err := app.Open(context.Background(), cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("open service: %v", err)
	}
	return svc
}

func seedTripLog(t *testing.T, svc *app.Service) string {
	t.Helper()
	ctx := context.Background()
	id, err := svc.CreateJournal(ctx, "Trip Log", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, c := range []string{"Day 1", "Day 2"} {
		if _, err := svc.AddEntry(ctx, id, c, nil); err != nil {
			t.Fatalf("add entry: %v", err)
		}
	}
	return id
}

func newModel(t *testing.T, svc *app.Service) *Model {
	t.Helper()
	m := New(context.Background(), svc, theme.Default())
	m.SetLocation(time.UTC)
	m.SetSize(100, 40)
	return m
}

func fromBubbles(msg tea.Msg) bool {
	return strings.Contains(reflect.TypeOf(msg).PkgPath(), "charmbracelet/bubbles")
}

func isEvent(msg tea.Msg) bool {
	return strings.HasSuffix(reflect.TypeOf(msg).PkgPath(), "pkg/tui/events")
}

// drain runs cmds to completion, feeding results back into m. Widget
// animation messages are dropped and shell events are returned.
func drain(t *testing.T, m *Model, cmds ...tea.Cmd) []tea.Msg {
	t.Helper()
	var out []tea.Msg
	queue := append([]tea.Cmd(nil), cmds...)
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 1000 {
			t.Fatalf("commands did not settle")
		}
		cmd := queue[0]
		queue = queue[1:]
		if cmd == nil {
			continue
		}
		msg := cmd()
		switch v := msg.(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, []tea.Cmd(v)...)
		default:
			if fromBubbles(v) {
				continue
			}
			if isEvent(v) {
				out = append(out, v)
				continue
			}
			_, next := m.Update(v)
			queue = append(queue, next)
		}
	}
	return out
}

func save() tea.KeyPressMsg { return tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl} }

func plain(m *Model) string { return ansi.Strip(m.View()) }

func press(t *testing.T, m *Model, key tea.KeyPressMsg) []tea.Msg {
	t.Helper()
	_, cmd := m.Update(key)
	return drain(t, m, cmd)
}

func TestOwnerSeesEntriesAndComposer(t *testing.T) {
	svc := sandboxService(t)
	id := seedTripLog(t, svc)
	m := newModel(t, svc)
	drain(t, m, m.Open(id))

	view := plain(m)
	for _, want := range []string{"Trip Log", "Day 1", "Day 2"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
	if strings.Index(view, "Day 1") > strings.Index(view, "Day 2") {
		t.Fatalf("entries must render in query order:\n%s", view)
	}
	stamp := journal.FormatTimestamp(m.Journal().Entries[0].CreatedAtMs, time.UTC)
	if !strings.Contains(view, stamp) {
		t.Fatalf("expected timestamp %q in view:\n%s", stamp, view)
	}
	if !m.CanCompose() || !strings.Contains(view, "an entry") {
		t.Fatalf("owner should see the composer:\n%s", view)
	}
}

func TestOwnerAddsEntry(t *testing.T) {
	svc := sandboxService(t)
	id := seedTripLog(t, svc)
	m := newModel(t, svc)
	drain(t, m, m.Open(id))

	m.SetDraft("Day 3")
	press(t, m, save())

	j := m.Journal()
	if len(j.Entries) != 3 || j.Entries[2].Content != "Day 3" {
		t.Fatalf("expected Day 3 appended, got %+v", j.Entries)
	}
	if m.Draft() != "" {
		t.Fatalf("draft should clear after success, got %q", m.Draft())
	}
	if p := m.Pending(); p.Phase != lifecycle.Done || p.Busy() {
		t.Fatalf("expected done, got %+v", p)
	}
	if m.Loading() {
		t.Fatalf("loading should clear once the refetch lands")
	}
}

func TestBlankDraftIsIgnored(t *testing.T) {
	svc := sandboxService(t)
	id := seedTripLog(t, svc)
	m := newModel(t, svc)
	drain(t, m, m.Open(id))

	m.SetDraft("   ")
	_, cmd := m.Update(save())
	if cmd != nil {
		t.Fatalf("blank draft must not start a transaction")
	}
	if m.Pending().Phase != lifecycle.Idle {
		t.Fatalf("expected idle, got %v", m.Pending().Phase)
	}
}

func TestNonOwnerHasNoComposer(t *testing.T) {
	svc := sandboxService(t)
	id := seedTripLog(t, svc)
	if err := svc.Wallet.Connect(bob); err != nil {
		t.Fatalf("connect: %v", err)
	}
	m := newModel(t, svc)
	drain(t, m, m.Open(id))

	view := plain(m)
	if !strings.Contains(view, "Day 2") {
		t.Fatalf("non-owner should still read entries:\n%s", view)
	}
	if m.CanCompose() || strings.Contains(view, "an entry") {
		t.Fatalf("non-owner must not see the composer:\n%s", view)
	}
	m.SetDraft("sneaky")
	if _, cmd := m.Update(save()); cmd != nil {
		t.Fatalf("non-owner submit must be ignored")
	}
}

func TestEmptyJournal(t *testing.T) {
	svc := sandboxService(t)
	id, err := svc.CreateJournal(context.Background(), "Fresh", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	m := newModel(t, svc)
	drain(t, m, m.Open(id))
	if !strings.Contains(m.View(), "No entries yet") {
		t.Fatalf("expected empty hint:\n%s", m.View())
	}
}

func TestNotFound(t *testing.T) {
	svc := sandboxService(t)
	m := newModel(t, svc)
	drain(t, m, m.Open("0x1234"))
	if got := m.View(); !strings.Contains(got, "Not found") {
		t.Fatalf("expected Not found, got %q", got)
	}
}

type failingReader struct{}

func (failingReader) GetObject(context.Context, string, sui.ObjectDataOptions) (*sui.ObjectResponse, error) {
	return nil, errors.New("node unreachable")
}

func (failingReader) GetOwnedObjects(context.Context, string, sui.ObjectResponseQuery, *string, int) (*sui.ObjectsPage, error) {
	return nil, errors.New("node unreachable")
}

func TestQueryError(t *testing.T) {
	svc := sandboxService(t)
	svc.Reader = failingReader{}
	m := newModel(t, svc)
	drain(t, m, m.Open("0x1"))
	if got := m.View(); !strings.Contains(got, "Error: node unreachable") {
		t.Fatalf("expected error text, got %q", got)
	}
}

type rejectingWallet struct{}

func (rejectingWallet) SignAndExecute(context.Context, wallet.Request) (wallet.Result, error) {
	return wallet.Result{}, wallet.ErrRejected
}

func TestWalletRejectionIsShown(t *testing.T) {
	svc := sandboxService(t)
	id := seedTripLog(t, svc)
	m := newModel(t, svc)
	drain(t, m, m.Open(id))

	svc.Wallet.Executor = rejectingWallet{}
	m.SetDraft("Day 3")
	press(t, m, save())

	p := m.Pending()
	if p.Phase != lifecycle.Failed || !errors.Is(p.Err, wallet.ErrRejected) {
		t.Fatalf("expected rejection, got %+v", p)
	}
	if len(m.Journal().Entries) != 2 {
		t.Fatalf("entries must not change on rejection")
	}
	if !strings.Contains(plain(m), "request rejected") {
		t.Fatalf("rejection should be visible:\n%s", m.View())
	}
	if m.Draft() != "Day 3" {
		t.Fatalf("draft should survive a failure, got %q", m.Draft())
	}
}

func TestLeavingDropsInFlightResults(t *testing.T) {
	svc := sandboxService(t)
	id := seedTripLog(t, svc)
	m := newModel(t, svc)
	drain(t, m, m.Open(id))

	m.SetDraft("Day 3")
	_, cmd := m.Update(save())
	if !m.Pending().Busy() {
		t.Fatalf("expected lifecycle in flight")
	}
	out := press(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if len(out) != 1 {
		t.Fatalf("expected a back event, got %v", out)
	}
	if _, ok := out[0].(events.ShowListMsg); !ok {
		t.Fatalf("expected ShowListMsg, got %T", out[0])
	}

	drain(t, m, cmd)
	if m.Pending().Phase != lifecycle.Idle {
		t.Fatalf("abandoned lifecycle must not update the view: %+v", m.Pending())
	}
}

func TestChangedRefetches(t *testing.T) {
	svc := sandboxService(t)
	id := seedTripLog(t, svc)
	m := newModel(t, svc)
	drain(t, m, m.Open(id))

	if _, err := svc.AddEntry(context.Background(), id, "from elsewhere", nil); err != nil {
		t.Fatalf("add entry: %v", err)
	}
	_, cmd := m.Update(events.ChangedMsg{ObjectID: "0xother"})
	if cmd != nil {
		t.Fatalf("unrelated change must not refetch")
	}
	_, cmd = m.Update(events.ChangedMsg{ObjectID: id})
	drain(t, m, cmd)
	if n := len(m.Journal().Entries); n != 3 {
		t.Fatalf("expected refetch to show 3 entries, got %d", n)
	}
}

func TestEnterStartsANewLine(t *testing.T) {
	svc := sandboxService(t)
	id := seedTripLog(t, svc)
	m := newModel(t, svc)
	drain(t, m, m.Open(id))

	m.SetDraft("Day 3")
	if _, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); m.Pending().Busy() {
		t.Fatalf("enter must not submit, got cmd %v", cmd)
	}
	press(t, m, tea.KeyPressMsg{Code: 'x', Text: "x"})
	if m.Draft() != "Day 3\nx" {
		t.Fatalf("expected a two line draft, got %q", m.Draft())
	}

	press(t, m, save())
	j := m.Journal()
	if len(j.Entries) != 3 || j.Entries[2].Content != "Day 3\nx" {
		t.Fatalf("line breaks must reach the chain, got %+v", j.Entries)
	}
}

type failingWaiter struct{ err error }

func (w failingWaiter) Wait(context.Context, string) (*sui.TransactionEffects, error) {
	return nil, w.err
}

func TestConfirmationFailureIsShown(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want string
	}{
		{"timeout", confirm.ErrTimeout, "timed out waiting for finality"},
		{"execution", confirm.ErrExecutionFailed, "transaction execution failed"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			svc := sandboxService(t)
			id := seedTripLog(t, svc)
			m := newModel(t, svc)
			drain(t, m, m.Open(id))

			svc.Waiter = failingWaiter{err: tc.err}
			m.SetDraft("Day 3")
			press(t, m, save())

			p := m.Pending()
			if p.Phase != lifecycle.Failed || !errors.Is(p.Err, tc.err) {
				t.Fatalf("expected failure with %v, got %+v", tc.err, p)
			}
			if p.Busy() {
				t.Fatalf("input must be usable again after a failure")
			}
			if !strings.Contains(plain(m), tc.want) {
				t.Fatalf("expected %q in view:\n%s", tc.want, plain(m))
			}
			if m.Draft() != "Day 3" {
				t.Fatalf("draft should survive a failure, got %q", m.Draft())
			}

			press(t, m, tea.KeyPressMsg{Code: '!', Text: "!"})
			if m.Draft() != "Day 3!" {
				t.Fatalf("composer should accept input again, got %q", m.Draft())
			}
		})
	}
}
