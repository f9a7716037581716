package printers

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/chainjournal/pkg/journal"
	"tableflip.dev/chainjournal/pkg/lifecycle"
	"tableflip.dev/chainjournal/pkg/wallet"
)

func init() {
	color.NoColor = true
}

func TestJournalPrintsEntriesInOrder(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{ShowID: true, Location: time.UTC, Out: &buf}
	pp.Journal(&journal.Journal{
		ID:    "0xabc",
		Owner: "0xa11ce",
		Title: "Trip Log",
		Entries: []journal.Entry{
			{Content: "Day 1", CreatedAtMs: 1700000000000},
			{Content: "Day 2", CreatedAtMs: 1700000060000},
		},
	})

	got := buf.String()
	for _, want := range []string{"Trip Log - 2 entries", "0xabc · owner 0xa11ce", "Nov 14, 2023 10:13:20 PM", "  Day 1"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in:\n%s", want, got)
		}
	}
	if strings.Index(got, "Day 1") > strings.Index(got, "Day 2") {
		t.Fatalf("entries out of order:\n%s", got)
	}
}

func TestJournalWithoutEntries(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Journal(&journal.Journal{ID: "0x1", Owner: "0x2"})
	got := buf.String()
	if !strings.Contains(got, journal.DefaultTitle+" - 0 entries") || !strings.Contains(got, "No entries yet.") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestJournalsTable(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Journals([]journal.Summary{{ID: "0x1", Title: "Trip Log"}, {ID: "0x2"}})
	got := buf.String()
	if !strings.Contains(got, "Trip Log") || !strings.Contains(got, journal.UntitledJournal) {
		t.Fatalf("unexpected output:\n%s", got)
	}
	if strings.Contains(got, "0x1") {
		t.Fatalf("ids are hidden unless asked for:\n%s", got)
	}

	buf.Reset()
	pp.Journals(nil)
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("expected none:\n%s", buf.String())
	}
}

func TestAccountsMarksCurrent(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Accounts([]wallet.Account{{Address: "0xa11ce"}, {Address: "0xb0b", Label: "bob"}}, "0xb0b")
	lines := strings.Split(buf.String(), "\n")
	var marked string
	for _, l := range lines {
		if strings.HasPrefix(l, "*") {
			marked = l
		}
	}
	if !strings.Contains(marked, "0xb0b") || !strings.Contains(marked, "bob") {
		t.Fatalf("expected bob marked:\n%s", buf.String())
	}
}

func TestPhase(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Phase(lifecycle.Pending{Phase: lifecycle.Failed, Err: errors.New("boom")})
	if strings.TrimSpace(buf.String()) != "Failed: boom" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, journal.Summary{ID: "0x1", Title: "t"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"title": "t"`) {
		t.Fatalf("got %s", buf.String())
	}
}
