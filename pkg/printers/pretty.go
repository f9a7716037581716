package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/chainjournal/pkg/journal"
	"tableflip.dev/chainjournal/pkg/lifecycle"
	"tableflip.dev/chainjournal/pkg/wallet"
)

// PrettyPrint writes journals for humans.
type PrettyPrint struct {
	ShowID   bool
	Location *time.Location
	Width    int
	Out      io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " entry")
	default:
		_, _ = c.Fprintln(pp.out(), " entries")
	}
}

func (pp *PrettyPrint) none(msg string) {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprintf(pp.out(), " %s\n\n", msg)
}

// Journals prints one row per journal, oldest first.
func (pp *PrettyPrint) Journals(summaries []journal.Summary) {
	pp.Title("Journals")
	if len(summaries) == 0 {
		pp.none("none")
		return
	}

	y := color.New(color.FgHiYellow, color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, s := range summaries {
		title := s.Title
		if title == "" {
			title = journal.UntitledJournal
		}
		if pp.ShowID {
			tbl.AddRow(y.Sprint(s.ID), title)
		} else {
			tbl.AddRow(title)
		}
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Journal prints the title, owner and entries of j in query order.
func (pp *PrettyPrint) Journal(j *journal.Journal) {
	title := j.Title
	if title == "" {
		title = journal.DefaultTitle
	}
	pp.TitleWithCount(title, len(j.Entries))

	meta := color.New(color.Faint)
	if pp.ShowID {
		_, _ = meta.Fprintf(pp.out(), "%s · owner %s\n", j.ID, j.Owner)
	} else {
		_, _ = meta.Fprintf(pp.out(), "owner %s\n", j.Owner)
	}
	pp.NewLine()

	if len(j.Entries) == 0 {
		pp.none("No entries yet.")
		return
	}

	width := pp.Width
	if width <= 0 {
		width = 80
	}
	stamp := color.New(color.FgHiYellow, color.Italic, color.Faint)
	for _, e := range j.Entries {
		_, _ = stamp.Fprintln(pp.out(), journal.FormatTimestamp(e.CreatedAtMs, pp.Location))
		body := indent.String(wordwrap.String(e.Content, width-2), 2)
		_, _ = fmt.Fprintln(pp.out(), strings.TrimRight(body, "\n"))
	}
	pp.NewLine()
}

// Accounts lists signable addresses and marks the current one.
func (pp *PrettyPrint) Accounts(accounts []wallet.Account, current string) {
	pp.Title("Accounts")
	if len(accounts) == 0 {
		pp.none("none")
		return
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, a := range accounts {
		mark := " "
		addr := a.Address
		if journal.SameAddress(a.Address, current) {
			mark = "*"
			addr = bold.Sprint(addr)
		}
		tbl.AddRow(mark, addr, a.Label)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Phase prints one line per lifecycle transition.
func (pp *PrettyPrint) Phase(p lifecycle.Pending) {
	c := color.New(color.Faint)
	if p.Phase == lifecycle.Failed {
		c = color.New(color.FgRed)
	}
	_, _ = c.Fprintln(pp.out(), p.Describe())
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v interface{}) error {
	if w == nil {
		w = color.Output
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
