// Package list prints the connected account's journals.
package list

import (
	"context"
	"io"

	"tableflip.dev/chainjournal/pkg/journal"
	"tableflip.dev/chainjournal/pkg/printers"
)

// Lister is the part of the app service List needs.
type Lister interface {
	Journals(ctx context.Context) ([]journal.Summary, error)
}

type List struct {
	Service Lister
	ShowID  bool
	JSON    bool
	Out     io.Writer
}

func (l *List) Do(ctx context.Context) error {
	summaries, err := l.Service.Journals(ctx)
	if err != nil {
		return err
	}
	if l.JSON {
		if summaries == nil {
			summaries = []journal.Summary{}
		}
		return printers.JSON(l.Out, summaries)
	}
	pp := printers.PrettyPrint{ShowID: l.ShowID, Out: l.Out}
	pp.NewLine()
	pp.Journals(summaries)
	return nil
}
