// Package add appends an entry to a journal and prints the journal as read
// back after finality.
package add

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/chainjournal/pkg/journal"
	"tableflip.dev/chainjournal/pkg/lifecycle"
	"tableflip.dev/chainjournal/pkg/printers"
)

// Appender is the part of the app service Add needs.
type Appender interface {
	AddEntry(ctx context.Context, id, content string, observe func(lifecycle.Pending)) (*journal.Journal, error)
}

type Add struct {
	Service  Appender
	ID       string
	Content  string
	JSON     bool
	Location *time.Location
	Out      io.Writer
}

func (a *Add) Do(ctx context.Context) error {
	if a.ID == "" {
		return errors.New("add: journal id required")
	}
	pp := printers.PrettyPrint{Location: a.Location, Out: a.Out}
	var observe func(lifecycle.Pending)
	if !a.JSON {
		observe = pp.Phase
	}
	j, err := a.Service.AddEntry(ctx, a.ID, a.Content, observe)
	if err != nil {
		return err
	}
	if a.JSON {
		return printers.JSON(a.Out, j)
	}
	pp.NewLine()
	pp.Journal(j)
	return nil
}
