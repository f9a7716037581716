// Package create submits a new journal and waits for it to finalize.
package create

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/chainjournal/pkg/lifecycle"
	"tableflip.dev/chainjournal/pkg/printers"
)

// Creator is the part of the app service Create needs.
type Creator interface {
	CreateJournal(ctx context.Context, title string, observe func(lifecycle.Pending)) (string, error)
}

type Create struct {
	Service Creator
	Title   string
	JSON    bool
	Out     io.Writer
}

type result struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (c *Create) Do(ctx context.Context) error {
	pp := printers.PrettyPrint{Out: c.Out}
	var observe func(lifecycle.Pending)
	if !c.JSON {
		observe = pp.Phase
	}
	id, err := c.Service.CreateJournal(ctx, c.Title, observe)
	if err != nil {
		return err
	}
	if c.JSON {
		return printers.JSON(c.Out, result{ID: id, Title: c.Title})
	}
	out := c.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintln(out, id)
	return nil
}
