// Package ui launches the interactive journal browser.
package ui

import (
	"context"
	"errors"
	"os"

	"github.com/mattn/go-isatty"

	"tableflip.dev/chainjournal/pkg/app"
	tuiapp "tableflip.dev/chainjournal/pkg/tui/app"
)

// ErrNotTerminal is returned when stdout cannot host the UI.
var ErrNotTerminal = errors.New("ui: stdout is not a terminal")

type UI struct {
	Service *app.Service
	// Force skips the terminal check.
	Force bool
}

func (u *UI) Do(ctx context.Context) error {
	fd := os.Stdout.Fd()
	if !u.Force && !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return ErrNotTerminal
	}
	return tuiapp.Run(ctx, u.Service)
}
