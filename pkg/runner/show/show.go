// Package show prints one journal and its entries.
package show

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"tableflip.dev/chainjournal/pkg/journal"
	"tableflip.dev/chainjournal/pkg/printers"
)

// Reader is the part of the app service Show needs.
type Reader interface {
	Journal(ctx context.Context, id string) (*journal.Journal, error)
}

type Show struct {
	Service  Reader
	ID       string
	ShowID   bool
	JSON     bool
	Location *time.Location
	Width    int
	Out      io.Writer
	// Window limits output to entries newer than now minus Window. Zero
	// shows everything.
	Window time.Duration
	Now    func() time.Time
}

func (s *Show) Do(ctx context.Context) error {
	if s.ID == "" {
		return errors.New("show: journal id required")
	}
	j, err := s.Service.Journal(ctx, s.ID)
	if errors.Is(err, journal.ErrNotFound) {
		return fmt.Errorf("journal %s: %w", s.ID, err)
	}
	if err != nil {
		return err
	}
	if s.Window > 0 {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		j = j.Since(now().Add(-s.Window))
	}
	if s.JSON {
		return printers.JSON(s.Out, j)
	}
	pp := printers.PrettyPrint{ShowID: s.ShowID, Location: s.Location, Width: s.Width, Out: s.Out}
	pp.NewLine()
	pp.Journal(j)
	return nil
}
