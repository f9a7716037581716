package options

import (
	"time"

	"github.com/spf13/cobra"
)

// DisplayOptions
type DisplayOptions struct {
	ShowID bool
	UTC    bool
}

func AddShowIDArgs(cmd *cobra.Command, o *DisplayOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the object ID of each journal.")
}

func AddTimeArgs(cmd *cobra.Command, o *DisplayOptions) {
	cmd.Flags().BoolVar(&o.UTC, "utc", false,
		"Print entry timestamps in UTC instead of the local zone.")
}

// Location is the zone timestamps render in.
func (o *DisplayOptions) Location() *time.Location {
	if o.UTC {
		return time.UTC
	}
	return time.Local
}
