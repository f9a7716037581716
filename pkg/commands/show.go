package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/chainjournal/pkg/commands/options"
	"tableflip.dev/chainjournal/pkg/journal"
	"tableflip.dev/chainjournal/pkg/runner/show"
)

func addShow(topLevel *cobra.Command, s *session) {
	oo := &options.OutputOptions{}
	do := &options.DisplayOptions{}
	since := ""

	cmd := &cobra.Command{
		Use:   "show <journal-id>",
		Short: "print a journal and its entries",
		Example: `
chainjournal show 0x5c1f...
chainjournal show 0x5c1f... --utc
chainjournal show 0x5c1f... --since 3d
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: s.journalCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			oo.Out = cmd.OutOrStdout()
			window, err := journal.ParseWindow(since)
			if err != nil {
				return oo.HandleError(err)
			}
			svc, done, err := s.open(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			defer done()
			sh := show.Show{
				Service:  svc,
				ID:       args[0],
				ShowID:   true,
				JSON:     oo.JSON,
				Location: do.Location(),
				Out:      oo.Writer(),
				Window:   window,
			}
			return oo.HandleError(sh.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddTimeArgs(cmd, do)
	cmd.Flags().StringVar(&since, "since", "",
		`Only show entries from this window, example: --since=3d or --since="1w 2d".`)

	topLevel.AddCommand(cmd)
}
