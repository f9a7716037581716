package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/chainjournal/pkg/commands/options"
	"tableflip.dev/chainjournal/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command, s *session) {
	oo := &options.OutputOptions{}
	do := &options.DisplayOptions{}

	cmd := &cobra.Command{
		Use:   "add <journal-id> <entry>",
		Short: "append an entry to a journal you own",
		Example: `
chainjournal add 0x5c1f... "Day 3: reached the coast"
`,
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: s.journalCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			oo.Out = cmd.OutOrStdout()
			svc, done, err := s.open(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			defer done()
			a := add.Add{
				Service:  svc,
				ID:       args[0],
				Content:  strings.Join(args[1:], " "),
				JSON:     oo.JSON,
				Location: do.Location(),
				Out:      oo.Writer(),
			}
			return oo.HandleError(a.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddTimeArgs(cmd, do)

	topLevel.AddCommand(cmd)
}
