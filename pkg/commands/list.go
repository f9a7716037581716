package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/chainjournal/pkg/commands/options"
	"tableflip.dev/chainjournal/pkg/runner/list"
)

func addList(topLevel *cobra.Command, s *session) {
	oo := &options.OutputOptions{}
	do := &options.DisplayOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list the connected account's journals",
		Example: `
chainjournal list
chainjournal list --show-id --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			oo.Out = cmd.OutOrStdout()
			svc, done, err := s.open(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			defer done()
			l := list.List{
				Service: svc,
				ShowID:  do.ShowID,
				JSON:    oo.JSON,
				Out:     oo.Writer(),
			}
			return oo.HandleError(l.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddShowIDArgs(cmd, do)

	topLevel.AddCommand(cmd)
}
