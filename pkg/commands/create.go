package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/chainjournal/pkg/commands/options"
	"tableflip.dev/chainjournal/pkg/runner/create"
)

func addCreate(topLevel *cobra.Command, s *session) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "create a journal owned by the connected account",
		Long: options.Wrap80(`Create a journal and wait for the transaction to finalize.
The new journal's object ID is printed on success.`),
		Example: `
chainjournal create "Trip Log"
chainjournal create Recipes --json
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oo.Out = cmd.OutOrStdout()
			svc, done, err := s.open(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			defer done()
			c := create.Create{
				Service: svc,
				Title:   strings.Join(args, " "),
				JSON:    oo.JSON,
				Out:     oo.Writer(),
			}
			return oo.HandleError(c.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
