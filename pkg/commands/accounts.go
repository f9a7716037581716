package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/chainjournal/pkg/commands/options"
	"tableflip.dev/chainjournal/pkg/runner/accounts"
)

func addAccounts(topLevel *cobra.Command, s *session) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "list the accounts the wallet can sign for",
		Example: `
chainjournal accounts
chainjournal accounts --network sandbox --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			oo.Out = cmd.OutOrStdout()
			svc, done, err := s.open(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			defer done()
			a := accounts.Accounts{
				Service: svc,
				Current: svc.Wallet.Account(),
				JSON:    oo.JSON,
				Out:     oo.Writer(),
			}
			return oo.HandleError(a.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
