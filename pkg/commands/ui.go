package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/chainjournal/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command, s *session) {
	force := false
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
chainjournal ui
chainjournal ui --network testnet --wallet-bridge http://127.0.0.1:9797
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			i := ui.UI{Service: svc, Force: force}
			return i.Do(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Start even when stdout is not a terminal.")

	topLevel.AddCommand(cmd)
}
