package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/chainjournal/pkg/app"
	"tableflip.dev/chainjournal/pkg/commands/options"
	"tableflip.dev/chainjournal/pkg/config"
	"tableflip.dev/chainjournal/pkg/logging"
)

// session carries the configuration shared by every subcommand.
type session struct {
	v  *viper.Viper
	no *options.NetworkOptions
}

// open loads the configuration and builds the app service. The returned func
// flushes the log file.
func (s *session) open(ctx context.Context) (*app.Service, func(), error) {
	s.no.Apply(s.v)
	cfg, err := config.Load(s.v)
	if err != nil {
		return nil, nil, err
	}
	logger, closeLog, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	svc, err := app.Open(ctx, cfg, logger)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return svc, closeLog, nil
}

func New() *cobra.Command {
	s := &session{v: config.New(), no: &options.NetworkOptions{}}

	cmd := &cobra.Command{
		Use:   "chainjournal",
		Short: options.Wrap80("Append-only journals stored as objects on a Sui network."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	options.AddNetworkArgs(cmd, s.no, s.v)

	AddCommands(cmd, s)
	return cmd
}

func AddCommands(topLevel *cobra.Command, s *session) {
	addUI(topLevel, s)
	addList(topLevel, s)
	addShow(topLevel, s)
	addCreate(topLevel, s)
	addAdd(topLevel, s)
	addAccounts(topLevel, s)
	addVersion(topLevel)
	addCompletions(topLevel, s)
	addUpgrade(topLevel)
}
