package options

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NetworkOptions select the chain, account and wallet for every command.
type NetworkOptions struct {
	Config  string
	Network string
	Account string
	Bridge  string
	Sandbox string
	LogPath string
}

// AddNetworkArgs registers persistent flags on cmd and binds them to v so
// flags override the config file and environment.
func AddNetworkArgs(cmd *cobra.Command, o *NetworkOptions, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.Config, "config", "",
		Wrap80("Config file to read instead of searching for .chainjournal.yaml."))
	flags.StringVarP(&o.Network, "network", "n", "",
		Wrap80("Network to use: devnet, testnet, mainnet, localnet or sandbox."))
	flags.StringVarP(&o.Account, "account", "a", "",
		"Account address to act as.")
	flags.StringVar(&o.Bridge, "wallet-bridge", "",
		"URL of the wallet bridge that signs transactions.")
	flags.StringVar(&o.Sandbox, "sandbox", "",
		"Directory holding the sandbox chain.")
	flags.StringVar(&o.LogPath, "log", "",
		"Append JSON logs to this file.")

	_ = v.BindPFlag("network", flags.Lookup("network"))
	_ = v.BindPFlag("account", flags.Lookup("account"))
	_ = v.BindPFlag("wallet.bridge", flags.Lookup("wallet-bridge"))
	_ = v.BindPFlag("sandbox.path", flags.Lookup("sandbox"))
	_ = v.BindPFlag("log.path", flags.Lookup("log"))
}

// Apply points v at an explicit config file when one was given.
func (o *NetworkOptions) Apply(v *viper.Viper) {
	if o.Config != "" {
		v.SetConfigFile(o.Config)
	}
}
