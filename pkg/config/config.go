// Package config loads chainjournal settings from .chainjournal.yaml, the
// environment, and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// SandboxNetwork is the in-process network backed by the sandbox chain.
const SandboxNetwork = "sandbox"

// Network is one named chain endpoint.
type Network struct {
	RPC     string `mapstructure:"rpc" validate:"omitempty,url"`
	Package string `mapstructure:"package"`
}

type Wallet struct {
	Bridge string `mapstructure:"bridge" validate:"omitempty,url"`
}

type Sandbox struct {
	Path          string   `mapstructure:"path"`
	FinalityPolls int      `mapstructure:"finality_polls" validate:"gte=0"`
	Accounts      []string `mapstructure:"accounts"`
}

type Confirm struct {
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Interval    time.Duration `mapstructure:"interval" validate:"gt=0"`
	MaxInterval time.Duration `mapstructure:"max_interval" validate:"gtefield=Interval"`
}

type RPC struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Rate    float64       `mapstructure:"rate" validate:"gte=0"`
}

type Log struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// Config is the full, validated configuration.
type Config struct {
	Network  string             `mapstructure:"network" validate:"required"`
	Networks map[string]Network `mapstructure:"networks" validate:"dive"`
	Account  string             `mapstructure:"account"`
	Wallet   Wallet             `mapstructure:"wallet"`
	Sandbox  Sandbox            `mapstructure:"sandbox"`
	Confirm  Confirm            `mapstructure:"confirm"`
	RPC      RPC                `mapstructure:"rpc"`
	Log      Log                `mapstructure:"log"`
}

var defaultNetworks = map[string]Network{
	"devnet":       {RPC: "https://fullnode.devnet.sui.io:443"},
	"testnet":      {RPC: "https://fullnode.testnet.sui.io:443"},
	"mainnet":      {RPC: "https://fullnode.mainnet.sui.io:443"},
	"localnet":     {RPC: "http://127.0.0.1:9000"},
	SandboxNetwork: {},
}

// New returns a viper instance with defaults, search paths and environment
// binding in place. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("network", SandboxNetwork)
	for name, n := range defaultNetworks {
		v.SetDefault("networks."+name+".rpc", n.RPC)
		v.SetDefault("networks."+name+".package", n.Package)
	}
	v.SetDefault("account", "")
	v.SetDefault("wallet.bridge", "")
	v.SetDefault("sandbox.path", "~/.chainjournal/sandbox")
	v.SetDefault("sandbox.finality_polls", 1)
	v.SetDefault("sandbox.accounts", []string{})
	v.SetDefault("confirm.timeout", 60*time.Second)
	v.SetDefault("confirm.interval", 500*time.Millisecond)
	v.SetDefault("confirm.max_interval", 5*time.Second)
	v.SetDefault("rpc.timeout", 30*time.Second)
	v.SetDefault("rpc.rate", 10.0)
	v.SetDefault("log.path", "")
	v.SetDefault("log.level", "info")

	v.SetConfigName(".chainjournal") // .yaml is implicit
	v.SetEnvPrefix("CHAINJOURNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("CHAINJOURNAL_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}
	return v
}

// Load reads .env and the config file into v and returns the validated
// result. A missing config file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	var err error
	if cfg.Sandbox.Path, err = homedir.Expand(cfg.Sandbox.Path); err != nil {
		return nil, fmt.Errorf("config: sandbox.path: %w", err)
	}
	if cfg.Log.Path, err = homedir.Expand(cfg.Log.Path); err != nil {
		return nil, fmt.Errorf("config: log.path: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Current returns the selected network.
func (c *Config) Current() (Network, error) {
	n, ok := c.Networks[c.Network]
	if !ok {
		return Network{}, fmt.Errorf("config: unknown network %q (known: %s)", c.Network, strings.Join(c.NetworkNames(), ", "))
	}
	return n, nil
}

// IsSandbox reports whether the in-process chain is selected.
func (c *Config) IsSandbox() bool {
	return c.Network == SandboxNetwork
}

// NetworkNames lists configured networks in sorted order.
func (c *Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
