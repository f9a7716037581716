package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	homedir.DisableCache = true
	t.Setenv("HOME", dir)
	t.Setenv("CHAINJOURNAL_CONFIG_PATH", dir)
	return dir
}

func TestDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, SandboxNetwork, cfg.Network)
	assert.True(t, cfg.IsSandbox())
	assert.Equal(t, 60*time.Second, cfg.Confirm.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Confirm.Interval)
	assert.Equal(t, 5*time.Second, cfg.Confirm.MaxInterval)
	assert.Equal(t, filepath.Join(home, ".chainjournal", "sandbox"), cfg.Sandbox.Path)
	assert.Equal(t, []string{"devnet", "localnet", "mainnet", "sandbox", "testnet"}, cfg.NetworkNames())

	n, err := cfg.Current()
	require.NoError(t, err)
	assert.Empty(t, n.RPC)
}

func TestConfigFileOverrides(t *testing.T) {
	dir := isolate(t)
	yaml := `network: testnet
networks:
  testnet:
    package: "0xabc"
confirm:
  timeout: 10s
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".chainjournal.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(New())
	require.NoError(t, err)

	n, err := cfg.Current()
	require.NoError(t, err)
	assert.Equal(t, "0xabc", n.Package)
	assert.Equal(t, "https://fullnode.testnet.sui.io:443", n.RPC)
	assert.Equal(t, 10*time.Second, cfg.Confirm.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CHAINJOURNAL_NETWORK", "devnet")
	t.Setenv("CHAINJOURNAL_CONFIRM_INTERVAL", "250ms")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "devnet", cfg.Network)
	assert.Equal(t, 250*time.Millisecond, cfg.Confirm.Interval)
}

func TestFlagStyleOverride(t *testing.T) {
	isolate(t)
	v := New()
	v.Set("account", "0xa11ce")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "0xa11ce", cfg.Account)
}

func TestUnknownNetwork(t *testing.T) {
	isolate(t)
	v := New()
	v.Set("network", "moonnet")

	cfg, err := Load(v)
	require.NoError(t, err)
	_, err = cfg.Current()
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	isolate(t)
	v := New()
	v.Set("log.level", "chatty")

	_, err := Load(v)
	assert.Error(t, err)

	v = New()
	v.Set("confirm.max_interval", "1ms")
	_, err = Load(v)
	assert.Error(t, err)
}
