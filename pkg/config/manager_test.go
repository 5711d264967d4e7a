package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type linkTestConfig struct {
	Bridge struct {
		PeerAddress      string        `mapstructure:"peer_address"`
		HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
		DataPort         int           `mapstructure:"data_port"`
		UsbFallback      bool          `mapstructure:"usb_fallback"`
	} `mapstructure:"bridge"`
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestManagerLoadFile(t *testing.T) {
	path := writeConfigFile(t, `
bridge:
  peer_address: "AA:BB:CC:DD:EE:FF"
  handshake_timeout: 15s
  data_port: 5288
  usb_fallback: true
`)

	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(path))
	assert.Equal(t, path, mgr.ConfigFile())

	var cfg linkTestConfig
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", cfg.Bridge.PeerAddress)
	assert.Equal(t, 15*time.Second, cfg.Bridge.HandshakeTimeout)
	assert.Equal(t, 5288, cfg.Bridge.DataPort)
	assert.True(t, cfg.Bridge.UsbFallback)
	assert.True(t, mgr.IsSet("bridge.data_port"))
	assert.False(t, mgr.IsSet("bridge.control_port"))
}

func TestManagerUnmarshalKey(t *testing.T) {
	path := writeConfigFile(t, `
bridge:
  handshake_timeout: 1m
`)
	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(path))

	var timeout time.Duration
	require.NoError(t, mgr.UnmarshalKey("bridge.handshake_timeout", &timeout))
	assert.Equal(t, time.Minute, timeout)
}

func TestManagerEnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
bridge:
  data_port: 5288
`)
	t.Setenv("AAGWTEST_BRIDGE_DATA_PORT", "6000")

	mgr := NewManager(WithEnvPrefix("AAGWTEST"))
	require.NoError(t, mgr.LoadFile(path))

	var cfg linkTestConfig
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Equal(t, 6000, cfg.Bridge.DataPort)
}

func TestManagerDefaults(t *testing.T) {
	path := writeConfigFile(t, "bridge: {}\n")
	mgr := NewManager(WithDefaults(map[string]any{"bridge.data_port": 5288}))
	require.NoError(t, mgr.LoadFile(path))

	var cfg linkTestConfig
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Equal(t, 5288, cfg.Bridge.DataPort)
}

func TestManagerLoadMissingFile(t *testing.T) {
	mgr := NewManager()
	assert.Error(t, mgr.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestManagerWatchRequiresFile(t *testing.T) {
	mgr := NewManager()
	assert.ErrorIs(t, mgr.Watch(func() {}), ErrNotLoaded)
}
