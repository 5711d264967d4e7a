package wifi

import (
	"testing"

	dbus "github.com/godbus/dbus/v5"
	"github.com/lk2023060901/aagateway/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.SSID = "aagateway"
	cfg.Passphrase = "correct-horse"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing ssid", func(c *Config) { c.SSID = "" }, true},
		{"short passphrase", func(c *Config) { c.Passphrase = "short" }, true},
		{"bad bssid", func(c *Config) { c.BSSID = "nope" }, true},
		{"good bssid", func(c *Config) { c.BSSID = "02:00:00:00:00:01" }, false},
		{"bad band", func(c *Config) { c.Band = "6ghz" }, true},
		{"zero activation timeout", func(c *Config) { c.ActivationTimeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, config.ErrValidationFailed)
				return
			}
			assert.NoError(t, err)
		})
	}

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), config.ErrNilConfig)
}

func TestHotspotSettings(t *testing.T) {
	s := hotspotSettings(validConfig())

	assert.Equal(t, "aagateway", s["connection"]["id"].Value())
	assert.Equal(t, "wlan0", s["connection"]["interface-name"].Value())
	assert.Equal(t, []byte("aagateway"), s["802-11-wireless"]["ssid"].Value())
	assert.Equal(t, "ap", s["802-11-wireless"]["mode"].Value())
	assert.Equal(t, "bg", s["802-11-wireless"]["band"].Value())
	assert.Equal(t, "wpa-psk", s["802-11-wireless-security"]["key-mgmt"].Value())
	assert.Equal(t, "correct-horse", s["802-11-wireless-security"]["psk"].Value())
	assert.Equal(t, "shared", s["ipv4"]["method"].Value())
}

func TestStationSettings(t *testing.T) {
	cfg := validConfig()
	cfg.Interface = ""
	cfg.BSSID = "02:00:00:aa:bb:cc"
	s := stationSettings(cfg)

	_, hasIface := s["connection"]["interface-name"]
	assert.False(t, hasIface)
	assert.Equal(t, "infrastructure", s["802-11-wireless"]["mode"].Value())
	assert.Equal(t, []byte{0x02, 0, 0, 0xaa, 0xbb, 0xcc}, s["802-11-wireless"]["bssid"].Value())
	assert.Equal(t, "auto", s["ipv4"]["method"].Value())
	assert.Equal(t, true, s["ipv4"]["never-default"].Value())
}

func TestMacBytes(t *testing.T) {
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, macBytes("01:02:03:04:05:06"))
	assert.Nil(t, macBytes("01:02:03"))
	assert.Nil(t, macBytes("zz:02:03:04:05:06"))
}

func TestFirstAddress(t *testing.T) {
	data := []map[string]dbus.Variant{
		{"prefix": dbus.MakeVariant(uint32(24))},
		{"address": dbus.MakeVariant("192.168.43.1"), "prefix": dbus.MakeVariant(uint32(24))},
	}
	assert.Equal(t, "192.168.43.1", firstAddress(data))
	assert.Empty(t, firstAddress(nil))
}

func TestActiveStateName(t *testing.T) {
	require.Equal(t, "activated", activeStateName(activeStateActivated))
	assert.Equal(t, "deactivated", activeStateName(activeStateDeactivated))
	assert.Equal(t, "unknown", activeStateName(activeStateUnknown))
	assert.Equal(t, "unknown", activeStateName(42))
}
