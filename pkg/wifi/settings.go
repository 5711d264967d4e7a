package wifi

import (
	"net"

	dbus "github.com/godbus/dbus/v5"
)

// NetworkManager 连接激活状态
const (
	activeStateUnknown      uint32 = 0
	activeStateActivating   uint32 = 1
	activeStateActivated    uint32 = 2
	activeStateDeactivating uint32 = 3
	activeStateDeactivated  uint32 = 4
)

type connectionSettings map[string]map[string]dbus.Variant

func activeStateName(state uint32) string {
	switch state {
	case activeStateActivating:
		return "activating"
	case activeStateActivated:
		return "activated"
	case activeStateDeactivating:
		return "deactivating"
	case activeStateDeactivated:
		return "deactivated"
	default:
		return "unknown"
	}
}

func baseSettings(cfg *Config) connectionSettings {
	s := connectionSettings{
		"connection": {
			"id":          dbus.MakeVariant(cfg.ConnectionName),
			"type":        dbus.MakeVariant("802-11-wireless"),
			"autoconnect": dbus.MakeVariant(false),
		},
		"802-11-wireless": {
			"ssid": dbus.MakeVariant([]byte(cfg.SSID)),
		},
		"802-11-wireless-security": {
			"key-mgmt": dbus.MakeVariant("wpa-psk"),
			"psk":      dbus.MakeVariant(cfg.Passphrase),
		},
		"ipv6": {
			"method": dbus.MakeVariant("ignore"),
		},
	}
	if cfg.Interface != "" {
		s["connection"]["interface-name"] = dbus.MakeVariant(cfg.Interface)
	}
	return s
}

// hotspotSettings AP 模式，ipv4 shared 由 NetworkManager 提供 DHCP
func hotspotSettings(cfg *Config) connectionSettings {
	s := baseSettings(cfg)
	s["802-11-wireless"]["mode"] = dbus.MakeVariant("ap")
	if cfg.Band != "" {
		s["802-11-wireless"]["band"] = dbus.MakeVariant(cfg.Band)
	}
	s["802-11-wireless-security"]["proto"] = dbus.MakeVariant([]string{"rsn"})
	s["802-11-wireless-security"]["pairwise"] = dbus.MakeVariant([]string{"ccmp"})
	s["802-11-wireless-security"]["group"] = dbus.MakeVariant([]string{"ccmp"})
	s["ipv4"] = map[string]dbus.Variant{"method": dbus.MakeVariant("shared")}
	return s
}

// stationSettings 客户端模式，不把热点当作默认路由
func stationSettings(cfg *Config) connectionSettings {
	s := baseSettings(cfg)
	s["802-11-wireless"]["mode"] = dbus.MakeVariant("infrastructure")
	if cfg.BSSID != "" {
		s["802-11-wireless"]["bssid"] = dbus.MakeVariant(macBytes(cfg.BSSID))
	}
	s["ipv4"] = map[string]dbus.Variant{
		"method":        dbus.MakeVariant("auto"),
		"never-default": dbus.MakeVariant(true),
	}
	return s
}

// macBytes MAC 地址转为 6 字节，非法时返回 nil
func macBytes(mac string) []byte {
	hw, err := net.ParseMAC(mac)
	if err != nil || len(hw) != 6 {
		return nil
	}
	return []byte(hw)
}

// firstAddress 取 Ip4Config.AddressData 中的第一个地址
func firstAddress(data []map[string]dbus.Variant) string {
	for _, entry := range data {
		v, ok := entry["address"]
		if !ok {
			continue
		}
		if addr, ok := v.Value().(string); ok && addr != "" {
			return addr
		}
	}
	return ""
}
