//go:build linux

package power

import (
	"context"
	"fmt"

	dbus "github.com/godbus/dbus/v5"
)

const (
	upowerService     = "org.freedesktop.UPower"
	displayDevicePath = "/org/freedesktop/UPower/devices/DisplayDevice"
	upowerDeviceIface = "org.freedesktop.UPower.Device"

	powerSaverProfile = "power-saver"
)

// 新旧两个 power-profiles-daemon 总线名
var profileServices = []struct {
	service string
	path    dbus.ObjectPath
	iface   string
}{
	{"org.freedesktop.UPower.PowerProfiles", "/org/freedesktop/UPower/PowerProfiles", "org.freedesktop.UPower.PowerProfiles"},
	{"net.hadess.PowerProfiles", "/net/hadess/PowerProfiles", "net.hadess.PowerProfiles"},
}

// SystemSource 通过系统总线读取 UPower 与 power-profiles-daemon
type SystemSource struct {
	bus *dbus.Conn
}

// NewSystemSource 连接系统总线
func NewSystemSource() (*SystemSource, error) {
	bus, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("power: connect system bus: %w", err)
	}
	return &SystemSource{bus: bus}, nil
}

// BatteryPercent 读取 DisplayDevice.Percentage，没有电池时返回 ErrUnavailable
func (s *SystemSource) BatteryPercent(ctx context.Context) (float64, error) {
	obj := s.bus.Object(upowerService, displayDevicePath)

	var present bool
	if err := getProperty(ctx, obj, upowerDeviceIface, "IsPresent", &present); err != nil {
		return 0, err
	}
	if !present {
		return 0, ErrUnavailable
	}

	var percent float64
	if err := getProperty(ctx, obj, upowerDeviceIface, "Percentage", &percent); err != nil {
		return 0, err
	}
	return percent, nil
}

// PowerSaveMode 当前电源配置是否为 power-saver
func (s *SystemSource) PowerSaveMode(ctx context.Context) (bool, error) {
	var lastErr error
	for _, svc := range profileServices {
		var profile string
		err := getProperty(ctx, s.bus.Object(svc.service, svc.path), svc.iface, "ActiveProfile", &profile)
		if err == nil {
			return profile == powerSaverProfile, nil
		}
		lastErr = err
	}
	return false, fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

func getProperty(ctx context.Context, obj dbus.BusObject, iface, name string, out any) error {
	call := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, iface, name)
	if call.Err != nil {
		return fmt.Errorf("power: get %s.%s: %w", iface, name, call.Err)
	}
	var v dbus.Variant
	if err := call.Store(&v); err != nil {
		return fmt.Errorf("power: decode %s.%s: %w", iface, name, err)
	}
	return v.Store(out)
}
