//go:build linux

package bluetooth

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	dbus "github.com/godbus/dbus/v5"
	"github.com/lk2023060901/aagateway/pkg/bridge"
	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/wifiproto"
)

const (
	bluezService        = "org.bluez"
	profileIface        = "org.bluez.Profile1"
	profileManagerIface = "org.bluez.ProfileManager1"
	deviceIface         = "org.bluez.Device1"
	propsIface          = "org.freedesktop.DBus.Properties"
)

var pathCounter atomic.Uint64

var _ bridge.RadioPairing = (*Pairer)(nil)

// listenerProfile 实现 org.bluez.Profile1，把连入的 RFCOMM fd 交给等待方
type listenerProfile struct {
	conns chan *os.File
}

func (p *listenerProfile) Release() *dbus.Error { return nil }

func (p *listenerProfile) Cancel() *dbus.Error { return nil }

func (p *listenerProfile) RequestDisconnection(dbus.ObjectPath) *dbus.Error { return nil }

// NewConnection 只接收一个连接，其余立即关闭并拒绝
func (p *listenerProfile) NewConnection(_ dbus.ObjectPath, fd dbus.UnixFD, _ map[string]dbus.Variant) *dbus.Error {
	f := os.NewFile(uintptr(fd), "rfcomm")
	select {
	case p.conns <- f:
		return nil
	default:
		_ = f.Close()
		return &dbus.Error{Name: "org.bluez.Error.Rejected", Body: []any{"busy"}}
	}
}

// Pairer 基于 BlueZ 的 bridge.RadioPairing 实现
type Pairer struct {
	config *Config
	logger logger.Logger

	mu  sync.Mutex
	bus *dbus.Conn
}

// NewPairer 创建 Pairer，系统总线在首次 Connect 时建立
func NewPairer(cfg *Config, l logger.Logger) *Pairer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if l == nil {
		l = logger.NewNoop()
	}
	return &Pairer{config: cfg, logger: l.Named("bluetooth")}
}

func (p *Pairer) ensureBus() (*dbus.Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bus != nil {
		return p.bus, nil
	}
	bus, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("bluetooth: connect system bus: %w", err)
	}
	p.bus = bus
	return bus, nil
}

// Connect 注册监听 profile，唤起对端并完成一次热点参数交换
//
// timeout 只约束唤起对端的重试；对端连入后的交换受 ctx 约束。
func (p *Pairer) Connect(ctx context.Context, peerAddress string, timeout time.Duration, link bridge.LinkInfo) error {
	devPath, err := devicePath(p.config.Adapter, peerAddress)
	if err != nil {
		return err
	}
	bus, err := p.ensureBus()
	if err != nil {
		return err
	}

	var cleanup []func()
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()

	profile := &listenerProfile{conns: make(chan *os.File, 1)}
	path := dbus.ObjectPath("/org/aagateway/bluetooth/listener" + strconv.FormatUint(pathCounter.Add(1), 10))
	if err := bus.Export(profile, path, profileIface); err != nil {
		return fmt.Errorf("bluetooth: export profile: %w", err)
	}
	cleanup = append(cleanup, func() { _ = bus.Export(nil, path, profileIface) })

	opts := map[string]dbus.Variant{
		"Name": dbus.MakeVariant(p.config.ServiceName),
		"Role": dbus.MakeVariant("server"),
	}
	if p.config.Channel != 0 {
		opts["Channel"] = dbus.MakeVariant(p.config.Channel)
	}
	manager := bus.Object(bluezService, "/org/bluez")
	if call := manager.CallWithContext(ctx, profileManagerIface+".RegisterProfile", 0, path, ListenerUUID.String(), opts); call.Err != nil {
		return fmt.Errorf("bluetooth: register listener profile: %w", call.Err)
	}
	cleanup = append(cleanup, func() {
		_ = manager.Call(profileManagerIface+".UnregisterProfile", 0, path).Err
	})

	device := bus.Object(bluezService, dbus.ObjectPath(devPath))
	if err := p.ensurePaired(ctx, device); err != nil {
		return err
	}

	attempts, err := retry(ctx, p.config.RetryInterval, timeout, func() error {
		err := device.CallWithContext(ctx, deviceIface+".ConnectProfile", 0, p.config.ConnectUUID).Err
		if err != nil {
			p.logger.Debug("connect profile failed", "peer", peerAddress, "error", err)
		}
		return err
	})
	if err != nil {
		return err
	}
	p.logger.Info("peer connected", "peer", peerAddress, "attempts", attempts)

	var conn *os.File
	select {
	case conn = <-profile.conns:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	start := &wifiproto.StartRequest{IPAddress: link.Address, Port: p.config.DataPort}
	if err := Exchange(conn, start, link.InfoResponse(), p.logger); err != nil {
		return err
	}
	p.logger.Info("wifi parameters delivered", "peer", peerAddress, "ssid", link.SSID)
	return nil
}

func (p *Pairer) ensurePaired(ctx context.Context, device dbus.BusObject) error {
	var paired dbus.Variant
	call := device.CallWithContext(ctx, propsIface+".Get", 0, deviceIface, "Paired")
	if call.Err != nil {
		return fmt.Errorf("bluetooth: query device: %w", call.Err)
	}
	if err := call.Store(&paired); err != nil {
		return fmt.Errorf("bluetooth: decode paired: %w", err)
	}
	if ok, _ := paired.Value().(bool); ok {
		return nil
	}
	if err := device.CallWithContext(ctx, deviceIface+".Pair", 0).Err; err != nil {
		return fmt.Errorf("bluetooth: pair: %w", err)
	}
	return nil
}

// Close 关闭系统总线连接
func (p *Pairer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bus == nil {
		return nil
	}
	err := p.bus.Close()
	p.bus = nil
	return err
}
