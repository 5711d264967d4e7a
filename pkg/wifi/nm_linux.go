//go:build linux

package wifi

import (
	"context"
	"fmt"

	dbus "github.com/godbus/dbus/v5"
	"github.com/lk2023060901/aagateway/pkg/logger"
)

const (
	nmService        = "org.freedesktop.NetworkManager"
	nmPath           = dbus.ObjectPath("/org/freedesktop/NetworkManager")
	nmIface          = "org.freedesktop.NetworkManager"
	nmDeviceIface    = "org.freedesktop.NetworkManager.Device"
	nmActiveIface    = "org.freedesktop.NetworkManager.Connection.Active"
	nmSettingsIface  = "org.freedesktop.NetworkManager.Settings.Connection"
	nmIP4ConfigIface = "org.freedesktop.NetworkManager.IP4Config"
	propsIface       = "org.freedesktop.DBus.Properties"
)

// activation 一次 AddAndActivateConnection 的结果
type activation struct {
	device     dbus.ObjectPath
	connection dbus.ObjectPath
	active     dbus.ObjectPath
}

// nmClient NetworkManager 的最小调用集合
type nmClient struct {
	bus    *dbus.Conn
	logger logger.Logger
}

func newNMClient(l logger.Logger) (*nmClient, error) {
	bus, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("wifi: connect system bus: %w", err)
	}
	return &nmClient{bus: bus, logger: l}, nil
}

func (c *nmClient) getProperty(ctx context.Context, path dbus.ObjectPath, iface, name string) (dbus.Variant, error) {
	var v dbus.Variant
	call := c.bus.Object(nmService, path).CallWithContext(ctx, propsIface+".Get", 0, iface, name)
	if call.Err != nil {
		return v, fmt.Errorf("wifi: get %s.%s: %w", iface, name, call.Err)
	}
	err := call.Store(&v)
	return v, err
}

func (c *nmClient) deviceByInterface(ctx context.Context, name string) (dbus.ObjectPath, error) {
	if name == "" {
		return "/", nil
	}
	var dev dbus.ObjectPath
	call := c.bus.Object(nmService, nmPath).CallWithContext(ctx, nmIface+".GetDeviceByIpIface", 0, name)
	if call.Err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNoDevice, name, call.Err)
	}
	if err := call.Store(&dev); err != nil {
		return "", err
	}
	return dev, nil
}

// activate 新建连接档案并激活，等待状态变为 activated
func (c *nmClient) activate(ctx context.Context, iface string, settings connectionSettings) (*activation, error) {
	dev, err := c.deviceByInterface(ctx, iface)
	if err != nil {
		return nil, err
	}

	act := &activation{device: dev}
	call := c.bus.Object(nmService, nmPath).CallWithContext(ctx, nmIface+".AddAndActivateConnection", 0,
		settings, dev, dbus.ObjectPath("/"))
	if call.Err != nil {
		return nil, fmt.Errorf("%w: %w", ErrActivationFailed, call.Err)
	}
	if err := call.Store(&act.connection, &act.active); err != nil {
		return nil, err
	}
	c.logger.Debug("connection added", "connection", act.connection, "active", act.active)

	states, stop, err := c.watchState(act.active)
	if err != nil {
		c.deactivate(act)
		return nil, err
	}
	defer stop()

	if err := c.waitActivated(ctx, act.active, states); err != nil {
		c.deactivate(act)
		return nil, err
	}
	if act.device == "/" {
		if v, err := c.getProperty(ctx, act.active, nmActiveIface, "Devices"); err == nil {
			if devs, ok := v.Value().([]dbus.ObjectPath); ok && len(devs) > 0 {
				act.device = devs[0]
			}
		}
	}
	return act, nil
}

// watchState 订阅活动连接的 StateChanged 信号
func (c *nmClient) watchState(active dbus.ObjectPath) (<-chan uint32, func(), error) {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(active),
		dbus.WithMatchInterface(nmActiveIface),
		dbus.WithMatchMember("StateChanged"),
	}
	if err := c.bus.AddMatchSignal(opts...); err != nil {
		return nil, nil, fmt.Errorf("wifi: subscribe state: %w", err)
	}

	sigCh := make(chan *dbus.Signal, 16)
	c.bus.Signal(sigCh)

	out := make(chan uint32, 16)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case sig, ok := <-sigCh:
				if !ok {
					return
				}
				if sig == nil || sig.Path != active || len(sig.Body) == 0 {
					continue
				}
				if state, ok := sig.Body[0].(uint32); ok {
					select {
					case out <- state:
					case <-done:
						return
					}
				}
			}
		}
	}()

	stop := func() {
		c.bus.RemoveSignal(sigCh)
		_ = c.bus.RemoveMatchSignal(opts...)
		close(done)
	}
	return out, stop, nil
}

func (c *nmClient) waitActivated(ctx context.Context, active dbus.ObjectPath, states <-chan uint32) error {
	// 订阅之前可能已经激活
	if v, err := c.getProperty(ctx, active, nmActiveIface, "State"); err == nil {
		if state, ok := v.Value().(uint32); ok {
			if done, err := activationResult(state); done {
				return err
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrActivationTimeout, context.Cause(ctx))
		case state, ok := <-states:
			if !ok {
				return ErrActivationFailed
			}
			c.logger.Debug("connection state", "active", active, "state", activeStateName(state))
			if done, err := activationResult(state); done {
				return err
			}
		}
	}
}

func activationResult(state uint32) (bool, error) {
	switch state {
	case activeStateActivated:
		return true, nil
	case activeStateDeactivating, activeStateDeactivated:
		return true, fmt.Errorf("%w: %s", ErrActivationFailed, activeStateName(state))
	default:
		return false, nil
	}
}

// ip4Config 返回设备当前的 IP4Config 对象路径
func (c *nmClient) ip4Config(ctx context.Context, dev dbus.ObjectPath) (dbus.ObjectPath, error) {
	v, err := c.getProperty(ctx, dev, nmDeviceIface, "Ip4Config")
	if err != nil {
		return "", err
	}
	path, ok := v.Value().(dbus.ObjectPath)
	if !ok || path == "/" || path == "" {
		return "", ErrNoAddress
	}
	return path, nil
}

func (c *nmClient) address(ctx context.Context, dev dbus.ObjectPath) (string, error) {
	cfg, err := c.ip4Config(ctx, dev)
	if err != nil {
		return "", err
	}
	v, err := c.getProperty(ctx, cfg, nmIP4ConfigIface, "AddressData")
	if err != nil {
		return "", err
	}
	data, _ := v.Value().([]map[string]dbus.Variant)
	if addr := firstAddress(data); addr != "" {
		return addr, nil
	}
	return "", ErrNoAddress
}

func (c *nmClient) gateway(ctx context.Context, dev dbus.ObjectPath) (string, error) {
	cfg, err := c.ip4Config(ctx, dev)
	if err != nil {
		return "", err
	}
	v, err := c.getProperty(ctx, cfg, nmIP4ConfigIface, "Gateway")
	if err != nil {
		return "", err
	}
	if gw, ok := v.Value().(string); ok && gw != "" {
		return gw, nil
	}
	return "", ErrNoAddress
}

func (c *nmClient) hwAddress(ctx context.Context, dev dbus.ObjectPath) string {
	v, err := c.getProperty(ctx, dev, nmDeviceIface, "HwAddress")
	if err != nil {
		return ""
	}
	s, _ := v.Value().(string)
	return s
}

// deactivate 断开并删除连接档案，错误只记录
func (c *nmClient) deactivate(act *activation) {
	if act.active != "" {
		if err := c.bus.Object(nmService, nmPath).Call(nmIface+".DeactivateConnection", 0, act.active).Err; err != nil {
			c.logger.Debug("deactivate connection", "active", act.active, "error", err)
		}
	}
	if act.connection != "" {
		if err := c.bus.Object(nmService, act.connection).Call(nmSettingsIface+".Delete", 0).Err; err != nil {
			c.logger.Warn("delete connection", "connection", act.connection, "error", err)
		}
	}
}

func (c *nmClient) close() error {
	return c.bus.Close()
}
