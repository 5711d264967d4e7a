//go:build linux

package wifi

import (
	"context"
	"errors"
	"sync"

	"github.com/lk2023060901/aagateway/pkg/bridge"
	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/wifiproto"
)

var _ bridge.LinkProvider = (*Hotspot)(nil)

// Hotspot 网关侧热点
type Hotspot struct {
	config *Config
	logger logger.Logger

	mu     sync.Mutex
	client *nmClient
	act    *activation
}

// NewHotspot 创建热点，配置非法时返回错误
func NewHotspot(cfg *Config, l logger.Logger) (*Hotspot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Interface == "" {
		return nil, ErrNoDevice
	}
	if l == nil {
		l = logger.NewNoop()
	}
	return &Hotspot{config: cfg, logger: l.Named("wifi.hotspot")}, nil
}

// BringUp 激活热点并返回网关地址与连接参数
func (h *Hotspot) BringUp(ctx context.Context) (*bridge.LinkInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.act != nil {
		return nil, errors.New("wifi: hotspot already up")
	}

	client, err := newNMClient(h.logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.ActivationTimeout)
	defer cancel()

	act, err := client.activate(ctx, h.config.Interface, hotspotSettings(h.config))
	if err != nil {
		_ = client.close()
		return nil, err
	}
	addr, err := client.address(ctx, act.device)
	if err != nil {
		client.deactivate(act)
		_ = client.close()
		return nil, err
	}

	h.client, h.act = client, act
	info := &bridge.LinkInfo{
		Address:         addr,
		SSID:            h.config.SSID,
		Passphrase:      h.config.Passphrase,
		BSSID:           client.hwAddress(ctx, act.device),
		SecurityMode:    wifiproto.SecurityWPA2Personal,
		AccessPointType: wifiproto.AccessPointDynamic,
	}
	h.logger.Info("hotspot up", "interface", h.config.Interface, "ssid", info.SSID, "address", info.Address, "bssid", info.BSSID)
	return info, nil
}

// TearDown 停止热点并删除连接档案
func (h *Hotspot) TearDown() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.act == nil {
		return nil
	}
	h.client.deactivate(h.act)
	err := h.client.close()
	h.client, h.act = nil, nil
	h.logger.Info("hotspot down", "interface", h.config.Interface)
	return err
}
