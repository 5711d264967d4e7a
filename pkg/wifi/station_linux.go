//go:build linux

package wifi

import (
	"context"
	"errors"
	"sync"

	"github.com/lk2023060901/aagateway/pkg/bridge"
	"github.com/lk2023060901/aagateway/pkg/logger"
)

var (
	_ bridge.LinkProvider = (*Station)(nil)
	_ bridge.LinkWatcher  = (*Station)(nil)
)

// Station 客户端侧加入网关热点
type Station struct {
	config *Config
	logger logger.Logger

	mu     sync.Mutex
	client *nmClient
	act    *activation
	lost   chan struct{}
	stop   func()
}

// NewStation 创建 Station，配置非法时返回错误
func NewStation(cfg *Config, l logger.Logger) (*Station, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if l == nil {
		l = logger.NewNoop()
	}
	return &Station{config: cfg, logger: l.Named("wifi.station"), lost: make(chan struct{})}, nil
}

// BringUp 加入热点，返回 DHCP 网关地址
func (s *Station) BringUp(ctx context.Context) (*bridge.LinkInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.act != nil {
		return nil, errors.New("wifi: station already connected")
	}

	client, err := newNMClient(s.logger)
	if err != nil {
		return nil, err
	}

	actx, cancel := context.WithTimeout(ctx, s.config.ActivationTimeout)
	defer cancel()

	act, err := client.activate(actx, s.config.Interface, stationSettings(s.config))
	if err != nil {
		_ = client.close()
		return nil, err
	}
	gw, err := client.gateway(actx, act.device)
	if err != nil {
		client.deactivate(act)
		_ = client.close()
		return nil, err
	}

	states, stop, err := client.watchState(act.active)
	if err != nil {
		client.deactivate(act)
		_ = client.close()
		return nil, err
	}

	s.client, s.act, s.stop = client, act, stop
	s.lost = make(chan struct{})
	go s.watch(states, s.lost)

	s.logger.Info("joined gateway wifi", "ssid", s.config.SSID, "gateway", gw)
	return &bridge.LinkInfo{Address: gw, SSID: s.config.SSID, BSSID: s.config.BSSID}, nil
}

// watch 连接离开 activated 状态时关闭 lost
func (s *Station) watch(states <-chan uint32, lost chan struct{}) {
	for state := range states {
		if state == activeStateDeactivating || state == activeStateDeactivated {
			s.logger.Warn("wifi connection lost", "state", activeStateName(state))
			close(lost)
			return
		}
	}
}

// Lost 当前连接丢失时关闭
func (s *Station) Lost() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lost
}

// TearDown 断开热点并删除连接档案
func (s *Station) TearDown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.act == nil {
		return nil
	}
	s.stop()
	s.client.deactivate(s.act)
	err := s.client.close()
	s.client, s.act, s.stop = nil, nil, nil
	s.logger.Info("left gateway wifi", "ssid", s.config.SSID)
	return err
}
