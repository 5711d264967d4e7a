//go:build !linux

package wifi

import (
	"context"

	"github.com/lk2023060901/aagateway/pkg/bridge"
	"github.com/lk2023060901/aagateway/pkg/logger"
)

// Hotspot 非 Linux 平台不支持
type Hotspot struct{}

func NewHotspot(cfg *Config, _ logger.Logger) (*Hotspot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Hotspot{}, nil
}

func (*Hotspot) BringUp(context.Context) (*bridge.LinkInfo, error) { return nil, ErrUnsupported }

func (*Hotspot) TearDown() error { return nil }

// Station 非 Linux 平台不支持
type Station struct{}

func NewStation(cfg *Config, _ logger.Logger) (*Station, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Station{}, nil
}

func (*Station) BringUp(context.Context) (*bridge.LinkInfo, error) { return nil, ErrUnsupported }

func (*Station) TearDown() error { return nil }

func (*Station) Lost() <-chan struct{} { return nil }
