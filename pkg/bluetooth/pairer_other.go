//go:build !linux

package bluetooth

import (
	"context"
	"time"

	"github.com/lk2023060901/aagateway/pkg/bridge"
	"github.com/lk2023060901/aagateway/pkg/logger"
)

// Pairer 非 Linux 平台不支持 BlueZ
type Pairer struct{}

// NewPairer 创建 Pairer
func NewPairer(*Config, logger.Logger) *Pairer {
	return &Pairer{}
}

// Connect 始终返回 ErrUnsupported
func (*Pairer) Connect(context.Context, string, time.Duration, bridge.LinkInfo) error {
	return ErrUnsupported
}

// Close 无操作
func (*Pairer) Close() error { return nil }
