//go:build !linux

package power

import "context"

// SystemSource 非 Linux 平台上所有信息均不可用
type SystemSource struct{}

// NewSystemSource 创建来源
func NewSystemSource() (*SystemSource, error) {
	return &SystemSource{}, nil
}

func (*SystemSource) BatteryPercent(context.Context) (float64, error) {
	return 0, ErrUnavailable
}

func (*SystemSource) PowerSaveMode(context.Context) (bool, error) {
	return false, ErrUnavailable
}
