package power

import (
	"context"
	"errors"

	"github.com/lk2023060901/aagateway/pkg/logger"
)

// ErrUnavailable 平台不提供该项信息
var ErrUnavailable = errors.New("power: information unavailable")

// Source 电源状态来源
type Source interface {
	// BatteryPercent 当前电量 0-100
	BatteryPercent(ctx context.Context) (float64, error)
	// PowerSaveMode 省电模式是否开启
	PowerSaveMode(ctx context.Context) (bool, error)
}

// Policy 拒绝策略
type Policy struct {
	// BatteryFloor 电量下限（百分比），0 表示不检查
	BatteryFloor int `mapstructure:"battery_floor" json:"battery_floor" validate:"gte=0,lte=100"`

	// ConnectInPowerSave 省电模式下仍允许连接
	ConnectInPowerSave bool `mapstructure:"connect_in_power_save" json:"connect_in_power_save"`

	// RefuseLocally 原因非零时不启动无线链路，直接结束会话
	RefuseLocally bool `mapstructure:"refuse_locally" json:"refuse_locally"`
}

// Evaluate 计算拒绝原因
// 读取失败的项按“未知”处理：电量视为 100，省电模式视为关闭
func (p *Policy) Evaluate(ctx context.Context, src Source, l logger.Logger) RejectionReason {
	if l == nil {
		l = logger.NewNoop()
	}

	var reason RejectionReason
	if !p.ConnectInPowerSave {
		saving, err := src.PowerSaveMode(ctx)
		if err != nil {
			l.Debug("power save mode unknown", "error", err)
		} else if saving {
			reason |= PowerSaveMode
		}
	}

	if p.BatteryFloor > 0 {
		percent, err := src.BatteryPercent(ctx)
		if err != nil {
			l.Debug("battery level unknown", "error", err)
			percent = 100
		}
		if percent < float64(p.BatteryFloor) {
			reason |= InsufficientBattery
		}
	}
	return reason
}

// StaticSource 固定值来源，用于不提供电源信息的平台和测试
type StaticSource struct {
	Percent float64
	Saving  bool
	Err     error
}

func (s StaticSource) BatteryPercent(context.Context) (float64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Percent, nil
}

func (s StaticSource) PowerSaveMode(context.Context) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	return s.Saving, nil
}
