// Package bluetooth 通过 BlueZ 唤起对端并在 RFCOMM 上下发热点参数
//
// 网关在热点就绪后:
//  1. 注册 AA 监听 profile，等待对端连入;
//  2. 以固定间隔重试 Device1.ConnectProfile 唤起对端，直到成功或超时;
//  3. 对端连入后发送 StartRequest，收到 StartResponse 再发送热点参数。
package bluetooth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	// PairingUUID 唤起对端无线投屏服务的 profile
	PairingUUID = uuid.MustParse("2b12becb-c5c0-4370-b19c-0917c72e852c")
	// ListenerUUID 对端连回网关的 AA 监听 profile
	ListenerUUID = uuid.MustParse("4de17a00-52cb-11e6-bdf4-0800200c9a66")
	// A2DPSourceUUID 部分车机需要先建立的音频源 profile
	A2DPSourceUUID = uuid.MustParse("00001112-0000-1000-8000-00805f9b34fb")
)

var (
	ErrUnsupported        = errors.New("bluetooth: not supported on this platform")
	ErrInvalidAddress     = errors.New("bluetooth: invalid device address")
	ErrConnectTimeout     = errors.New("bluetooth: connect timed out")
	ErrUnexpectedResponse = errors.New("bluetooth: unexpected response")
)

// Config 蓝牙配置
type Config struct {
	// BlueZ 适配器对象路径
	Adapter string `mapstructure:"adapter" json:"adapter"`

	// 注册 AA 监听 profile 时使用的服务名
	ServiceName string `mapstructure:"service_name" json:"service_name"`

	// RFCOMM 通道，0 表示由 BlueZ 分配
	Channel uint16 `mapstructure:"channel" json:"channel"`

	// 唤起对端时使用的 profile，默认 PairingUUID
	ConnectUUID string `mapstructure:"connect_uuid" json:"connect_uuid" validate:"omitempty,uuid"`

	// ConnectProfile 重试间隔
	RetryInterval time.Duration `mapstructure:"retry_interval" json:"retry_interval" validate:"gt=0"`

	// StartRequest 中告知对端的数据端口
	DataPort uint32 `mapstructure:"data_port" json:"data_port"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Adapter:       "/org/bluez/hci0",
		ServiceName:   "AA Listener",
		ConnectUUID:   PairingUUID.String(),
		RetryInterval: 500 * time.Millisecond,
		DataPort:      5288,
	}
}

// devicePath 蓝牙地址转换为 BlueZ Device1 对象路径
func devicePath(adapter, mac string) (string, error) {
	parts := strings.Split(mac, ":")
	if len(parts) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, mac)
	}
	for _, p := range parts {
		if len(p) != 2 {
			return "", fmt.Errorf("%w: %q", ErrInvalidAddress, mac)
		}
	}
	return adapter + "/dev_" + strings.ToUpper(strings.Join(parts, "_")), nil
}

// retry 每 interval 调用一次 fn，直到成功、timeout 用尽或 ctx 取消
func retry(ctx context.Context, interval, timeout time.Duration, fn func() error) (int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return attempt - 1, fmt.Errorf("%w: %w", ErrConnectTimeout, lastErr)
		}
		if lastErr = fn(); lastErr == nil {
			return attempt, nil
		}
	}
}
