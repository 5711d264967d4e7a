// Package usb 打开 USB 配件设备节点并监听其插拔
package usb

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

var ErrNotFound = errors.New("usb: accessory not found")

// Config 配件设备配置
type Config struct {
	// 配件字符设备路径
	Device string `mapstructure:"device" json:"device" validate:"required"`

	// 设备节点出现后等待多久再打开
	SettleDelay time.Duration `mapstructure:"settle_delay" json:"settle_delay" validate:"gte=0"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Device:      "/dev/usb_accessory",
		SettleDelay: 500 * time.Millisecond,
	}
}

// Open 以读写方式打开配件设备
func Open(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("usb: open %s: %w", path, err)
	}
	return f, nil
}

// Present 设备节点是否存在
func Present(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
