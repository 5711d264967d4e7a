// Package wifi 通过 NetworkManager 建立无线链路
//
// Hotspot 供网关使用：以 AP 模式共享一个热点，并把地址与连接参数作为 LinkInfo 返回。
// Station 供客户端使用：加入网关热点，以 DHCP 下发的网关地址作为对端地址，
// 并在连接被断开时通过 Lost 通知。
package wifi

import (
	"errors"
	"time"

	"github.com/lk2023060901/aagateway/pkg/config"
)

var (
	ErrUnsupported       = errors.New("wifi: not supported on this platform")
	ErrNoDevice          = errors.New("wifi: interface not managed")
	ErrActivationFailed  = errors.New("wifi: activation failed")
	ErrActivationTimeout = errors.New("wifi: activation timed out")
	ErrNoAddress         = errors.New("wifi: no ipv4 address")
)

// Config 无线链路配置
type Config struct {
	// 无线网卡名，Station 为空时由 NetworkManager 选择
	Interface string `mapstructure:"interface" json:"interface"`

	// 连接档案名，拆除时一并删除
	ConnectionName string `mapstructure:"connection_name" json:"connection_name" validate:"required"`

	SSID       string `mapstructure:"ssid" json:"ssid" validate:"required,max=32"`
	Passphrase string `mapstructure:"passphrase" json:"-" validate:"required,min=8,max=63"`

	// Station 指定要加入的 BSSID，可选
	BSSID string `mapstructure:"bssid" json:"bssid" validate:"omitempty,mac"`

	// Hotspot 频段: bg 或 a
	Band string `mapstructure:"band" json:"band" validate:"omitempty,oneof=bg a"`

	// 等待连接激活的最长时间
	ActivationTimeout time.Duration `mapstructure:"activation_timeout" json:"activation_timeout" validate:"gt=0"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Interface:         "wlan0",
		ConnectionName:    "aagateway",
		Band:              "bg",
		ActivationTimeout: 30 * time.Second,
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c == nil {
		return config.ErrNilConfig
	}
	return config.Validate(c)
}
