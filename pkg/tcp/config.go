package tcp

import (
	"fmt"
	"time"
)

// ServerConfig 一次性监听配置
type ServerConfig struct {
	// 监听地址，如 "0.0.0.0:5288"
	Addr string `mapstructure:"addr" json:"addr" yaml:"addr"`

	// 网络类型，tcp/tcp4/tcp6
	Network string `mapstructure:"network" json:"network" yaml:"network"`

	// 地址复用，便于会话结束后立即重新监听同一端口
	ReuseAddr bool `mapstructure:"reuse_addr" json:"reuse_addr" yaml:"reuse_addr"`
	ReusePort bool `mapstructure:"reuse_port" json:"reuse_port" yaml:"reuse_port"`

	// 等待第一个连接的超时，0 表示不限
	AcceptTimeout time.Duration `mapstructure:"accept_timeout" json:"accept_timeout" yaml:"accept_timeout"`

	// 连接建立后的首次读超时（握手服务器读取单字节）
	ReadTimeout time.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout"`

	// 已建立连接每次读写的空闲超时，0 表示不设置
	IdleTimeout time.Duration `mapstructure:"idle_timeout" json:"idle_timeout" yaml:"idle_timeout"`

	// 是否禁用 Nagle 算法
	TCPNoDelay bool `mapstructure:"tcp_no_delay" json:"tcp_no_delay" yaml:"tcp_no_delay"`
}

// DefaultServerConfig 返回默认服务端配置
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Network:     "tcp",
		ReuseAddr:   true,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 10 * time.Second,
		TCPNoDelay:  true,
	}
}

// Validate 验证服务端配置
func (c *ServerConfig) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: addr is required", ErrInvalidConfig)
	}
	if c.Network == "" {
		c.Network = "tcp"
	}
	if c.AcceptTimeout < 0 || c.ReadTimeout < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	return nil
}

// ClientConfig 客户端配置
type ClientConfig struct {
	// 服务端地址，如 "192.168.43.1:5287"
	Addr string `mapstructure:"addr" json:"addr" yaml:"addr"`

	// 网络类型，tcp/tcp4/tcp6
	Network string `mapstructure:"network" json:"network" yaml:"network"`

	// 单次拨号超时
	DialTimeout time.Duration `mapstructure:"dial_timeout" json:"dial_timeout" yaml:"dial_timeout"`

	// 是否禁用 Nagle 算法
	TCPNoDelay bool `mapstructure:"tcp_no_delay" json:"tcp_no_delay" yaml:"tcp_no_delay"`

	// 重试配置
	Retry RetryConfig `mapstructure:"retry" json:"retry" yaml:"retry"`
}

// RetryConfig 有界重试：每 Interval 尝试一次，直到 Deadline 用尽
type RetryConfig struct {
	// 两次尝试的最小间隔
	Interval time.Duration `mapstructure:"interval" json:"interval" yaml:"interval"`

	// 总时限，0 表示只尝试一次
	Deadline time.Duration `mapstructure:"deadline" json:"deadline" yaml:"deadline"`
}

// DefaultRetryConfig 每 500ms 重试，最多 30s
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Interval: 500 * time.Millisecond,
		Deadline: 30 * time.Second,
	}
}

// DefaultClientConfig 返回默认客户端配置
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Network:     "tcp",
		DialTimeout: 5 * time.Second,
		TCPNoDelay:  true,
		Retry:       DefaultRetryConfig(),
	}
}

// Validate 验证客户端配置
func (c *ClientConfig) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: addr is required", ErrInvalidConfig)
	}
	if c.Network == "" {
		c.Network = "tcp"
	}
	if c.Retry.Deadline > 0 && c.Retry.Interval <= 0 {
		return fmt.Errorf("%w: retry interval must be positive", ErrInvalidConfig)
	}
	return nil
}
