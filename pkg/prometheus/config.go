package prometheus

import (
	"fmt"
	"time"
)

// Config 指标配置
type Config struct {
	// 指标命名空间
	Namespace string `mapstructure:"namespace" json:"namespace" yaml:"namespace"`

	// 子系统（可选）
	Subsystem string `mapstructure:"subsystem" json:"subsystem" yaml:"subsystem"`

	// 独立的指标 HTTP 服务器，状态接口已挂载 /metrics 时可关闭
	HTTPServer HTTPServerConfig `mapstructure:"http_server" json:"http_server" yaml:"http_server"`

	// 是否注册 Go 运行时采集器
	EnableGoCollector bool `mapstructure:"enable_go_collector" json:"enable_go_collector" yaml:"enable_go_collector"`

	// 是否注册进程采集器
	EnableProcessCollector bool `mapstructure:"enable_process_collector" json:"enable_process_collector" yaml:"enable_process_collector"`
}

// HTTPServerConfig 独立指标服务器配置
type HTTPServerConfig struct {
	Enabled bool          `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Addr    string        `mapstructure:"addr" json:"addr" yaml:"addr"`
	Path    string        `mapstructure:"path" json:"path" yaml:"path"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Namespace: "aagateway",
		HTTPServer: HTTPServerConfig{
			Enabled: false,
			Addr:    ":9090",
			Path:    "/metrics",
			Timeout: 10 * time.Second,
		},
		EnableGoCollector:      true,
		EnableProcessCollector: true,
	}
}

// Validate 验证配置并补全缺省值
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("%w: namespace is required", ErrInvalidConfig)
	}

	if c.HTTPServer.Enabled {
		if c.HTTPServer.Addr == "" {
			return fmt.Errorf("%w: http_server.addr is required", ErrInvalidConfig)
		}
		if c.HTTPServer.Path == "" {
			c.HTTPServer.Path = "/metrics"
		}
		if c.HTTPServer.Timeout == 0 {
			c.HTTPServer.Timeout = 10 * time.Second
		}
	}
	return nil
}
