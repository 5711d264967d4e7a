package web

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Config 状态接口服务配置
type Config struct {
	Enabled         bool          `mapstructure:"enabled" json:"enabled"`
	Addr            string        `mapstructure:"addr" json:"addr" validate:"required_if=Enabled true"`
	Mode            string        `mapstructure:"mode" json:"mode" validate:"omitempty,oneof=debug release test"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		Addr:            "127.0.0.1:8080",
		Mode:            gin.ReleaseMode,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}
