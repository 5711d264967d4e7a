package logger

import (
	"os"
	"sync"

	"github.com/lk2023060901/aagateway/pkg/config"
)

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger
)

// InitDefault 用配置初始化全局默认 logger
func InitDefault(cfg *Config, opts ...Option) error {
	l, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	SetDefault(l)
	return nil
}

// InitDefaultFromEnv 用 AAGW_LOG_* 环境变量初始化默认 logger
func InitDefaultFromEnv() error {
	env := &Config{}
	if v := os.Getenv("AAGW_LOG_LEVEL"); v != "" {
		env.Level = Level(v)
	}
	if v := os.Getenv("AAGW_LOG_FORMAT"); v != "" {
		env.Format = Format(v)
	}
	if v := os.Getenv("AAGW_LOG_PATH"); v != "" {
		env.EnableFile = true
		env.OutputPath = v
	}
	if os.Getenv("AAGW_LOG_DEVELOPMENT") == "true" {
		env.Development = true
	}

	merged, err := config.MergeConfig(DefaultConfig(), env)
	if err != nil {
		return err
	}
	return InitDefault(merged)
}

// SetDefault 设置全局默认 logger
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Default 返回全局默认 logger，未初始化时懒加载一个控制台 logger
func Default() Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		base, err := New(DefaultConfig())
		if err != nil {
			defaultLogger = NewNoop()
		} else {
			defaultLogger = base
		}
	}
	return defaultLogger
}

// Named 从默认 logger 派生具名 logger
func Named(name string) Logger {
	return Default().Named(name)
}
