package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Manager 配置管理器
type Manager interface {
	// LoadFile 加载配置文件
	LoadFile(path string) error
	// Unmarshal 解析整个配置
	Unmarshal(v any) error
	// UnmarshalKey 解析某个子树，如 "bridge" 或 "bridge.rejection"
	UnmarshalKey(key string, v any) error
	// IsSet 检查配置项是否存在
	IsSet(key string) bool
	// ConfigFile 当前使用的配置文件路径
	ConfigFile() string
	// Watch 监听配置文件变化，回调在文件重新读取之后触发
	Watch(callback func()) error
}

type manager struct {
	v         *viper.Viper
	mu        sync.RWMutex
	callbacks []func()
	watching  bool
}

// NewManager 创建配置管理器
func NewManager(opts ...Option) Manager {
	m := &manager{
		v: viper.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *manager) bindEnv(prefix string) {
	if prefix != "" {
		m.v.SetEnvPrefix(prefix)
	}
	m.v.AutomaticEnv()
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

// LoadFile 加载配置文件（YAML、JSON、TOML）
func (m *manager) LoadFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.v.SetConfigFile(path)
	if err := m.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// decodeHook 字符串转 time.Duration，以及实现了 encoding.TextUnmarshaler 的枚举类型
func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// Unmarshal 解析整个配置到结构体
func (m *manager) Unmarshal(v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.v.Unmarshal(v, decodeHook()); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// UnmarshalKey 解析指定路径的配置
func (m *manager) UnmarshalKey(key string, v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.v.UnmarshalKey(key, v, decodeHook()); err != nil {
		return fmt.Errorf("failed to unmarshal key %s: %w", key, err)
	}
	return nil
}

// IsSet 检查配置项是否存在
func (m *manager) IsSet(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.IsSet(key)
}

// ConfigFile 返回配置文件路径
func (m *manager) ConfigFile() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.ConfigFileUsed()
}

// Watch 监听配置文件变化
func (m *manager) Watch(callback func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.v.ConfigFileUsed() == "" {
		return ErrNotLoaded
	}

	m.callbacks = append(m.callbacks, callback)
	if m.watching {
		return nil
	}
	m.watching = true

	m.v.OnConfigChange(func(fsnotify.Event) {
		m.mu.RLock()
		callbacks := append([]func(){}, m.callbacks...)
		m.mu.RUnlock()

		for _, cb := range callbacks {
			cb()
		}
	})
	m.v.WatchConfig()
	return nil
}
