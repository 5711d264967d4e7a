package config

import "github.com/spf13/viper"

// Option 配置管理器选项
type Option func(*manager)

// WithDefaults 设置默认值，键使用点分路径，如 "bridge.data_port"
func WithDefaults(defaults map[string]any) Option {
	return func(m *manager) {
		for key, value := range defaults {
			m.v.SetDefault(key, value)
		}
	}
}

// WithConfigType 指定配置文件类型（yaml、json、toml）
func WithConfigType(configType string) Option {
	return func(m *manager) {
		m.v.SetConfigType(configType)
	}
}

// WithEnvPrefix 绑定环境变量前缀，AAGW_BRIDGE_DATA_PORT 覆盖 bridge.data_port
func WithEnvPrefix(prefix string) Option {
	return func(m *manager) {
		m.bindEnv(prefix)
	}
}

// WithViper 使用外部创建的 Viper 实例
func WithViper(v *viper.Viper) Option {
	return func(m *manager) {
		m.v = v
	}
}
