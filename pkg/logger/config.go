package logger

import "time"

// Level 日志等级
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Format 日志格式
type Format string

const (
	JSONFormat    Format = "json"
	ConsoleFormat Format = "console"
)

// RotationType 轮换类型
type RotationType string

const (
	RotationBySize RotationType = "size"
	RotationByTime RotationType = "time"
)

// Config 日志配置
type Config struct {
	Level  Level  `mapstructure:"level" json:"level"`
	Format Format `mapstructure:"format" json:"format"`

	EnableConsole bool   `mapstructure:"enable_console" json:"enable_console"`
	EnableFile    bool   `mapstructure:"enable_file" json:"enable_file"`
	OutputPath    string `mapstructure:"output_path" json:"output_path"`

	TimeFormat string `mapstructure:"time_format" json:"time_format"`

	Rotation RotationConfig `mapstructure:"rotation" json:"rotation"`

	EnableStacktrace bool  `mapstructure:"enable_stacktrace" json:"enable_stacktrace"`
	StacktraceLevel  Level `mapstructure:"stacktrace_level" json:"stacktrace_level"`

	// Development 彩色等级输出并启用 zap 开发模式
	Development bool `mapstructure:"development" json:"development"`

	// GlobalFields 每条日志都附带的字段，如设备名
	GlobalFields map[string]any `mapstructure:"global_fields" json:"global_fields"`

	// RedactKeys 这些字段的值在输出前被替换，默认包含 Wi-Fi 口令
	RedactKeys []string `mapstructure:"redact_keys" json:"redact_keys"`
}

// RotationConfig 文件轮换配置
type RotationConfig struct {
	Type RotationType `mapstructure:"type" json:"type"`

	// 按大小轮换 (lumberjack)
	MaxSize    int  `mapstructure:"max_size" json:"max_size"`       // MB
	MaxBackups int  `mapstructure:"max_backups" json:"max_backups"` // 保留的旧文件数
	MaxAge     int  `mapstructure:"max_age" json:"max_age"`         // 天
	Compress   bool `mapstructure:"compress" json:"compress"`

	// 按时间轮换 (file-rotatelogs)
	RotationTime    time.Duration `mapstructure:"rotation_time" json:"rotation_time"`
	MaxAgeTime      time.Duration `mapstructure:"max_age_time" json:"max_age_time"`
	RotationPattern string        `mapstructure:"rotation_pattern" json:"rotation_pattern"`
}

// DefaultConfig 默认配置：仅控制台输出
func DefaultConfig() *Config {
	return &Config{
		Level:         InfoLevel,
		Format:        ConsoleFormat,
		EnableConsole: true,
		TimeFormat:    "2006-01-02 15:04:05.000",
		Rotation: RotationConfig{
			Type:            RotationBySize,
			MaxSize:         20,
			MaxBackups:      3,
			MaxAge:          7,
			Compress:        true,
			RotationTime:    24 * time.Hour,
			MaxAgeTime:      7 * 24 * time.Hour,
			RotationPattern: ".%Y%m%d",
		},
		EnableStacktrace: true,
		StacktraceLevel:  ErrorLevel,
		GlobalFields:     make(map[string]any),
		RedactKeys:       []string{"passphrase", "psk"},
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.EnableFile && c.OutputPath == "" {
		return ErrInvalidOutputPath
	}
	if !c.EnableConsole && !c.EnableFile {
		return ErrNoOutputEnabled
	}
	if c.Rotation.Type == RotationByTime && c.Rotation.RotationTime <= 0 {
		return ErrInvalidRotation
	}
	return nil
}
