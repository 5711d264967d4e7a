package logger

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lk2023060901/aagateway/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Logger = (*BaseLogger)(nil)

// BaseLogger 基于 zap 的 Logger 实现
type BaseLogger struct {
	zl               *zap.Logger
	config           *Config
	name             string
	globalFields     map[string]any
	hooks            []Hook
	extraWriters     []io.Writer
	contextExtractor ContextFieldExtractor
}

// New 创建 BaseLogger，cfg 中未设置的项取默认值
func New(cfg *Config, opts ...Option) (*BaseLogger, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge logger config: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	l := &BaseLogger{
		config:           merged,
		globalFields:     make(map[string]any, len(merged.GlobalFields)),
		contextExtractor: DefaultContextExtractor,
	}
	for k, v := range merged.GlobalFields {
		l.globalFields[k] = v
	}
	for _, opt := range opts {
		opt(l)
	}
	if len(merged.RedactKeys) > 0 {
		l.hooks = append(l.hooks, RedactHook(merged.RedactKeys...))
	}

	zl, err := l.build()
	if err != nil {
		return nil, err
	}
	l.zl = zl
	return l, nil
}

func (l *BaseLogger) build() (*zap.Logger, error) {
	encCfg := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if l.config.TimeFormat != "" {
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(l.config.TimeFormat)
	}
	if l.config.Development {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var encoder zapcore.Encoder
	if l.config.Format == JSONFormat {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	syncers := make([]zapcore.WriteSyncer, 0, 2+len(l.extraWriters))
	if l.config.EnableConsole {
		syncers = append(syncers, zapcore.Lock(os.Stdout))
	}
	if l.config.EnableFile {
		w, err := NewRotationWriter(&l.config.Rotation, l.config.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create rotation writer: %w", err)
		}
		syncers = append(syncers, zapcore.AddSync(w))
	}
	for _, w := range l.extraWriters {
		syncers = append(syncers, zapcore.AddSync(w))
	}

	var core zapcore.Core = zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), parseLevel(l.config.Level))
	if len(l.hooks) > 0 {
		core = NewHookedCore(core, l.hooks...)
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}
	if l.config.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(parseLevel(l.config.StacktraceLevel)))
	}
	if l.config.Development {
		opts = append(opts, zap.Development())
	}

	zl := zap.New(core, opts...)
	if len(l.globalFields) > 0 {
		fields := make([]zap.Field, 0, len(l.globalFields))
		for k, v := range l.globalFields {
			fields = append(fields, zap.Any(k, v))
		}
		zl = zl.With(fields...)
	}
	if l.name != "" {
		zl = zl.Named(l.name)
	}
	return zl, nil
}

func parseLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *BaseLogger) Debug(msg string, keysAndValues ...any) {
	l.zl.Debug(msg, toZapFields(keysAndValues)...)
}

func (l *BaseLogger) Info(msg string, keysAndValues ...any) {
	l.zl.Info(msg, toZapFields(keysAndValues)...)
}

func (l *BaseLogger) Warn(msg string, keysAndValues ...any) {
	l.zl.Warn(msg, toZapFields(keysAndValues)...)
}

func (l *BaseLogger) Error(msg string, keysAndValues ...any) {
	l.zl.Error(msg, toZapFields(keysAndValues)...)
}

func (l *BaseLogger) DebugContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.zl.Debug(msg, l.contextFields(ctx, keysAndValues)...)
}

func (l *BaseLogger) InfoContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.zl.Info(msg, l.contextFields(ctx, keysAndValues)...)
}

func (l *BaseLogger) WarnContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.zl.Warn(msg, l.contextFields(ctx, keysAndValues)...)
}

func (l *BaseLogger) ErrorContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.zl.Error(msg, l.contextFields(ctx, keysAndValues)...)
}

// Named 创建子 logger，名称以点号连接
func (l *BaseLogger) Named(name string) Logger {
	child := *l
	child.zl = l.zl.Named(name)
	child.name = name
	return &child
}

// WithFields 创建携带固定字段的子 logger
func (l *BaseLogger) WithFields(keysAndValues ...any) Logger {
	fields := toZapFields(keysAndValues)
	if len(fields) == 0 {
		return l
	}
	child := *l
	child.zl = l.zl.With(fields...)
	return &child
}

func (l *BaseLogger) Sync() error {
	return l.zl.Sync()
}

// Zap 返回底层 zap.Logger
func (l *BaseLogger) Zap() *zap.Logger {
	return l.zl
}

func (l *BaseLogger) contextFields(ctx context.Context, keysAndValues []any) []zap.Field {
	return append(l.contextExtractor(ctx), toZapFields(keysAndValues)...)
}

// toZapFields 支持 key/value 交替传参，也支持直接传 zap.Field
func toZapFields(keysAndValues []any) []zap.Field {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, len(keysAndValues)/2+1)
	for i := 0; i < len(keysAndValues); {
		if f, ok := keysAndValues[i].(zap.Field); ok {
			fields = append(fields, f)
			i++
			continue
		}
		if i+1 >= len(keysAndValues) {
			fields = append(fields, zap.Any("!BADKEY", keysAndValues[i]))
			break
		}
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		if err, isErr := keysAndValues[i+1].(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
		} else {
			fields = append(fields, zap.Any(key, keysAndValues[i+1]))
		}
		i += 2
	}
	return fields
}
