package logger

import (
	"io"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewRotationWriter 根据轮换类型创建文件 writer
func NewRotationWriter(cfg *RotationConfig, outputPath string) (io.Writer, error) {
	if cfg.Type == RotationByTime {
		pattern := cfg.RotationPattern
		if pattern == "" {
			pattern = ".%Y%m%d%H"
		}
		return rotatelogs.New(
			outputPath+pattern,
			rotatelogs.WithLinkName(outputPath),
			rotatelogs.WithRotationTime(cfg.RotationTime),
			rotatelogs.WithMaxAge(cfg.MaxAgeTime),
		)
	}

	return &lumberjack.Logger{
		Filename:   outputPath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}, nil
}
