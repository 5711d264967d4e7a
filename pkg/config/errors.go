package config

import "errors"

var (
	// ErrValidationFailed 配置验证失败
	ErrValidationFailed = errors.New("config: validation failed")

	// ErrNilConfig 配置为 nil
	ErrNilConfig = errors.New("config: config cannot be nil")

	// ErrNotLoaded 尚未加载配置文件
	ErrNotLoaded = errors.New("config: no config file loaded")
)
