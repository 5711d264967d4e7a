package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lk2023060901/aagateway/pkg/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，AAGW_BRIDGE_DATA_PORT 覆盖 bridge.data_port
const EnvPrefix = "AAGW"

var (
	configPath string
	logPath    string
)

// LoadConfig 加载配置到 target，target 应已填好默认值
//
// 优先级：命令行 --log.path > 环境变量 > 配置文件 > target 中的默认值。
// 未显式指定且默认位置不存在配置文件时只使用默认值。
func LoadConfig(target any, opts ...config.Option) error {
	execDir, err := GetExecDir()
	if err != nil {
		return fmt.Errorf("failed to get executable directory: %w", err)
	}
	defaultConfig := filepath.Join(execDir, "config.yaml")
	defaultLog := filepath.Join(execDir, "logs", "app.log")

	if pflag.Lookup("config") == nil {
		pflag.StringVarP(&configPath, "config", "c", defaultConfig, "path to config file")
	}
	if pflag.Lookup("log.path") == nil {
		pflag.StringVar(&logPath, "log.path", "", "output path for logs")
	}
	if !pflag.Parsed() {
		pflag.Parse()
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	explicit := pflag.CommandLine.Changed("config")
	finalConfigPath := configPath
	if !explicit {
		if envConfig := os.Getenv(EnvPrefix + "_CONFIG"); envConfig != "" {
			finalConfigPath, explicit = envConfig, true
		}
	}

	if pflag.CommandLine.Changed("log.path") {
		v.Set("log.output_path", logPath)
		v.Set("log.enable_file", true)
	}

	mgr := config.NewManager(append(opts, config.WithViper(v))...)

	_, statErr := os.Stat(finalConfigPath)
	switch {
	case statErr == nil:
		if err := mgr.LoadFile(finalConfigPath); err != nil {
			return err
		}
		configPath = finalConfigPath
	case explicit || !errors.Is(statErr, fs.ErrNotExist):
		return fmt.Errorf("config file not found at %s: %w", finalConfigPath, statErr)
	default:
		configPath = ""
	}

	if err := mgr.Unmarshal(target); err != nil {
		return err
	}

	logPath = v.GetString("log.output_path")
	if logPath == "" {
		logPath = defaultLog
	}
	if v.GetBool("log.enable_file") {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	return nil
}

// GetExecDir 获取可执行文件所在目录（处理符号链接）
func GetExecDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	realPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		return filepath.Dir(execPath), nil
	}
	return filepath.Dir(realPath), nil
}

// GetConfigPath 返回实际加载的配置文件路径，未加载时为空
func GetConfigPath() string {
	return configPath
}

// GetLogPath 返回最终生效的日志路径
func GetLogPath() string {
	return logPath
}
