// Package fallback 无线连接失败后启动有线投屏
package fallback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/lk2023060901/aagateway/pkg/bridge"
	"github.com/lk2023060901/aagateway/pkg/logger"
)

// Config 回退命令配置
type Config struct {
	// 命令及参数，为空表示不回退
	Command []string `mapstructure:"command" json:"command"`

	// 命令最长运行时间，0 表示不限制
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" validate:"gte=0"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{Timeout: 30 * time.Second}
}

// Command 以外部命令实现 bridge.FallbackHandler
type Command struct {
	config *Config
	logger logger.Logger
}

// New 未配置命令时返回 nil
func New(cfg *Config, l logger.Logger) bridge.FallbackHandler {
	if cfg == nil || len(cfg.Command) == 0 {
		return nil
	}
	if l == nil {
		l = logger.NewNoop()
	}
	return &Command{config: cfg, logger: l.Named("fallback")}
}

// Fallback 运行命令，环境变量 AAGW_SESSION_ID 为触发回退的会话
func (c *Command) Fallback(ctx context.Context, sessionID string) error {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.config.Command[0], c.config.Command[1:]...)
	cmd.Env = append(os.Environ(), "AAGW_SESSION_ID="+sessionID)

	start := time.Now()
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		c.logger.Debug("fallback output", "session_id", sessionID, "output", string(out))
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("fallback: %s exited with %d", c.config.Command[0], exitErr.ExitCode())
		}
		return fmt.Errorf("fallback: run %s: %w", c.config.Command[0], err)
	}
	c.logger.Info("fallback finished", "session_id", sessionID, "elapsed", time.Since(start))
	return nil
}
