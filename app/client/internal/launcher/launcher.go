// Package launcher 握手被接受后启动本机投屏程序
package launcher

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/lk2023060901/aagateway/pkg/bridge"
	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/util/conc"
)

var ErrNoCommand = errors.New("launcher: command not configured")

// Config 启动命令，参数中的 {host} {port} 会被替换
type Config struct {
	Command []string `mapstructure:"command" json:"command"`
}

var _ bridge.Launcher = (*Command)(nil)

// Command 以子进程启动投屏，进程在会话结束或 Close 时被终止
type Command struct {
	config *Config
	logger logger.Logger

	mu    sync.Mutex
	procs map[*exec.Cmd]*conc.Future[struct{}]
}

// New 创建 Command
func New(cfg *Config, l logger.Logger) *Command {
	if l == nil {
		l = logger.NewNoop()
	}
	return &Command{
		config: cfg,
		logger: l.Named("launcher"),
		procs:  make(map[*exec.Cmd]*conc.Future[struct{}]),
	}
}

// Args 替换占位符后的命令行
func (c *Command) Args(host string, port int) []string {
	r := strings.NewReplacer("{host}", host, "{port}", strconv.Itoa(port))
	out := make([]string, len(c.config.Command))
	for i, a := range c.config.Command {
		out[i] = r.Replace(a)
	}
	return out
}

// Launch 启动子进程后立即返回，ctx 结束时子进程被终止
func (c *Command) Launch(ctx context.Context, host string, port int) error {
	if len(c.config.Command) == 0 {
		return ErrNoCommand
	}
	args := c.Args(host, port)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Env = append(os.Environ(), "AAGW_HOST="+host, "AAGW_PORT="+strconv.Itoa(port))
	if err := cmd.Start(); err != nil {
		return err
	}
	c.logger.Info("projection started", "pid", cmd.Process.Pid, "host", host, "port", port)

	c.mu.Lock()
	c.procs[cmd] = conc.Go(func() (struct{}, error) {
		err := cmd.Wait()
		c.mu.Lock()
		delete(c.procs, cmd)
		c.mu.Unlock()
		if err != nil && ctx.Err() == nil {
			c.logger.Warn("projection exited", "pid", cmd.Process.Pid, "error", err)
		}
		return struct{}{}, nil
	})
	c.mu.Unlock()
	return nil
}

// Running 仍在运行的子进程数
func (c *Command) Running() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.procs)
}

// Close 终止所有子进程并等待退出
func (c *Command) Close() error {
	c.mu.Lock()
	waits := make([]*conc.Future[struct{}], 0, len(c.procs))
	for cmd, f := range c.procs {
		_ = cmd.Process.Kill()
		waits = append(waits, f)
	}
	c.mu.Unlock()
	return conc.AwaitAll(waits...)
}
