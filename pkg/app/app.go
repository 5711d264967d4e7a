package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/util/conc"
)

var (
	ErrAppAlreadyRunning = errors.New("application is already running")
)

// Application 进程级应用
type Application interface {
	Run() error
	Shutdown() error
	Context() context.Context
	Logger(name string) logger.Logger
	AppLogger() logger.Logger
}

// Server 随应用启停的组件（HTTP 服务、设备监听等）
type Server interface {
	Start() error
	Stop() error
}

// Closer 资源清理接口
type Closer interface {
	Close() error
}

// BaseApp 提供了 Application 接口的基础实现
type BaseApp struct {
	opts     Options
	logger   logger.Logger
	loggers  *namedLoggers
	servers  []Server
	closers  []Closer
	started  []Server

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex

	running atomic.Bool
	closed  atomic.Bool
}

// NewBaseApp 创建一个新的 BaseApp 实例
func NewBaseApp(opts ...Option) *BaseApp {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &BaseApp{
		opts:     o,
		logger:   o.Logger.Named(o.Name),
		loggers:  newNamedLoggers(),
		ctx:      ctx,
		cancel:   cancel,
	}
	if o.LogConfig != nil {
		if l, err := logger.New(o.LogConfig); err == nil {
			a.logger = l.Named(o.Name)
		}
	}
	if err := a.loggers.init(o.NamedLoggers); err != nil {
		a.logger.Error("failed to initialize named loggers from config", "error", err)
	}
	return a
}

// Context 应用生命周期 context，Shutdown 时取消
func (a *BaseApp) Context() context.Context {
	return a.ctx
}

// AppLogger 获取应用主日志对象
func (a *BaseApp) AppLogger() logger.Logger {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.logger
}

// Logger 获取具名 Logger，未单独配置时从主日志派生
func (a *BaseApp) Logger(name string) logger.Logger {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if l, ok := a.loggers.get(name); ok {
		return l
	}
	return a.logger.Named(name)
}

// Run 启动所有 Server 并阻塞到收到信号或 Shutdown
func (a *BaseApp) Run() error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAppAlreadyRunning
	}

	info := GetInfo()
	fmt.Println(info.String())
	a.logger.Info("application starting",
		"name", info.AppName,
		"version", info.Version,
		"commit", info.GitCommit,
		"build_date", info.BuildDate,
		"go_version", info.GoVersion,
		"host", info.Hostname,
		"named_loggers", a.loggers.names(),
		"id", a.opts.ID,
	)

	if err := a.startServers(); err != nil {
		_ = a.Shutdown()
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		a.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-a.ctx.Done():
		a.logger.Info("context cancelled, shutting down")
	}
	return a.Shutdown()
}

func (a *BaseApp) startServers() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, srv := range a.servers {
		if err := srv.Start(); err != nil {
			a.logger.Error("failed to start server", "server", fmt.Sprintf("%T", srv), "error", err)
			return err
		}
		a.started = append(a.started, srv)
	}
	return nil
}

// Shutdown 逆序停止已启动的 Server，再逆序关闭 Closer
func (a *BaseApp) Shutdown() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancel()
	a.logger.Info("application shutting down")

	started := a.started
	stopped := conc.Go(func() (struct{}, error) {
		var errs []error
		for i := len(started) - 1; i >= 0; i-- {
			if err := started[i].Stop(); err != nil {
				a.logger.Error("failed to stop server", "server", fmt.Sprintf("%T", started[i]), "error", err)
				errs = append(errs, err)
			}
		}
		return struct{}{}, errors.Join(errs...)
	})

	select {
	case <-stopped.Inner():
		a.logger.Info("all servers stopped")
	case <-time.After(a.opts.StopTimeout):
		a.logger.Warn("shutdown timeout, forcing exit")
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("failed to close component", "error", err)
		}
	}

	a.loggers.syncAll()
	a.logger.Info("application exited")
	_ = a.logger.Sync()
	return nil
}

// AppendServer 添加 Server，按添加顺序启动
func (a *BaseApp) AppendServer(srv ...Server) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.servers = append(a.servers, srv...)
}

// AppendCloser 添加资源清理组件
func (a *BaseApp) AppendCloser(closer ...Closer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, closer...)
}
