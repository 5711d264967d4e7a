// Package service 把 USB 配件插拔与会话编排连接起来
package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/lk2023060901/aagateway/pkg/bridge"
	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/usb"
	"github.com/lk2023060901/aagateway/pkg/util/conc"
)

const stopTimeout = 5 * time.Second

// Sessions 会话编排器的最小接口
type Sessions interface {
	Start(ctx context.Context, accessory io.ReadWriteCloser) (*bridge.Session, error)
	Active() (*bridge.Session, bool)
	Close(ctx context.Context) error
}

// Options 服务选项
type Options struct {
	// 配件插入时自动开始会话
	AutoStart bool `mapstructure:"auto_start" json:"auto_start"`
}

// Gateway 网关服务，实现 app.Server
type Gateway struct {
	sessions Sessions
	pool     *conc.Pool[struct{}]
	usb      *usb.Config
	watcher  *usb.Watcher
	opts     Options
	logger   logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	last    *bridge.Session
	watched *conc.Future[struct{}]
}

// New 创建网关服务，pool 为 nil 时配件监听使用独立协程
func New(sessions Sessions, pool *conc.Pool[struct{}], usbCfg *usb.Config, watcher *usb.Watcher, opts Options, l logger.Logger) *Gateway {
	if l == nil {
		l = logger.NewNoop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Gateway{
		sessions: sessions,
		pool:     pool,
		usb:      usbCfg,
		watcher:  watcher,
		opts:     opts,
		logger:   l.Named("gateway"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// StartSession 打开配件并开始会话；配件不存在时会话以 usb unavailable 停止
func (g *Gateway) StartSession() (bridge.Snapshot, error) {
	if err := g.ctx.Err(); err != nil {
		return bridge.Snapshot{}, err
	}

	var accessory io.ReadWriteCloser
	f, err := usb.Open(g.usb.Device)
	switch {
	case err == nil:
		accessory = f
	case errors.Is(err, usb.ErrNotFound):
		g.logger.Warn("no usb accessory", "device", g.usb.Device)
	default:
		return bridge.Snapshot{}, err
	}

	s, err := g.sessions.Start(g.ctx, accessory)
	if err != nil {
		if accessory != nil {
			_ = accessory.Close()
		}
		return bridge.Snapshot{}, err
	}

	g.mu.Lock()
	g.last = s
	g.mu.Unlock()
	return s.Snapshot(), nil
}

// CancelSession 取消活跃会话
func (g *Gateway) CancelSession() (bridge.Snapshot, bool) {
	s, ok := g.sessions.Active()
	if !ok {
		return bridge.Snapshot{}, false
	}
	s.Cancel()
	return s.Snapshot(), true
}

// Current 活跃会话，没有时返回最近一次会话
func (g *Gateway) Current() (bridge.Snapshot, bool) {
	if s, ok := g.sessions.Active(); ok {
		return s.Snapshot(), true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last == nil {
		return bridge.Snapshot{}, false
	}
	return g.last.Snapshot(), true
}

// Start 启动配件监听
func (g *Gateway) Start() error {
	if !g.opts.AutoStart || g.watcher == nil {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	watch := func() (struct{}, error) {
		return struct{}{}, g.watcher.Run(g.ctx, usb.Handler{
			Attached: g.onAttached,
			Detached: g.onDetached,
		})
	}
	if g.pool != nil {
		g.watched = g.pool.Submit(watch)
	} else {
		g.watched = conc.Go(watch)
	}
	if g.watched.Done() && g.watched.Err() != nil {
		return g.watched.Err()
	}
	return nil
}

func (g *Gateway) onAttached(string) {
	snap, err := g.StartSession()
	switch {
	case errors.Is(err, bridge.ErrSessionActive):
		g.logger.Debug("accessory attached while session active")
	case err != nil:
		g.logger.Error("start session", "error", err)
	default:
		g.logger.Info("session started on attach", "session_id", snap.ID)
	}
}

func (g *Gateway) onDetached(string) {
	if snap, ok := g.CancelSession(); ok {
		g.logger.Info("session cancelled on detach", "session_id", snap.ID)
	}
}

// Stop 停止监听并结束活跃会话
func (g *Gateway) Stop() error {
	g.cancel()

	g.mu.Lock()
	watched := g.watched
	g.mu.Unlock()
	if watched != nil {
		if _, err := watched.Await(); err != nil {
			g.logger.Warn("usb watcher exited", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return g.sessions.Close(ctx)
}
