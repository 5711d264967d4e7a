package tcp

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/util/conc"
	"github.com/panjf2000/gnet/v2"
)

// handshakeConn 标记被接受的那个连接
type handshakeConn struct{}

type handshakeResult struct {
	value byte
	err   error
}

// HandshakeServer 控制端口上的一次性服务器：接受一个连接，读取一个字节后关闭
//
// 状态: Idle -> Listening -> Accepted | TimedOut | Errored，不重试。
// 第一个连接之后到来的连接会被立即关闭。
type HandshakeServer struct {
	gnet.BuiltinEventEngine

	config *ServerConfig
	logger logger.Logger

	booted   chan struct{}
	engine   gnet.Engine
	accepted chan struct{}
	claimed  atomic.Bool
	result   chan handshakeResult
	once     sync.Once
}

// NewHandshakeServer 创建握手服务器，每个实例只能 Serve 一次
func NewHandshakeServer(cfg *ServerConfig, opts ...Option) (*HandshakeServer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	return &HandshakeServer{
		config:   cfg,
		logger:   o.logger.Named("tcp.handshake"),
		booted:   make(chan struct{}),
		accepted: make(chan struct{}),
		result:   make(chan handshakeResult, 1),
	}, nil
}

func noDelayOpt(noDelay bool) gnet.TCPSocketOpt {
	if noDelay {
		return gnet.TCPNoDelay
	}
	return gnet.TCPDelay
}

// Serve 在 AcceptTimeout 内等待连接，再在 ReadTimeout 内读取一个字节
func (h *HandshakeServer) Serve(ctx context.Context) (byte, error) {
	protoAddr := fmt.Sprintf("%s://%s", h.config.Network, h.config.Addr)
	run := conc.Go(func() (struct{}, error) {
		return struct{}{}, gnet.Run(h, protoAddr,
			gnet.WithMulticore(false),
			gnet.WithNumEventLoop(1),
			gnet.WithReuseAddr(h.config.ReuseAddr),
			gnet.WithReusePort(h.config.ReusePort),
			gnet.WithTCPNoDelay(noDelayOpt(h.config.TCPNoDelay)),
		)
	})
	defer h.shutdown(run)

	select {
	case <-h.booted:
	case <-run.Inner():
		return 0, fmt.Errorf("%w: %w", ErrListenFailed, run.Err())
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	h.logger.Debug("listening", "addr", protoAddr, "timeout", h.config.AcceptTimeout)

	acceptTimeout := newTimer(h.config.AcceptTimeout)
	defer acceptTimeout.Stop()
	select {
	case <-h.accepted:
	case <-acceptTimeout.C:
		return 0, ErrAcceptTimeout
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	readTimeout := newTimer(h.config.ReadTimeout)
	defer readTimeout.Stop()
	select {
	case r := <-h.result:
		return r.value, r.err
	case <-readTimeout.C:
		return 0, ErrReadTimeout
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// shutdown 停止事件循环并等待 gnet.Run 返回，保证端口已释放
func (h *HandshakeServer) shutdown(run *conc.Future[struct{}]) {
	select {
	case <-h.booted:
		if err := h.engine.Stop(context.Background()); err != nil {
			h.logger.Debug("engine stop", "error", err)
		}
	case <-run.Inner():
		return
	}
	_ = run.Err()
}

func (h *HandshakeServer) deliver(value byte, err error) {
	h.once.Do(func() {
		h.result <- handshakeResult{value: value, err: err}
	})
}

// OnBoot 实现 gnet.EventHandler
func (h *HandshakeServer) OnBoot(eng gnet.Engine) gnet.Action {
	h.engine = eng
	close(h.booted)
	return gnet.None
}

// OnOpen 只接受第一个连接
func (h *HandshakeServer) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	if !h.claimed.CompareAndSwap(false, true) {
		return nil, gnet.Close
	}
	c.SetContext(handshakeConn{})
	h.logger.Info("control connection accepted", "remote", c.RemoteAddr().String())
	close(h.accepted)
	return nil, gnet.None
}

// OnTraffic 读取一个字节后关闭连接
func (h *HandshakeServer) OnTraffic(c gnet.Conn) gnet.Action {
	if _, ok := c.Context().(handshakeConn); !ok {
		return gnet.Close
	}
	b, err := c.Next(1)
	if err != nil || len(b) != 1 {
		return gnet.None
	}
	h.deliver(b[0], nil)
	return gnet.Close
}

// OnClose 对端在发送字节前断开视为错误
func (h *HandshakeServer) OnClose(c gnet.Conn, err error) gnet.Action {
	if _, ok := c.Context().(handshakeConn); ok {
		if err == nil {
			err = ErrConnectionClosed
		} else {
			err = fmt.Errorf("%w: %w", ErrConnectionClosed, err)
		}
		h.deliver(0, err)
	}
	return gnet.None
}

// newTimer timeout 为 0 时返回永不触发的定时器
func newTimer(d time.Duration) *time.Timer {
	if d <= 0 {
		t := time.NewTimer(time.Hour)
		t.Stop()
		return t
	}
	return time.NewTimer(d)
}
