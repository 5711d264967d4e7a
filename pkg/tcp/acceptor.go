package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/lk2023060901/aagateway/pkg/logger"
)

// Acceptor 数据通道的一次性监听器
//
// AcceptOne 打开监听，在 AcceptTimeout 内接受一个连接后立即关闭监听。
type Acceptor struct {
	config *ServerConfig
	opts   *options
	logger logger.Logger
}

// NewAcceptor 创建一次性监听器
func NewAcceptor(cfg *ServerConfig, opts ...Option) (*Acceptor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	return &Acceptor{
		config: cfg,
		opts:   o,
		logger: o.logger.Named("tcp.acceptor"),
	}, nil
}

// AcceptOne 接受一个连接，返回的连接已按 IdleTimeout 包装
// ctx 取消会关闭监听并立即返回 ctx.Err()
func (a *Acceptor) AcceptOne(ctx context.Context) (net.Conn, error) {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, a.config.Network, a.config.Addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListenFailed, err)
	}
	defer ln.Close()

	if a.opts.onListen != nil {
		a.opts.onListen(ln.Addr())
	}
	a.logger.Debug("listening", "addr", ln.Addr().String(), "timeout", a.config.AcceptTimeout)

	if tl, ok := ln.(*net.TCPListener); ok && a.config.AcceptTimeout > 0 {
		if err := tl.SetDeadline(time.Now().Add(a.config.AcceptTimeout)); err != nil {
			return nil, err
		}
	}

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	conn, err := ln.Accept()
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case isTimeout(err):
			return nil, ErrAcceptTimeout
		case errors.Is(err, net.ErrClosed):
			return nil, ErrConnectionClosed
		default:
			return nil, err
		}
	}

	tune(conn, a.config.TCPNoDelay)
	a.logger.Info("accepted", "remote", conn.RemoteAddr().String())
	return WithIdleTimeout(conn, a.config.IdleTimeout), nil
}
