package bridge

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/power"
	"github.com/lk2023060901/aagateway/pkg/tcp"
)

// serveHandshake 网关端：在控制端口等待对端发送拒绝原因字节
func (o *Orchestrator) serveHandshake(ctx context.Context, s *Session, log logger.Logger) (power.RejectionReason, error) {
	srv, err := tcp.NewHandshakeServer(&tcp.ServerConfig{
		Addr:          o.config.ControlAddr(),
		Network:       "tcp",
		ReuseAddr:     true,
		AcceptTimeout: s.timeouts.Handshake,
		ReadTimeout:   o.config.HandshakeReadTimeout,
		TCPNoDelay:    true,
	}, tcp.WithLogger(log))
	if err != nil {
		return 0, mark(err, ErrHandshakeIO, "create handshake server")
	}

	b, err := srv.Serve(ctx)
	switch {
	case err == nil:
		log.Info("handshake received", "reason", b)
		return power.RejectionReason(b), nil
	case ctx.Err() != nil:
		return 0, context.Cause(ctx)
	case errors.Is(err, tcp.ErrAcceptTimeout):
		return 0, mark(err, ErrHandshakeTimedOut, "control channel")
	default:
		return 0, mark(err, ErrHandshakeIO, "control channel")
	}
}

// sendReason 客户端：连接网关控制端口并写入拒绝原因字节
func (o *Orchestrator) sendReason(ctx context.Context, host string, reason power.RejectionReason, log logger.Logger) error {
	connector, err := tcp.NewConnector(&tcp.ClientConfig{
		Addr:        net.JoinHostPort(host, strconv.Itoa(o.config.ControlPort)),
		Network:     "tcp",
		DialTimeout: o.config.HandshakeReadTimeout,
		TCPNoDelay:  true,
		Retry:       o.config.ConnectRetry,
	}, tcp.WithLogger(log))
	if err != nil {
		return mark(err, ErrHandshakeIO, "create connector")
	}

	conn, err := connector.Dial(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		return mark(err, ErrHandshakeIO, "dial control channel")
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(o.config.HandshakeReadTimeout)); err != nil {
		return mark(err, ErrHandshakeIO, "set write deadline")
	}
	if _, err := conn.Write([]byte{byte(reason)}); err != nil {
		return mark(err, ErrHandshakeIO, "write rejection reason")
	}
	log.Info("handshake sent", "reason", reason)
	return nil
}

// acceptNetwork 网关端：在数据端口接受一个连接
func (o *Orchestrator) acceptNetwork(ctx context.Context, s *Session, log logger.Logger) (net.Conn, error) {
	acceptor, err := tcp.NewAcceptor(&tcp.ServerConfig{
		Addr:          o.config.DataAddr(),
		Network:       "tcp",
		ReuseAddr:     true,
		AcceptTimeout: s.timeouts.Connection,
		IdleTimeout:   o.config.IdleTimeout,
		TCPNoDelay:    true,
	}, tcp.WithLogger(log), tcp.WithOnListen(o.onListen))
	if err != nil {
		return nil, mark(err, ErrTransportTimedOut, "create acceptor")
	}

	conn, err := acceptor.AcceptOne(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		return nil, mark(err, ErrTransportTimedOut, "data channel")
	}
	if !s.track(conn) {
		return nil, context.Cause(ctx)
	}
	return conn, nil
}
