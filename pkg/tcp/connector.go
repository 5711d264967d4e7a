package tcp

import (
	"context"
	"fmt"
	"net"

	"github.com/lk2023060901/aagateway/pkg/logger"
	"golang.org/x/time/rate"
)

// Connector 带有界重试的拨号器
type Connector struct {
	config *ClientConfig
	dialer net.Dialer
	logger logger.Logger
}

// NewConnector 创建拨号器
func NewConnector(cfg *ClientConfig, opts ...Option) (*Connector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	return &Connector{
		config: cfg,
		dialer: net.Dialer{Timeout: cfg.DialTimeout},
		logger: o.logger.Named("tcp.connector"),
	}, nil
}

// Dial 拨号直到成功、Retry.Deadline 用尽或 ctx 取消
// 重试间隔由令牌桶控制，等待过程可被 ctx 打断
func (c *Connector) Dial(ctx context.Context) (net.Conn, error) {
	if c.config.Retry.Deadline <= 0 {
		conn, err := c.dialer.DialContext(ctx, c.config.Network, c.config.Addr)
		if err != nil {
			return nil, err
		}
		tune(conn, c.config.TCPNoDelay)
		return conn, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Retry.Deadline)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(c.config.Retry.Interval), 1)
	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrDialExhausted, attempt-1, lastErr)
		}

		conn, err := c.dialer.DialContext(ctx, c.config.Network, c.config.Addr)
		if err == nil {
			tune(conn, c.config.TCPNoDelay)
			c.logger.Debug("connected", "addr", c.config.Addr, "attempt", attempt)
			return conn, nil
		}
		lastErr = err
		c.logger.Debug("dial failed, retrying", "addr", c.config.Addr, "attempt", attempt, "error", err)
	}
}
