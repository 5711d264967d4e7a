// Package prometheus 指标注册表与 HTTP 暴露
package prometheus

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/util/conc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Client 持有独立的 Registry，避免污染全局默认注册表
type Client struct {
	config   *Config
	registry *prometheus.Registry
	logger   logger.Logger

	// name -> prometheus.Collector
	metrics sync.Map

	httpServer *http.Server
	closed     atomic.Bool
}

// Option 客户端选项
type Option func(*Client)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New 创建客户端，配置开启时同时启动独立 HTTP 服务器
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:   cfg,
		registry: prometheus.NewRegistry(),
		logger:   logger.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("prometheus")

	if cfg.EnableGoCollector {
		c.registry.MustRegister(collectors.NewGoCollector())
	}
	if cfg.EnableProcessCollector {
		c.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	if cfg.HTTPServer.Enabled {
		c.startHTTPServer()
	}
	return c, nil
}

// Registry 底层注册表
func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

// Namespace 指标命名空间
func (c *Client) Namespace() string {
	return c.config.Namespace
}

// Handler 指标 HTTP Handler，可挂载到已有的 HTTP 服务器
func (c *Client) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (c *Client) startHTTPServer() {
	mux := http.NewServeMux()
	mux.Handle(c.config.HTTPServer.Path, c.Handler())

	c.httpServer = &http.Server{
		Addr:         c.config.HTTPServer.Addr,
		Handler:      mux,
		ReadTimeout:  c.config.HTTPServer.Timeout,
		WriteTimeout: c.config.HTTPServer.Timeout,
	}

	conc.Go(func() (struct{}, error) {
		c.logger.Info("metrics server listening", "addr", c.config.HTTPServer.Addr)
		if err := c.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("metrics server stopped", "error", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
}

// Close 关闭客户端与独立 HTTP 服务器
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}
	if c.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.httpServer.Shutdown(ctx)
}

// IsClosed 是否已关闭
func (c *Client) IsClosed() bool {
	return c.closed.Load()
}
