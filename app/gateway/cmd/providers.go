package main

import (
	"github.com/lk2023060901/aagateway/app/gateway/internal/fallback"
	"github.com/lk2023060901/aagateway/app/gateway/internal/handler"
	"github.com/lk2023060901/aagateway/app/gateway/internal/service"
	"github.com/lk2023060901/aagateway/pkg/app"
	"github.com/lk2023060901/aagateway/pkg/bluetooth"
	"github.com/lk2023060901/aagateway/pkg/bridge"
	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/metrics/system"
	"github.com/lk2023060901/aagateway/pkg/prometheus"
	"github.com/lk2023060901/aagateway/pkg/usb"
	"github.com/lk2023060901/aagateway/pkg/util/conc"
	"github.com/lk2023060901/aagateway/pkg/web"
	webmetrics "github.com/lk2023060901/aagateway/pkg/web/metrics"
	"github.com/lk2023060901/aagateway/pkg/web/middleware"
	"github.com/lk2023060901/aagateway/pkg/wifi"
)

// provideLink 网关使用 NetworkManager 热点
func provideLink(cfg *Config, l logger.Logger) (bridge.LinkProvider, error) {
	return wifi.NewHotspot(&cfg.WiFi, l)
}

// provideRadio 蓝牙关闭时返回 nil，编排器跳过配对
func provideRadio(cfg *Config, l logger.Logger) (bridge.RadioPairing, func()) {
	if !cfg.Bluetooth.Enabled {
		return nil, func() {}
	}
	btCfg := cfg.Bluetooth.Config
	btCfg.DataPort = uint32(cfg.Bridge.DataPort)
	p := bluetooth.NewPairer(&btCfg, l)
	return p, func() {
		if err := p.Close(); err != nil {
			l.Warn("close bluetooth", "error", err)
		}
	}
}

func provideFallback(cfg *Config, l logger.Logger) bridge.FallbackHandler {
	return fallback.New(&cfg.Fallback, l)
}

func providePrometheus(cfg *Config, l logger.Logger) (*prometheus.Client, error) {
	return prometheus.New(&cfg.Prometheus, prometheus.WithLogger(l))
}

// providePool 编排器与网关服务共享的协程池，所有服务停止后释放
func providePool(cfg *Config) (*conc.Pool[struct{}], func(), error) {
	pool, err := conc.NewPoolFromConfig[struct{}](&cfg.Pool)
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Release, nil
}

func provideOrchestrator(
	cfg *Config,
	pool *conc.Pool[struct{}],
	link bridge.LinkProvider,
	radio bridge.RadioPairing,
	fb bridge.FallbackHandler,
	rec *bridge.PromRecorder,
	l logger.Logger,
) (*bridge.Orchestrator, error) {
	status := l.Named("status")
	opts := []bridge.Option{
		bridge.WithLogger(l),
		bridge.WithPool(pool),
		bridge.WithRecorder(rec),
		bridge.WithStatusListener(func(s *bridge.Session, msg string) {
			status.Info(msg, "session_id", s.ID(), "state", s.State().String())
		}),
	}
	if radio != nil {
		opts = append(opts, bridge.WithRadioPairing(radio))
	}
	if fb != nil {
		opts = append(opts, bridge.WithFallback(fb))
	}
	return bridge.NewOrchestrator(&cfg.Bridge, link, opts...)
}

func provideSystem(cfg *Config, client *prometheus.Client) (*system.Collector, error) {
	c, err := system.New(&cfg.System)
	if err != nil {
		return nil, err
	}
	if err := c.Register(client); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func provideUSBWatcher(cfg *Config, l logger.Logger) *usb.Watcher {
	return usb.NewWatcher(&cfg.USB, l)
}

func provideGateway(cfg *Config, orch *bridge.Orchestrator, pool *conc.Pool[struct{}], watcher *usb.Watcher, l logger.Logger) *service.Gateway {
	return service.New(orch, pool, &cfg.USB, watcher, cfg.Service, l)
}

func provideWebServer(
	cfg *Config,
	gw *service.Gateway,
	sys *system.Collector,
	client *prometheus.Client,
	l logger.Logger,
) (*web.Server, error) {
	srv := web.NewServer(&cfg.Web, l)
	m, err := webmetrics.New(client)
	if err != nil {
		return nil, err
	}
	srv.Router().Use(middleware.Metrics(m))
	handler.NewSessionHandler(gw, sys, client.Handler(), l).Register(srv.Router())
	return srv, nil
}

func provideAppOptions(cfg *Config, l logger.Logger) []app.Option {
	return []app.Option{
		app.WithName(app.AppName),
		app.WithLogger(l),
		app.WithNamedLoggers(cfg.Loggers),
	}
}

// provideAppComponents 启动顺序: 采集 -> HTTP -> 网关服务；停止时逆序
func provideAppComponents(
	cfg *Config,
	gw *service.Gateway,
	srv *web.Server,
	sys *system.Collector,
	client *prometheus.Client,
) app.AppComponents {
	servers := []app.Server{sys}
	if cfg.Web.Enabled {
		servers = append(servers, srv)
	}
	servers = append(servers, gw)
	return app.AppComponents{
		Servers: servers,
		Closers: []app.Closer{client, sys},
	}
}
