package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lk2023060901/aagateway/app/client/internal/launcher"
	"github.com/lk2023060901/aagateway/pkg/app"
	"github.com/lk2023060901/aagateway/pkg/bridge"
	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/power"
	"github.com/lk2023060901/aagateway/pkg/wifi"
)

// Config 客户端进程配置
type Config struct {
	Log     logger.Config             `mapstructure:"log"`
	Loggers map[string]*logger.Config `mapstructure:"loggers"`

	Bridge   bridge.Config   `mapstructure:"bridge"`
	WiFi     wifi.Config     `mapstructure:"wifi"`
	Launcher launcher.Config `mapstructure:"launcher"`
}

func defaultConfig() *Config {
	cfg := &Config{
		Log:    *logger.DefaultConfig(),
		Bridge: *bridge.DefaultConfig(),
		WiFi:   *wifi.DefaultConfig(),
	}
	cfg.Bridge.Role = bridge.RoleClient
	cfg.WiFi.Interface = ""
	cfg.WiFi.ConnectionName = "aagateway-client"
	return cfg
}

// runner 启动唯一一次会话，会话结束后让应用退出
type runner struct {
	app  *app.BaseApp
	orch *bridge.Orchestrator
	log  logger.Logger
}

func (r *runner) Start() error {
	s, err := r.orch.Start(r.app.Context(), nil)
	if err != nil {
		return err
	}
	go func() {
		<-s.Done()
		r.log.Info("session finished", "reason", bridge.Reason(s.Err()))
		_ = r.app.Shutdown()
	}()
	return nil
}

func (r *runner) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.orch.Close(ctx)
}

func main() {
	cfg := defaultConfig()

	// 1. 加载配置
	if err := app.LoadConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Bridge.Role = bridge.RoleClient

	// 2. 初始化日志
	l, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(l)

	// 3. 链路、电源与投屏
	station, err := wifi.NewStation(&cfg.WiFi, l)
	if err != nil {
		l.Error("failed to create wifi station", "error", err)
		os.Exit(1)
	}

	var src power.Source
	if sys, err := power.NewSystemSource(); err != nil {
		l.Warn("power source unavailable, battery treated as full", "error", err)
		src = power.StaticSource{Err: err}
	} else {
		src = sys
	}

	launch := launcher.New(&cfg.Launcher, l)

	application := app.NewBaseApp(
		app.WithName(app.AppName),
		app.WithLogger(l),
		app.WithNamedLoggers(cfg.Loggers),
	)

	// 4. 会话编排
	status := application.Logger("status")
	orch, err := bridge.NewOrchestrator(&cfg.Bridge, station,
		bridge.WithLogger(l),
		bridge.WithLauncher(launch),
		bridge.WithRejectionEvaluator(&bridge.PolicyEvaluator{Policy: cfg.Bridge.Rejection, Source: src}),
		bridge.WithStatusListener(func(s *bridge.Session, msg string) {
			status.Info(msg, "session_id", s.ID(), "state", s.State().String())
		}),
	)
	if err != nil {
		l.Error("failed to create orchestrator", "error", err)
		os.Exit(1)
	}

	application.AppendServer(&runner{app: application, orch: orch, log: l})
	application.AppendCloser(launch)

	// 5. 运行
	if err := application.Run(); err != nil {
		l.Error("application exited with error", "error", err)
		os.Exit(1)
	}
}
