package main

import (
	"fmt"
	"os"

	"github.com/lk2023060901/aagateway/app/gateway/internal/fallback"
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
	"github.com/lk2023060901/aagateway/pkg/wifi"
)

// Config 网关进程配置
type Config struct {
	Log     logger.Config             `mapstructure:"log"`
	Loggers map[string]*logger.Config `mapstructure:"loggers"`

	Bridge    bridge.Config   `mapstructure:"bridge"`
	Service   service.Options `mapstructure:"service"`
	WiFi      wifi.Config     `mapstructure:"wifi"`
	Bluetooth BluetoothConfig `mapstructure:"bluetooth"`
	USB       usb.Config      `mapstructure:"usb"`
	Fallback  fallback.Config `mapstructure:"fallback"`
	Pool      conc.PoolConfig `mapstructure:"pool"`

	Web        web.Config        `mapstructure:"web"`
	Prometheus prometheus.Config `mapstructure:"prometheus"`
	System     system.Config     `mapstructure:"system"`
}

// BluetoothConfig 关闭时不唤起对端，由对端自行连接热点
type BluetoothConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	bluetooth.Config `mapstructure:",squash"`
}

func defaultConfig() *Config {
	return &Config{
		Log:        *logger.DefaultConfig(),
		Bridge:     *bridge.DefaultConfig(),
		Service:    service.Options{AutoStart: true},
		WiFi:       *wifi.DefaultConfig(),
		Bluetooth:  BluetoothConfig{Enabled: true, Config: *bluetooth.DefaultConfig()},
		USB:        *usb.DefaultConfig(),
		Fallback:   *fallback.DefaultConfig(),
		Pool:       *conc.DefaultPoolConfig(),
		Web:        *web.DefaultConfig(),
		Prometheus: *prometheus.DefaultConfig(),
		System:     *system.DefaultConfig(),
	}
}

func main() {
	cfg := defaultConfig()

	// 1. 加载配置
	if err := app.LoadConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Bridge.Role = bridge.RoleGateway

	// 2. 初始化日志
	l, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(l)

	// 3. 通过 Wire 组装
	application, cleanup, err := InitApp(cfg, l)
	if err != nil {
		l.Error("failed to initialize application", "error", err)
		_ = l.Sync()
		os.Exit(1)
	}
	defer cleanup()

	// 4. 运行
	if err := application.Run(); err != nil {
		l.Error("application exited with error", "error", err)
	}
}
