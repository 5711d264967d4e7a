//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/lk2023060901/aagateway/pkg/app"
	"github.com/lk2023060901/aagateway/pkg/bridge"
	"github.com/lk2023060901/aagateway/pkg/logger"
)

func InitApp(cfg *Config, l logger.Logger) (app.Application, func(), error) {
	panic(wire.Build(
		// 1. 链路与蓝牙
		provideLink,
		provideRadio,
		provideFallback,

		// 2. 指标
		providePrometheus,
		bridge.NewPromRecorder,
		provideSystem,

		// 3. 会话编排
		providePool,
		provideOrchestrator,
		provideUSBWatcher,
		provideGateway,

		// 4. 状态接口
		provideWebServer,

		// 5. 组装
		provideAppOptions,
		app.ProviderSet,
		provideAppComponents,
		app.InitApp,
	))
}
