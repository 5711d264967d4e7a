package app

import (
	"github.com/google/wire"
)

// AppComponents 由 Wire 收集的组件
type AppComponents struct {
	Servers []Server
	Closers []Closer
}

// ProviderSet 导出给 Wire 使用
var ProviderSet = wire.NewSet(
	NewBaseApp,
)

// InitApp 将组件绑定到 BaseApp
func InitApp(app *BaseApp, comps AppComponents) Application {
	app.AppendServer(comps.Servers...)
	app.AppendCloser(comps.Closers...)
	return app
}

// CloserFunc 函数适配器
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }

// ServerFuncs 以两个函数组成 Server
type ServerFuncs struct {
	StartFunc func() error
	StopFunc  func() error
}

func (s ServerFuncs) Start() error {
	if s.StartFunc == nil {
		return nil
	}
	return s.StartFunc()
}

func (s ServerFuncs) Stop() error {
	if s.StopFunc == nil {
		return nil
	}
	return s.StopFunc()
}
