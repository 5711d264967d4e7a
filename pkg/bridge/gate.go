package bridge

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// Gate 传输就绪闸门
//
// USB 与网络两侧各自置位后等待；两侧都置位时 Ready 关闭且只关闭一次，
// 等待方立即被唤醒。
type Gate struct {
	usb     atomic.Bool
	network atomic.Bool

	ready chan struct{}
	once  sync.Once
}

// NewGate 创建闸门
func NewGate() *Gate {
	return &Gate{ready: make(chan struct{})}
}

// MarkUSB 标记 USB 侧就绪，返回 true 表示本次调用打开了闸门
func (g *Gate) MarkUSB() bool {
	g.usb.Store(true)
	return g.tryOpen()
}

// MarkNetwork 标记网络侧就绪，返回 true 表示本次调用打开了闸门
func (g *Gate) MarkNetwork() bool {
	g.network.Store(true)
	return g.tryOpen()
}

func (g *Gate) tryOpen() bool {
	if !g.usb.Load() || !g.network.Load() {
		return false
	}
	opened := false
	g.once.Do(func() {
		close(g.ready)
		opened = true
	})
	return opened
}

// USBReady USB 侧是否就绪
func (g *Gate) USBReady() bool { return g.usb.Load() }

// NetworkReady 网络侧是否就绪
func (g *Gate) NetworkReady() bool { return g.network.Load() }

// Ready 闸门打开时关闭
func (g *Gate) Ready() <-chan struct{} { return g.ready }

// Wait 等待闸门打开，ctx 先结束时返回其取消原因
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
