package bridge

import (
	"context"
	"time"

	"github.com/lk2023060901/aagateway/pkg/power"
)

// LinkProvider 无线链路的建立与拆除（网关为热点，客户端为加入热点）
type LinkProvider interface {
	// BringUp 建立链路并返回链路信息
	BringUp(ctx context.Context) (*LinkInfo, error)
	// TearDown 拆除链路，重复调用无副作用
	TearDown() error
}

// LinkWatcher 可选：LinkProvider 同时实现时，链路丢失会结束客户端会话
type LinkWatcher interface {
	Lost() <-chan struct{}
}

// RadioPairing 通过蓝牙唤起对端，失败只记录日志
type RadioPairing interface {
	Connect(ctx context.Context, peerAddress string, timeout time.Duration, link LinkInfo) error
}

// Launcher 客户端在握手被接受后启动投屏
type Launcher interface {
	Launch(ctx context.Context, host string, port int) error
}

// FallbackHandler 开启 usb_fallback 且网络端未就绪时调用
type FallbackHandler interface {
	Fallback(ctx context.Context, sessionID string) error
}

// RejectionEvaluator 客户端计算本次连接的拒绝原因
type RejectionEvaluator interface {
	Evaluate(ctx context.Context) power.RejectionReason
}

// PolicyEvaluator 把 power.Policy 与电源来源组合为 RejectionEvaluator
type PolicyEvaluator struct {
	Policy power.Policy
	Source power.Source
}

// Evaluate 实现 RejectionEvaluator
func (e *PolicyEvaluator) Evaluate(ctx context.Context) power.RejectionReason {
	return e.Policy.Evaluate(ctx, e.Source, nil)
}

// FallbackFunc 函数适配器
type FallbackFunc func(ctx context.Context, sessionID string) error

func (f FallbackFunc) Fallback(ctx context.Context, sessionID string) error { return f(ctx, sessionID) }

// LauncherFunc 函数适配器
type LauncherFunc func(ctx context.Context, host string, port int) error

func (f LauncherFunc) Launch(ctx context.Context, host string, port int) error { return f(ctx, host, port) }
