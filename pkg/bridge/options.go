package bridge

import (
	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/util/conc"
)

// Option Orchestrator 选项
type Option func(*Orchestrator)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRadioPairing 网关在热点就绪后通过蓝牙唤起对端
func WithRadioPairing(r RadioPairing) Option {
	return func(o *Orchestrator) { o.radio = r }
}

// WithLauncher 客户端握手后启动投屏
func WithLauncher(l Launcher) Option {
	return func(o *Orchestrator) { o.launcher = l }
}

// WithFallback 网关无线连接失败时的回退处理
func WithFallback(f FallbackHandler) Option {
	return func(o *Orchestrator) { o.fallback = f }
}

// WithRejectionEvaluator 客户端拒绝原因来源
func WithRejectionEvaluator(e RejectionEvaluator) Option {
	return func(o *Orchestrator) { o.evaluator = e }
}

// WithRecorder 设置指标记录
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithStatusListener 每条状态文本的回调，在会话任务中同步调用
func WithStatusListener(fn func(s *Session, status string)) Option {
	return func(o *Orchestrator) { o.onStatus = fn }
}

// WithStateListener 状态迁移回调，在会话任务中同步调用
func WithStateListener(fn func(s *Session, state State)) Option {
	return func(o *Orchestrator) { o.onState = fn }
}

// WithPool 使用共享协程池，容量至少为 8
func WithPool(p *conc.Pool[struct{}]) Option {
	return func(o *Orchestrator) { o.pool = p }
}
