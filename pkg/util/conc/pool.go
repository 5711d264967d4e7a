package conc

import (
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
)

// PanicError 任务 panic 时返回的错误
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("conc: task panicked: %v", e.Value)
}

// PoolConfig 协程池配置
type PoolConfig struct {
	Size     int  `mapstructure:"size" json:"size" validate:"gte=8"`
	PreAlloc bool `mapstructure:"pre_alloc" json:"pre_alloc"`

	// 空闲 worker 的回收间隔，0 使用 ants 默认值
	ExpiryDuration time.Duration `mapstructure:"expiry_duration" json:"expiry_duration" validate:"gte=0"`
}

// DefaultPoolConfig 默认协程池配置
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Size:           16,
		ExpiryDuration: time.Minute,
	}
}

type poolOption struct {
	preAlloc bool
	expiry   time.Duration
}

// PoolOption 协程池选项
type PoolOption func(*poolOption)

// WithPreAlloc 预分配 worker 队列
func WithPreAlloc(v bool) PoolOption {
	return func(o *poolOption) { o.preAlloc = v }
}

// WithExpiryDuration 空闲 worker 的回收间隔
func WithExpiryDuration(d time.Duration) PoolOption {
	return func(o *poolOption) { o.expiry = d }
}

// Pool 基于 ants 的泛型协程池，Submit 返回 Future
type Pool[T any] struct {
	inner *ants.Pool
}

// NewPool 创建容量为 size 的协程池
func NewPool[T any](size int, opts ...PoolOption) (*Pool[T], error) {
	o := &poolOption{expiry: ants.DefaultCleanIntervalTime}
	for _, opt := range opts {
		opt(o)
	}

	inner, err := ants.NewPool(size,
		ants.WithPreAlloc(o.preAlloc),
		ants.WithExpiryDuration(o.expiry),
	)
	if err != nil {
		return nil, fmt.Errorf("conc: create pool: %w", err)
	}
	return &Pool[T]{inner: inner}, nil
}

// NewPoolFromConfig 按配置创建协程池
func NewPoolFromConfig[T any](cfg *PoolConfig) (*Pool[T], error) {
	if cfg == nil {
		cfg = DefaultPoolConfig()
	}
	return NewPool[T](cfg.Size,
		WithPreAlloc(cfg.PreAlloc),
		WithExpiryDuration(cfg.ExpiryDuration),
	)
}

// Submit 提交任务，池已关闭时 Future 直接携带错误
func (p *Pool[T]) Submit(fn func() (T, error)) *Future[T] {
	future := newFuture[T]()
	err := p.inner.Submit(func() {
		future.complete(run(fn))
	})
	if err != nil {
		var zero T
		future.complete(zero, err)
	}
	return future
}

// Cap 池容量
func (p *Pool[T]) Cap() int {
	return p.inner.Cap()
}

// Running 正在运行的任务数
func (p *Pool[T]) Running() int {
	return p.inner.Running()
}

// Release 关闭协程池，已提交的任务继续运行
func (p *Pool[T]) Release() {
	p.inner.Release()
}
