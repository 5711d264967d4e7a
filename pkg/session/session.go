// Package session 会话基础设施：唯一 ID、一次性取消信号和资源登记。
// 业务会话嵌入 BaseSession 后由 Registry 统一管理。
package session

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Session 会话接口
type Session interface {
	// ID 会话唯一标识（UUID string）
	ID() string
	// Context 会话上下文，会话取消时 Done
	Context() context.Context
}

// BaseSession Session 的基础实现
//
// 取消只生效一次：取消时按登记的逆序关闭所有资源，
// 阻塞在这些资源上的读写会立即返回。
type BaseSession struct {
	id     string
	ctx    context.Context
	cancel context.CancelCauseFunc

	mu      sync.Mutex
	closers []io.Closer
	closed  bool
}

// NewBaseSession 从父 context 派生会话
func NewBaseSession(parent context.Context) *BaseSession {
	ctx, cancel := context.WithCancelCause(parent)
	return &BaseSession{
		id:     uuid.NewString(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID 返回会话 ID
func (s *BaseSession) ID() string {
	return s.id
}

// Context 返回会话上下文
func (s *BaseSession) Context() context.Context {
	return s.ctx
}

// Track 登记一个由会话负责关闭的资源
// 会话已取消时立即关闭该资源并返回 false
func (s *BaseSession) Track(c io.Closer) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = c.Close()
		return false
	}
	s.closers = append(s.closers, c)
	s.mu.Unlock()
	return true
}

// Cancel 取消会话并关闭所有登记的资源，只有第一次调用生效
// 返回 true 表示本次调用执行了取消
func (s *BaseSession) Cancel(cause error) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	s.cancel(cause)
	for i := len(closers) - 1; i >= 0; i-- {
		_ = closers[i].Close()
	}
	return true
}

// Cause 返回取消原因，未取消时为 nil
func (s *BaseSession) Cause() error {
	if s.ctx.Err() == nil {
		return nil
	}
	return context.Cause(s.ctx)
}

// CloserFunc 把函数适配为 io.Closer
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }
