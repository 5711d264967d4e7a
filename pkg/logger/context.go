package logger

import (
	"context"

	"go.uber.org/zap"
)

type sessionKey struct{}

// ContextFieldExtractor 从 context 提取日志字段
type ContextFieldExtractor func(ctx context.Context) []zap.Field

// WithSessionID 把会话 ID 放入 context，*Context 日志方法会自动带上
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionIDFromContext 取出会话 ID
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionKey{}).(string)
	return id, ok && id != ""
}

// DefaultContextExtractor 提取会话 ID
func DefaultContextExtractor(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	if id, ok := SessionIDFromContext(ctx); ok {
		return []zap.Field{zap.String("session_id", id)}
	}
	return nil
}
