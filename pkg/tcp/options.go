package tcp

import (
	"net"

	"github.com/lk2023060901/aagateway/pkg/logger"
)

type options struct {
	logger   logger.Logger
	onListen func(net.Addr)
}

// Option 监听器/拨号器选项
type Option func(*options)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithOnListen 监听成功后回调实际地址，端口为 0 时可获知分配的端口
func WithOnListen(fn func(net.Addr)) Option {
	return func(o *options) {
		o.onListen = fn
	}
}

func newOptions(opts []Option) *options {
	o := &options{logger: logger.NewNoop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
