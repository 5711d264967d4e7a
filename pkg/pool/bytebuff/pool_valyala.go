// 控制通道帧编码用的可增长缓冲，底层为 valyala/bytebufferpool
package bytebuff

import (
	"sync/atomic"

	"github.com/valyala/bytebufferpool"
)

// ValyalaPool 包装 bytebufferpool 并记录统计
type ValyalaPool struct {
	pool bytebufferpool.Pool

	gets atomic.Uint64
	puts atomic.Uint64
}

var defaultValyalaPool = NewValyalaPool()

// NewValyalaPool 创建 ByteBuffer 池
func NewValyalaPool() *ValyalaPool {
	return &ValyalaPool{}
}

// Get 获取一个 ByteBuffer
func (p *ValyalaPool) Get() *bytebufferpool.ByteBuffer {
	p.gets.Add(1)
	return p.pool.Get()
}

// Put 归还 ByteBuffer，之后不得再引用 buf.B
func (p *ValyalaPool) Put(buf *bytebufferpool.ByteBuffer) {
	if buf == nil {
		return
	}
	p.puts.Add(1)
	p.pool.Put(buf)
}

// Stats 返回统计信息
func (p *ValyalaPool) Stats() (gets, puts uint64) {
	return p.gets.Load(), p.puts.Load()
}

// GetBuffer 从默认池获取 ByteBuffer
func GetBuffer() *bytebufferpool.ByteBuffer {
	return defaultValyalaPool.Get()
}

// PutBuffer 归还到默认池
func PutBuffer(buf *bytebufferpool.ByteBuffer) {
	defaultValyalaPool.Put(buf)
}
