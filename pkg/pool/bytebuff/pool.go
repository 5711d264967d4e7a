package bytebuff

import (
	"sync"
	"sync/atomic"
)

// 分级: 4KB, 16KB, 64KB+8
// 最后一级能容纳一整个数据通道帧 (8 字节扩展头 + 65535 字节载荷)
var chunkSizes = [...]int{
	1 << 12,
	1 << 14,
	1<<16 + 8,
}

// ChunkPool 固定大小 []byte 的分级对象池，供中继泵复用读缓冲
type ChunkPool struct {
	pools [len(chunkSizes)]sync.Pool

	gets   atomic.Uint64
	puts   atomic.Uint64
	misses atomic.Uint64
}

var defaultChunkPool = NewChunkPool()

// NewChunkPool 创建分级缓冲池
func NewChunkPool() *ChunkPool {
	p := &ChunkPool{}
	for i := range chunkSizes {
		size := chunkSizes[i]
		p.pools[i].New = func() any {
			b := make([]byte, size)
			return &b
		}
	}
	return p
}

// Get 返回长度恰为 size 的缓冲，超过最大分级时直接分配
func (p *ChunkPool) Get(size int) *[]byte {
	p.gets.Add(1)

	idx := tierFor(size)
	if idx < 0 {
		p.misses.Add(1)
		b := make([]byte, size)
		return &b
	}
	b := p.pools[idx].Get().(*[]byte)
	*b = (*b)[:size]
	return b
}

// Put 归还缓冲，容量不等于任何分级的缓冲直接丢弃
func (p *ChunkPool) Put(b *[]byte) {
	if b == nil {
		return
	}
	c := cap(*b)
	for i, size := range chunkSizes {
		if c == size {
			p.puts.Add(1)
			*b = (*b)[:size]
			p.pools[i].Put(b)
			return
		}
	}
}

// Stats 返回统计信息
func (p *ChunkPool) Stats() (gets, puts, misses uint64) {
	return p.gets.Load(), p.puts.Load(), p.misses.Load()
}

func tierFor(size int) int {
	for i, s := range chunkSizes {
		if size <= s {
			return i
		}
	}
	return -1
}

// GetChunk 从默认池取缓冲
func GetChunk(size int) *[]byte {
	return defaultChunkPool.Get(size)
}

// PutChunk 归还到默认池
func PutChunk(b *[]byte) {
	defaultChunkPool.Put(b)
}
